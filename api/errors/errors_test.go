package api_errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiErrors(t *testing.T) {
	errs := NewMultiErrors()
	assert.False(t, errs.HasErrors())

	errs.Add("imapServer", "is required", nil)
	errs.Add("emailAddress", "must be a valid email address", nil)
	errs.Add("emailAddress", "is too long", nil)

	assert.True(t, errs.HasErrors())
	assert.Equal(t, "emailAddress: must be a valid email address | emailAddress: is too long | imapServer: is required", errs.Error())
	assert.Equal(t, map[string][]string{
		"emailAddress": {"must be a valid email address", "is too long"},
		"imapServer":   {"is required"},
	}, errs.Fields())
}
