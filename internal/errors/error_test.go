package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("run aborted: %w", Auth("agent@example.com", stderrors.New("bad creds")))

	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIsFatal(t *testing.T) {
	fatal := []error{
		Credential(nil),
		Connection("mail.example.com:993", nil),
		Auth("u", nil),
		Select("INBOX", nil),
		Search(nil),
		Fetch("1:2", nil),
		Folder("org-1", ErrNoOrganizationMember),
		Timeout(nil),
	}
	for _, err := range fatal {
		assert.True(t, IsFatal(err), err.Error())
	}

	scoped := []error{
		Parse("1:2", nil),
		Upload("invoice.pdf", nil),
		Registration("invoice.pdf", nil),
		stderrors.New("other"),
	}
	for _, err := range scoped {
		assert.False(t, IsFatal(err), err.Error())
	}
}

func TestPipelineErrorMessageAndUnwrap(t *testing.T) {
	cause := stderrors.New("quota exceeded")
	err := Upload("scan.png", cause)

	assert.Equal(t, "upload error (scan.png): quota exceeded", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "credential error: credential failed", Credential(nil).Error())
}

func TestFolderErrorKeepsCause(t *testing.T) {
	err := fmt.Errorf("message 7:1: %w", Folder("org-1", ErrNoOrganizationMember))

	assert.Equal(t, KindFolder, KindOf(err))
	assert.ErrorIs(t, err, ErrNoOrganizationMember)
	assert.Contains(t, err.Error(), "folder error (org-1)")
}
