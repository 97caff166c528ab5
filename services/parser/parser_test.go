package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/docingest/dto"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/models"
)

var (
	fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	handle   = dto.MessageHandle{UID: 42, UIDValidity: 7}
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func newTestParser() *messageParser {
	return NewParser(logger.NewNopLogger(), WithClock(func() time.Time { return fixedNow })).(*messageParser)
}

const multipartMessage = `From: Alice Example <alice@example.com>
To: docs@firm.test
Subject: Invoice for May
Date: Tue, 14 May 2024 09:30:00 +0200
Message-ID: <abc123@example.com>
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain; charset=utf-8

Please find the invoice attached.
Thanks
--BOUNDARY
Content-Type: application/pdf; name="invoice.pdf"
Content-Disposition: attachment; filename="invoice.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQgaW52b2ljZQ==
--BOUNDARY
Content-Type: application/pdf
Content-Disposition: attachment
Content-Transfer-Encoding: base64

JVBERi0xLjQgdW5uYW1lZA==
--BOUNDARY
Content-Type: image/png; name="logo.png"
Content-Disposition: inline; filename="logo.png"
Content-Transfer-Encoding: base64

iVBORyBmYWtl
--BOUNDARY--
`

func TestParse_MultipartMessage(t *testing.T) {
	msg, err := newTestParser().Parse(handle, crlf(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "7:42", msg.MessageID)
	assert.Equal(t, handle, msg.Handle)
	assert.Equal(t, "abc123@example.com", msg.HeaderMessageID)
	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, "Invoice for May", msg.Subject)
	assert.Equal(t, time.Date(2024, 5, 14, 7, 30, 0, 0, time.UTC), msg.ReceivedAt)
	assert.Contains(t, msg.BodyText, "Please find the invoice attached.")

	require.Len(t, msg.Attachments, 3)

	assert.Equal(t, "invoice.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4 invoice"), msg.Attachments[0].Content)
	assert.Equal(t, int64(len("%PDF-1.4 invoice")), msg.Attachments[0].Size)

	assert.Equal(t, "attachment-2.pdf", msg.Attachments[1].Filename)
	assert.Equal(t, []byte("%PDF-1.4 unnamed"), msg.Attachments[1].Content)

	assert.Equal(t, "logo.png", msg.Attachments[2].Filename)
	assert.Equal(t, "image/png", msg.Attachments[2].ContentType)
	assert.Equal(t, []byte("\x89PNG fake"), msg.Attachments[2].Content)
}

func TestParse_MissingHeadersUseDefaults(t *testing.T) {
	raw := crlf(`X-Mailer: scanner
Content-Type: text/plain

scanned without headers
`)

	msg, err := newTestParser().Parse(handle, raw)
	require.NoError(t, err)

	assert.Equal(t, UnknownSender, msg.Sender)
	assert.Equal(t, NoSubject, msg.Subject)
	assert.Equal(t, fixedNow, msg.ReceivedAt)
	assert.Empty(t, msg.HeaderMessageID)
	assert.Empty(t, msg.Attachments)
}

func TestParse_MalformedHeadersUseDefaults(t *testing.T) {
	raw := crlf(`From: <>
Subject:
Date: sometime last week
Content-Type: text/plain

body
`)

	msg, err := newTestParser().Parse(handle, raw)
	require.NoError(t, err)

	assert.Equal(t, UnknownSender, msg.Sender)
	assert.Equal(t, NoSubject, msg.Subject)
	assert.Equal(t, fixedNow, msg.ReceivedAt)
}

func TestParse_EmptyMessageIsParseError(t *testing.T) {
	_, err := newTestParser().Parse(handle, []byte("  \r\n"))
	require.Error(t, err)
	assert.Equal(t, ingesterrors.KindParse, ingesterrors.KindOf(err))
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.False(t, ingesterrors.IsFatal(err))
}

func TestParse_OversizedHeadersAreTruncated(t *testing.T) {
	raw := crlf("From: " + strings.Repeat("a", 600) + "@example.com\n" +
		"Subject: long ids\n" +
		"Message-ID: <" + strings.Repeat("m", 1200) + "@example.com>\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"body\n")

	msg, err := newTestParser().Parse(handle, raw)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("m", models.MaxHeaderMessageIDLength), msg.HeaderMessageID)
	assert.Len(t, msg.Sender, models.MaxSenderLength)
	assert.True(t, strings.HasPrefix(msg.Sender, "aaaa"))
}
