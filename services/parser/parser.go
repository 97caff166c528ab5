package parser

import (
	"bytes"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/utils"
)

const (
	UnknownSender      = "unknown sender"
	NoSubject          = "no subject"
	defaultContentType = "application/octet-stream"
)

var ErrEmptyMessage = errors.New("empty message")

type Option func(*messageParser)

// WithClock replaces the clock used when a message has no usable Date header.
func WithClock(clock func() time.Time) Option {
	return func(p *messageParser) {
		p.clock = clock
	}
}

type messageParser struct {
	log   logger.Logger
	clock func() time.Time
}

func NewParser(log logger.Logger, opts ...Option) interfaces.MessageParser {
	p := &messageParser{log: log, clock: utils.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse turns raw RFC 5322 bytes into an InboundMessage. Broken headers fall
// back to defaults; only an unreadable message is an error.
func (p *messageParser) Parse(handle dto.MessageHandle, raw []byte) (*dto.InboundMessage, error) {
	messageID := handle.MessageID()
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ingesterrors.Parse(messageID, ErrEmptyMessage)
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, ingesterrors.Parse(messageID, err)
	}
	for _, partErr := range envelope.Errors {
		p.log.Debugf("MIME defect in message %s: %v", messageID, partErr)
	}

	msg := &dto.InboundMessage{
		Handle:          handle,
		MessageID:       messageID,
		HeaderMessageID: utils.TruncateString(utils.NormalizeMessageID(envelope.GetHeader("Message-ID")), models.MaxHeaderMessageIDLength),
		Sender:          utils.TruncateString(p.sender(envelope), models.MaxSenderLength),
		Subject:         strings.TrimSpace(envelope.GetHeader("Subject")),
		ReceivedAt:      p.receivedAt(envelope),
		BodyText:        envelope.Text,
	}
	if msg.Subject == "" {
		msg.Subject = NoSubject
	}
	msg.Attachments = collectAttachments(envelope)

	return msg, nil
}

func (p *messageParser) sender(envelope *enmime.Envelope) string {
	addresses, err := envelope.AddressList("From")
	if err != nil || len(addresses) == 0 || addresses[0].Address == "" {
		return UnknownSender
	}
	address := strings.TrimSpace(addresses[0].Address)
	validation := mailvalidate.ValidateEmailSyntax(address)
	if validation.IsValid && validation.CleanEmail != "" {
		return validation.CleanEmail
	}
	return address
}

func (p *messageParser) receivedAt(envelope *enmime.Envelope) time.Time {
	header := strings.TrimSpace(envelope.GetHeader("Date"))
	if header != "" {
		if date, err := mail.ParseDate(header); err == nil {
			return date.UTC()
		}
	}
	return p.clock()
}

// collectAttachments gathers regular attachments plus any inline or other part
// that carries a file name. Unnamed parts get a generated name.
func collectAttachments(envelope *enmime.Envelope) []dto.AttachmentPart {
	var parts []*enmime.Part
	parts = append(parts, envelope.Attachments...)
	for _, part := range envelope.Inlines {
		if part.FileName != "" {
			parts = append(parts, part)
		}
	}
	for _, part := range envelope.OtherParts {
		if part.FileName != "" {
			parts = append(parts, part)
		}
	}

	attachments := make([]dto.AttachmentPart, 0, len(parts))
	for i, part := range parts {
		contentType := part.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}
		filename := strings.TrimSpace(part.FileName)
		if filename == "" {
			filename = fmt.Sprintf("attachment-%d.%s", i+1, utils.GetFileExtensionFromContentType(contentType))
		}
		content := append([]byte(nil), part.Content...)
		attachments = append(attachments, dto.AttachmentPart{
			Filename:    filename,
			ContentType: contentType,
			Size:        int64(len(content)),
			Content:     content,
		})
	}
	return attachments
}
