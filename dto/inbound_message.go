package dto

import (
	"fmt"
	"time"
)

// MessageHandle locates a message inside one selected mailbox.
type MessageHandle struct {
	UID         uint32
	UIDValidity uint32
}

// MessageID is stable across sessions as long as the server keeps UIDVALIDITY.
func (h MessageHandle) MessageID() string {
	return fmt.Sprintf("%d:%d", h.UIDValidity, h.UID)
}

type AttachmentPart struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

type InboundMessage struct {
	Handle          MessageHandle
	MessageID       string
	HeaderMessageID string
	Sender          string
	Subject         string
	ReceivedAt      time.Time
	BodyText        string
	Attachments     []AttachmentPart
}
