package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/utils"
)

// Column limits of processed_messages.
const (
	MaxHeaderMessageIDLength = 1000
	MaxSenderLength          = 500
)

// ProcessedMessage is the ledger entry proving a message of a mailbox was handled.
type ProcessedMessage struct {
	ID                     string              `gorm:"column:id;type:varchar(50);primaryKey"`
	MailboxConfigurationID string              `gorm:"column:mailbox_configuration_id;type:varchar(50);not null;uniqueIndex:idx_processed_messages_key,priority:1"`
	MessageID              string              `gorm:"column:message_id;type:varchar(100);not null;uniqueIndex:idx_processed_messages_key,priority:2"`
	HeaderMessageID        string              `gorm:"column:header_message_id;type:varchar(1000);index"`
	Sender                 string              `gorm:"column:sender;type:varchar(500)"`
	Subject                string              `gorm:"column:subject;type:text"`
	ReceivedAt             time.Time           `gorm:"column:received_at;type:timestamp"`
	AttachmentCount        int                 `gorm:"column:attachment_count;not null;default:0"`
	AcceptedCount          int                 `gorm:"column:accepted_count;not null;default:0"`
	DocumentsCreated       int                 `gorm:"column:documents_created;not null;default:0"`
	Status                 enum.MessageOutcome `gorm:"column:status;type:varchar(50);not null"`
	CreatedAt              time.Time           `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (ProcessedMessage) TableName() string {
	return "processed_messages"
}

func (p *ProcessedMessage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("pmsg", 16)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.Now()
	}
	return nil
}
