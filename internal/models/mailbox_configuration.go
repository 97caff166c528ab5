package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/utils"
)

// MailboxConfiguration is one monitored mailbox owned by an organization.
// Rows are disabled, never deleted.
type MailboxConfiguration struct {
	ID             string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	OrganizationID string `gorm:"column:organization_id;type:varchar(50);index;not null" json:"organizationId"`
	EmailAddress   string `gorm:"column:email_address;type:varchar(255);index;not null" json:"emailAddress"`
	// IMAP Configuration
	ImapServer            string `gorm:"column:imap_server;type:varchar(255);not null" json:"imapServer"`
	ImapPort              int    `gorm:"column:imap_port;not null;default:993" json:"imapPort"`
	ImapTLS               bool   `gorm:"column:imap_tls;not null;default:true" json:"imapTls"`
	ImapUsername          string `gorm:"column:imap_username;type:varchar(255);not null" json:"imapUsername"`
	ImapPasswordEncrypted string `gorm:"column:imap_password_encrypted;type:text;not null" json:"-"`
	// Document placement and admission policy
	TargetFolderID      *string        `gorm:"column:target_folder_id;type:varchar(50)" json:"targetFolderId"`
	AllowedContentTypes pq.StringArray `gorm:"column:allowed_content_types;type:text[]" json:"allowedContentTypes"`
	MaxAttachmentBytes  int64          `gorm:"column:max_attachment_bytes;not null;default:0" json:"maxAttachmentBytes"`
	AutoAnalyze         bool           `gorm:"column:auto_analyze;not null;default:false" json:"autoAnalyze"`
	Enabled             bool           `gorm:"column:enabled;not null;default:true;index" json:"enabled"`
	CreatedBy           *string        `gorm:"column:created_by;type:varchar(50)" json:"createdBy"`
	// Status Information
	LastRunAt     *time.Time     `gorm:"column:last_run_at;type:timestamp" json:"lastRunAt"`
	LastRunStatus enum.RunStatus `gorm:"column:last_run_status;type:varchar(50)" json:"lastRunStatus"`
	LastRunError  string         `gorm:"column:last_run_error;type:text" json:"lastRunError"`
	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

// AdmissionPolicy is the per-mailbox attachment acceptance rule.
type AdmissionPolicy struct {
	AllowedTypePrefixes []string
	MaxSizeBytes        int64
}

func (MailboxConfiguration) TableName() string {
	return "mailbox_configurations"
}

func (m *MailboxConfiguration) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("mbxc", 16)
	}
	return nil
}

// Policy returns the admission policy, falling back to the given defaults for unset fields.
func (m *MailboxConfiguration) Policy(defaults AdmissionPolicy) AdmissionPolicy {
	policy := AdmissionPolicy{
		AllowedTypePrefixes: []string(m.AllowedContentTypes),
		MaxSizeBytes:        m.MaxAttachmentBytes,
	}
	if len(policy.AllowedTypePrefixes) == 0 {
		policy.AllowedTypePrefixes = defaults.AllowedTypePrefixes
	}
	if policy.MaxSizeBytes <= 0 {
		policy.MaxSizeBytes = defaults.MaxSizeBytes
	}
	return policy
}
