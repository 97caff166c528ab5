package dto

type MailboxConfigurationInput struct {
	OrganizationID      string   `json:"organizationId"`
	EmailAddress        string   `json:"emailAddress"`
	ImapServer          string   `json:"imapServer"`
	ImapPort            int      `json:"imapPort"`
	ImapTLS             *bool    `json:"imapTls"`
	ImapUsername        string   `json:"imapUsername"`
	ImapPassword        string   `json:"imapPassword"`
	TargetFolderID      *string  `json:"targetFolderId"`
	AllowedContentTypes []string `json:"allowedContentTypes"`
	MaxAttachmentBytes  int64    `json:"maxAttachmentBytes"`
	AutoAnalyze         bool     `json:"autoAnalyze"`
	CreatedBy           *string  `json:"createdBy"`
}
