package dto

import "time"

const EventTypeDocumentIngested = "DocumentIngested"

// DocumentIngested announces a document that is eligible for automatic analysis.
type DocumentIngested struct {
	DocumentID             string    `json:"documentId"`
	OrganizationID         string    `json:"organizationId"`
	FolderID               string    `json:"folderId"`
	MailboxConfigurationID string    `json:"mailboxConfigurationId"`
	MessageID              string    `json:"messageId"`
	Name                   string    `json:"name"`
	ContentType            string    `json:"contentType"`
	Size                   int64     `json:"size"`
	StorageURL             string    `json:"storageUrl"`
	IngestedAt             time.Time `json:"ingestedAt"`
}
