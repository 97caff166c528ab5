package interfaces

import (
	"context"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/models"
)

type CredentialVault interface {
	Reveal(secret string) (string, error)
	Conceal(plaintext string) (string, error)
}

type MessageParser interface {
	Parse(handle dto.MessageHandle, raw []byte) (*dto.InboundMessage, error)
}

type Ledger interface {
	HasProcessed(ctx context.Context, configurationID, messageID string) (bool, error)
	// Claim reserves the message for this run; release must always be called.
	Claim(ctx context.Context, configurationID, messageID string) (release func(), err error)
	Record(ctx context.Context, store Store, record *models.ProcessedMessage) error
}

type FolderResolver interface {
	Resolve(ctx context.Context, cfg *models.MailboxConfiguration) (*models.Folder, error)
}

type DocumentRegistrar interface {
	Register(ctx context.Context, store Store, input dto.DocumentRegistration) (*models.Document, error)
}

type IngestionService interface {
	RunForConfiguration(ctx context.Context, configurationID string) (*dto.RunResult, error)
	RunAllEnabled(ctx context.Context) ([]*dto.RunResult, error)
}
