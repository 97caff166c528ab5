package interfaces

import (
	"context"
	"time"

	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/models"
)

type MailboxConfigurationRepository interface {
	// GetByID returns nil without error when the configuration does not exist.
	GetByID(ctx context.Context, id string) (*models.MailboxConfiguration, error)
	GetEnabled(ctx context.Context) ([]*models.MailboxConfiguration, error)
	Create(ctx context.Context, cfg *models.MailboxConfiguration) error
	UpdateRunStatus(ctx context.Context, id string, status enum.RunStatus, runError string, runAt time.Time) error
}

type ProcessedMessageRepository interface {
	Exists(ctx context.Context, configurationID, messageID string) (bool, error)
	// Create reports false when a row with the same key already exists.
	Create(ctx context.Context, record *models.ProcessedMessage) (bool, error)
}

type FolderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	FindRootByName(ctx context.Context, organizationID, name string) (*models.Folder, error)
	// CreateRoot inserts a root folder and silently ignores a concurrent duplicate.
	CreateRoot(ctx context.Context, folder *models.Folder) error
}

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
}

type OrganizationMemberRepository interface {
	FindAnyMember(ctx context.Context, organizationID string) (*models.OrganizationMember, error)
}

// Store exposes the repositories that take part in a message commit. Calling
// Transaction on a store that is already inside a transaction opens a savepoint.
type Store interface {
	Documents() DocumentRepository
	ProcessedMessages() ProcessedMessageRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
