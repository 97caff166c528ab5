package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/customeros/docingest/interfaces"
)

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) interfaces.Store {
	return &store{db: db}
}

func (s *store) Documents() interfaces.DocumentRepository {
	return NewDocumentRepository(s.db)
}

func (s *store) ProcessedMessages() interfaces.ProcessedMessageRepository {
	return NewProcessedMessageRepository(s.db)
}

// Transaction uses gorm's nested transaction support, so inside an open
// transaction it runs in a savepoint.
func (s *store) Transaction(ctx context.Context, fn func(tx interfaces.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
