package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/database"
	"github.com/customeros/docingest/internal/models"
)

type Repositories struct {
	MailboxConfigurationRepository interfaces.MailboxConfigurationRepository
	ProcessedMessageRepository     interfaces.ProcessedMessageRepository
	FolderRepository               interfaces.FolderRepository
	DocumentRepository             interfaces.DocumentRepository
	OrganizationMemberRepository   interfaces.OrganizationMemberRepository
	Store                          interfaces.Store
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		MailboxConfigurationRepository: NewMailboxConfigurationRepository(db),
		ProcessedMessageRepository:     NewProcessedMessageRepository(db),
		FolderRepository:               NewFolderRepository(db),
		DocumentRepository:             NewDocumentRepository(db),
		OrganizationMemberRepository:   NewOrganizationMemberRepository(db),
		Store:                          NewStore(db),
	}
}

// MigrateDB creates or updates the pipeline tables. Organization members are
// owned by the surrounding application and only migrated when asked to.
func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB, includeMembers bool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	migrations := []interface{}{
		&models.MailboxConfiguration{},
		&models.ProcessedMessage{},
		&models.Folder{},
		&models.Document{},
	}
	if includeMembers {
		migrations = append(migrations, &models.OrganizationMember{})
	}

	err = db.AutoMigrate(migrations...)

	database.ConfigurePool(sqlDB, dbConfig)

	return err
}
