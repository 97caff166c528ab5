package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/repository"
	"github.com/customeros/docingest/services/document"
	"github.com/customeros/docingest/services/events"
	"github.com/customeros/docingest/services/folder"
	"github.com/customeros/docingest/services/imap"
	"github.com/customeros/docingest/services/ingestion"
	"github.com/customeros/docingest/services/ledger"
	"github.com/customeros/docingest/services/parser"
	"github.com/customeros/docingest/services/storage"
	"github.com/customeros/docingest/services/vault"
)

type Services struct {
	Vault            interfaces.CredentialVault
	EventPublisher   interfaces.EventPublisher
	StorageService   interfaces.StorageService
	IngestionService interfaces.IngestionService

	redis *redis.Client
}

func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	credentials, err := vault.NewVault(vault.Config{
		EncryptionKey: cfg.IngestionConfig.CredentialEncryptionKey,
		Production:    cfg.AppConfig.IsProduction(),
	}, log)
	if err != nil {
		return nil, err
	}

	storageService, err := storage.NewStorageServiceFromConfig(cfg.StorageConfig)
	if err != nil {
		return nil, err
	}

	publisher, err := events.NewEventPublisher(cfg.AppConfig.RabbitMQURL, log, events.DefaultPublisherConfig())
	if err != nil {
		return nil, err
	}

	rdb, err := ledger.NewRedisClient(ctx, cfg.RedisConfig)
	if err != nil {
		publisher.Close()
		return nil, err
	}
	var locker ledger.Locker
	if rdb != nil {
		locker = ledger.NewRedisLocker(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, overlapping runs rely on the ledger key alone")
	}

	ingestionService := ingestion.NewIngestionService(log, cfg.IngestionConfig, ingestion.Dependencies{
		Configurations: repos.MailboxConfigurationRepository,
		Store:          repos.Store,
		Vault:          credentials,
		Connector:      imap.NewConnector(log),
		Parser:         parser.NewParser(log),
		Ledger:         ledger.NewLedger(log, repos.ProcessedMessageRepository, locker, cfg.IngestionConfig.ClaimTTL),
		Folders:        folder.NewResolver(log, repos.FolderRepository, repos.OrganizationMemberRepository, cfg.IngestionConfig.DefaultFolderName),
		Uploader:       storage.NewUploader(storageService, cfg.IngestionConfig.UploadTimeout),
		Registrar:      document.NewRegistrar(),
		Publisher:      publisher,
	})

	return &Services{
		Vault:            credentials,
		EventPublisher:   publisher,
		StorageService:   storageService,
		IngestionService: ingestionService,
		redis:            rdb,
	}, nil
}

func (s *Services) Close() error {
	var errs []error

	if s.EventPublisher != nil {
		if err := s.EventPublisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing services: %v", errs)
	}
	return nil
}
