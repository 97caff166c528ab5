package handlers

import (
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/repository"
	"github.com/customeros/docingest/services"
)

type APIHandlers struct {
	Ingestion             *IngestionHandler
	MailboxConfigurations *MailboxConfigurationsHandler
}

func InitHandlers(s *services.Services, r *repository.Repositories) *APIHandlers {
	return NewAPIHandlers(s.IngestionService, s.Vault, r.MailboxConfigurationRepository)
}

func NewAPIHandlers(ingestion interfaces.IngestionService, vault interfaces.CredentialVault, configurations interfaces.MailboxConfigurationRepository) *APIHandlers {
	return &APIHandlers{
		Ingestion:             NewIngestionHandler(ingestion),
		MailboxConfigurations: NewMailboxConfigurationsHandler(vault, configurations),
	}
}
