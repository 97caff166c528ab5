package handlers

import (
	"net/http"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	api_errors "github.com/customeros/docingest/api/errors"
	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

const defaultImapPort = 993

type MailboxConfigurationsHandler struct {
	vault          interfaces.CredentialVault
	configurations interfaces.MailboxConfigurationRepository
}

func NewMailboxConfigurationsHandler(vault interfaces.CredentialVault, configurations interfaces.MailboxConfigurationRepository) *MailboxConfigurationsHandler {
	return &MailboxConfigurationsHandler{
		vault:          vault,
		configurations: configurations,
	}
}

// Create registers a mailbox for ingestion. The password is stored concealed.
func (h *MailboxConfigurationsHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CreateMailboxConfiguration", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var input dto.MailboxConfigurationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tracing.TagOrganization(span, input.OrganizationID)

		if validationErrors := validateMailboxConfigurationInput(&input); validationErrors.HasErrors() {
			tracing.TraceErr(span, validationErrors)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mailbox configuration", "fields": validationErrors.Fields()})
			return
		}

		concealed, err := h.vault.Conceal(input.ImapPassword)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to store credential"})
			return
		}

		cfg := &models.MailboxConfiguration{
			OrganizationID:        input.OrganizationID,
			EmailAddress:          strings.ToLower(strings.TrimSpace(input.EmailAddress)),
			ImapServer:            strings.TrimSpace(input.ImapServer),
			ImapPort:              input.ImapPort,
			ImapTLS:               utils.GetOrDefault(input.ImapTLS, true),
			ImapUsername:          input.ImapUsername,
			ImapPasswordEncrypted: concealed,
			TargetFolderID:        input.TargetFolderID,
			AllowedContentTypes:   pq.StringArray(utils.AppendUnique(nil, input.AllowedContentTypes...)),
			MaxAttachmentBytes:    input.MaxAttachmentBytes,
			AutoAnalyze:           input.AutoAnalyze,
			Enabled:               true,
			CreatedBy:             input.CreatedBy,
		}
		if cfg.ImapPort == 0 {
			cfg.ImapPort = defaultImapPort
		}
		if cfg.ImapUsername == "" {
			cfg.ImapUsername = cfg.EmailAddress
		}

		if err := h.configurations.Create(ctx, cfg); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		tracing.TagEntity(span, cfg.ID)
		c.JSON(http.StatusCreated, gin.H{"status": "mailbox configuration added", "id": cfg.ID})
	}
}

// Get returns a mailbox configuration without its credential.
func (h *MailboxConfigurationsHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetMailboxConfiguration", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagEntity(span, id)

		cfg, err := h.configurations.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if cfg == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox configuration not found"})
			return
		}

		c.JSON(http.StatusOK, cfg)
	}
}

func validateMailboxConfigurationInput(input *dto.MailboxConfigurationInput) *api_errors.MultiErrors {
	validationErrors := api_errors.NewMultiErrors()

	if strings.TrimSpace(input.OrganizationID) == "" {
		validationErrors.Add("organizationId", "is required", nil)
	}
	if !mailvalidate.ValidateEmailSyntax(strings.TrimSpace(input.EmailAddress)).IsValid {
		validationErrors.Add("emailAddress", "must be a valid email address", nil)
	}
	if strings.TrimSpace(input.ImapServer) == "" {
		validationErrors.Add("imapServer", "is required", nil)
	}
	if input.ImapPort < 0 || input.ImapPort > 65535 {
		validationErrors.Add("imapPort", "must be between 1 and 65535", nil)
	}
	if input.ImapPassword == "" {
		validationErrors.Add("imapPassword", "is required", nil)
	}
	if input.MaxAttachmentBytes < 0 {
		validationErrors.Add("maxAttachmentBytes", "must not be negative", nil)
	}
	for _, prefix := range input.AllowedContentTypes {
		if strings.TrimSpace(prefix) == "" {
			validationErrors.Add("allowedContentTypes", "must not contain empty entries", nil)
			break
		}
	}

	return validationErrors
}
