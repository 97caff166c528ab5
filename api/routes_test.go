package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/docingest/api/handlers"
	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/services/vault"
)

const testAPIKey = "test-key"

type mockIngestionService struct {
	mock.Mock
}

func (m *mockIngestionService) RunForConfiguration(ctx context.Context, configurationID string) (*dto.RunResult, error) {
	args := m.Called(ctx, configurationID)
	result, _ := args.Get(0).(*dto.RunResult)
	return result, args.Error(1)
}

func (m *mockIngestionService) RunAllEnabled(ctx context.Context) ([]*dto.RunResult, error) {
	args := m.Called(ctx)
	results, _ := args.Get(0).([]*dto.RunResult)
	return results, args.Error(1)
}

type memoryConfigurations struct {
	configs map[string]*models.MailboxConfiguration
}

func (r *memoryConfigurations) GetByID(_ context.Context, id string) (*models.MailboxConfiguration, error) {
	return r.configs[id], nil
}

func (r *memoryConfigurations) GetEnabled(_ context.Context) ([]*models.MailboxConfiguration, error) {
	return nil, nil
}

func (r *memoryConfigurations) Create(_ context.Context, cfg *models.MailboxConfiguration) error {
	cfg.ID = "mbxc-test"
	r.configs[cfg.ID] = cfg
	return nil
}

func (r *memoryConfigurations) UpdateRunStatus(context.Context, string, enum.RunStatus, string, time.Time) error {
	return nil
}

func setupRouter(t *testing.T, ingestion *mockIngestionService) (*gin.Engine, *memoryConfigurations) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	credentials, err := vault.NewVault(vault.Config{EncryptionKey: "route-test-key"}, logger.NewNopLogger())
	require.NoError(t, err)

	configurations := &memoryConfigurations{configs: map[string]*models.MailboxConfiguration{}}
	router := gin.New()
	RegisterRoutes(router, handlers.NewAPIHandlers(ingestion, credentials, configurations), testAPIKey)
	return router, configurations
}

func perform(router *gin.Engine, method, path string, body []byte, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	router, _ := setupRouter(t, &mockIngestionService{})

	w := perform(router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &mockIngestionService{})

	w := perform(router, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestIngestionRequiresAPIKey(t *testing.T) {
	ingestion := &mockIngestionService{}
	router, _ := setupRouter(t, ingestion)

	w := perform(router, http.MethodPost, "/v1/ingestion/run", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodPost, "/v1/ingestion/run", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	ingestion.AssertNotCalled(t, "RunAllEnabled", mock.Anything)
}

func TestRunAll(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("RunAllEnabled", mock.Anything).Return([]*dto.RunResult{
		{ConfigurationID: "cfg-1", Status: enum.RunStatusSucceeded, DocumentsUploaded: 3, Errors: []string{}},
	}, nil).Once()
	router, _ := setupRouter(t, ingestion)

	w := perform(router, http.MethodPost, "/v1/ingestion/run", nil, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.RunAllResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, "cfg-1", response.Results[0].ConfigurationID)
	assert.Equal(t, 3, response.Results[0].DocumentsUploaded)
	ingestion.AssertExpectations(t)
}

func TestRunConfiguration(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("RunForConfiguration", mock.Anything, "cfg-1").Return(&dto.RunResult{
		ConfigurationID:   "cfg-1",
		Status:            enum.RunStatusPartial,
		MessagesProcessed: 1,
		Errors:            []string{"upload error (invoice.pdf): connection reset"},
	}, nil).Once()
	router, _ := setupRouter(t, ingestion)

	w := perform(router, http.MethodPost, "/v1/ingestion/configurations/cfg-1/run", nil, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)

	var result dto.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, enum.RunStatusPartial, result.Status)
	assert.Equal(t, []string{"upload error (invoice.pdf): connection reset"}, result.Errors)
}

func TestRunConfigurationErrors(t *testing.T) {
	ingestion := &mockIngestionService{}
	ingestion.On("RunForConfiguration", mock.Anything, "missing").Return(nil, ingesterrors.ErrConfigurationNotFound)
	ingestion.On("RunForConfiguration", mock.Anything, "off").Return(nil, ingesterrors.ErrConfigurationDisabled)
	router, _ := setupRouter(t, ingestion)

	w := perform(router, http.MethodPost, "/v1/ingestion/configurations/missing/run", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodPost, "/v1/ingestion/configurations/off/run", nil, testAPIKey)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateMailboxConfigurationConcealsPassword(t *testing.T) {
	router, configurations := setupRouter(t, &mockIngestionService{})

	body := []byte(`{
		"organizationId": "org-1",
		"emailAddress": "Docs@Firm.com",
		"imapServer": "imap.firm.com",
		"imapPassword": "app-password",
		"allowedContentTypes": ["application/pdf"],
		"maxAttachmentBytes": 1048576
	}`)
	w := perform(router, http.MethodPost, "/v1/mailbox-configurations", body, testAPIKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored := configurations.configs["mbxc-test"]
	require.NotNil(t, stored)
	assert.Equal(t, "docs@firm.com", stored.EmailAddress)
	assert.Equal(t, "docs@firm.com", stored.ImapUsername)
	assert.Equal(t, 993, stored.ImapPort)
	assert.True(t, stored.ImapTLS)
	assert.True(t, stored.Enabled)
	assert.NotEqual(t, "app-password", stored.ImapPasswordEncrypted)
	assert.Contains(t, stored.ImapPasswordEncrypted, "v1:")

	w = perform(router, http.MethodGet, "/v1/mailbox-configurations/mbxc-test", nil, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "v1:")
	assert.NotContains(t, w.Body.String(), "imapPassword")
}

func TestCreateMailboxConfigurationValidation(t *testing.T) {
	router, configurations := setupRouter(t, &mockIngestionService{})

	w := perform(router, http.MethodPost, "/v1/mailbox-configurations", []byte(`{"emailAddress":"not-an-email","maxAttachmentBytes":-1}`), testAPIKey)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Fields, "organizationId")
	assert.Contains(t, response.Fields, "emailAddress")
	assert.Contains(t, response.Fields, "imapServer")
	assert.Contains(t, response.Fields, "imapPassword")
	assert.Contains(t, response.Fields, "maxAttachmentBytes")
	assert.Empty(t, configurations.configs)
}

func TestGetMailboxConfigurationNotFound(t *testing.T) {
	router, _ := setupRouter(t, &mockIngestionService{})

	w := perform(router, http.MethodGet, "/v1/mailbox-configurations/missing", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
