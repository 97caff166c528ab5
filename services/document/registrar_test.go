package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/models"
)

type fakeDocuments struct {
	created []*models.Document
	err     error
}

func (f *fakeDocuments) Create(_ context.Context, document *models.Document) error {
	if f.err != nil {
		return f.err
	}
	document.ID = "doc-1"
	f.created = append(f.created, document)
	return nil
}

type fakeStore struct {
	documents    *fakeDocuments
	transactions int
}

func (s *fakeStore) Documents() interfaces.DocumentRepository                 { return s.documents }
func (s *fakeStore) ProcessedMessages() interfaces.ProcessedMessageRepository { return nil }
func (s *fakeStore) Transaction(_ context.Context, fn func(tx interfaces.Store) error) error {
	s.transactions++
	return fn(s)
}

func registration() dto.DocumentRegistration {
	return dto.DocumentRegistration{
		FolderID:        "fold-1",
		OrganizationID:  "org-1",
		Name:            "invoice.pdf",
		Description:     "From: a@example.com",
		ContentType:     "application/pdf",
		Size:            2048,
		CreatedBy:       "user-1",
		SourceReference: "7:42",
		Object:          &dto.StoredObject{Key: "org-1/k", URL: "https://files.example.com/org-1/k"},
	}
}

func TestRegisterCreatesDocument(t *testing.T) {
	store := &fakeStore{documents: &fakeDocuments{}}

	document, err := NewRegistrar().Register(context.Background(), store, registration())
	require.NoError(t, err)

	assert.Equal(t, "doc-1", document.ID)
	assert.Equal(t, "https://files.example.com/org-1/k", document.StorageURL)
	assert.Equal(t, "org-1/k", document.StorageKey)
	assert.Equal(t, []string{TagEmailImport}, []string(document.Tags))
	assert.Equal(t, enum.DocumentSourceEmail, document.Source)
	assert.Equal(t, "7:42", document.SourceReference)
	assert.Equal(t, 1, store.transactions)
	assert.Len(t, store.documents.created, 1)
}

func TestRegisterFailureIsRegistrationError(t *testing.T) {
	store := &fakeStore{documents: &fakeDocuments{err: errors.New("insert failed")}}

	_, err := NewRegistrar().Register(context.Background(), store, registration())
	require.Error(t, err)
	assert.Equal(t, ingesterrors.KindRegistration, ingesterrors.KindOf(err))
	assert.Contains(t, err.Error(), "invoice.pdf")
}

func TestRegisterWithoutObject(t *testing.T) {
	store := &fakeStore{documents: &fakeDocuments{}}
	input := registration()
	input.Object = nil

	_, err := NewRegistrar().Register(context.Background(), store, input)
	assert.Equal(t, ingesterrors.KindRegistration, ingesterrors.KindOf(err))
	assert.Empty(t, store.documents.created)
}

func TestRegisterTruncatesLongNameAndContentType(t *testing.T) {
	store := &fakeStore{documents: &fakeDocuments{}}
	input := registration()
	input.Name = strings.Repeat("n", 700) + ".pdf"
	input.ContentType = "application/" + strings.Repeat("x", 300)

	document, err := NewRegistrar().Register(context.Background(), store, input)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("n", models.MaxDocumentNameLength), document.Name)
	assert.Len(t, document.ContentType, models.MaxContentTypeLength)
	assert.True(t, strings.HasPrefix(document.ContentType, "application/"))
}
