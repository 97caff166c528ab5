package document

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

const TagEmailImport = "email-import"

type registrar struct{}

func NewRegistrar() interfaces.DocumentRegistrar {
	return &registrar{}
}

// Register inserts the document row in its own savepoint, so a failed insert
// leaves the caller's transaction usable. The stored object is never removed.
func (r *registrar) Register(ctx context.Context, store interfaces.Store, input dto.DocumentRegistration) (*models.Document, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "document.Register")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOrganization(span, input.OrganizationID)

	if input.Object == nil {
		err := ingesterrors.Registration(input.Name, errors.New("no stored object"))
		tracing.TraceErr(span, err)
		return nil, err
	}

	document := &models.Document{
		FolderID:        input.FolderID,
		OrganizationID:  input.OrganizationID,
		Name:            utils.TruncateString(input.Name, models.MaxDocumentNameLength),
		Description:     input.Description,
		StorageURL:      input.Object.URL,
		StorageKey:      input.Object.Key,
		ContentType:     utils.TruncateString(input.ContentType, models.MaxContentTypeLength),
		Size:            input.Size,
		CreatedBy:       input.CreatedBy,
		Tags:            pq.StringArray{TagEmailImport},
		Source:          enum.DocumentSourceEmail,
		SourceReference: input.SourceReference,
	}

	err := store.Transaction(ctx, func(tx interfaces.Store) error {
		return tx.Documents().Create(ctx, document)
	})
	if err != nil {
		err = ingesterrors.Registration(input.Name, err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, document.ID)
	return document, nil
}
