package folder

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
)

type resolver struct {
	log         logger.Logger
	folders     interfaces.FolderRepository
	members     interfaces.OrganizationMemberRepository
	defaultName string
}

func NewResolver(log logger.Logger, folders interfaces.FolderRepository, members interfaces.OrganizationMemberRepository, defaultName string) interfaces.FolderResolver {
	return &resolver{
		log:         log,
		folders:     folders,
		members:     members,
		defaultName: defaultName,
	}
}

// Resolve returns the folder documents of the mailbox are filed under. An explicit
// target folder is trusted as is; otherwise the organization's default root folder
// is found or created.
func (r *resolver) Resolve(ctx context.Context, cfg *models.MailboxConfiguration) (*models.Folder, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "folder.Resolve")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOrganization(span, cfg.OrganizationID)

	if cfg.TargetFolderID != nil && *cfg.TargetFolderID != "" {
		return &models.Folder{ID: *cfg.TargetFolderID, OrganizationID: cfg.OrganizationID}, nil
	}

	existing, err := r.folders.FindRootByName(ctx, cfg.OrganizationID, r.defaultName)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, ingesterrors.Folder(cfg.OrganizationID, errors.Wrap(err, "find default folder"))
	}
	if existing != nil {
		return existing, nil
	}

	member, err := r.members.FindAnyMember(ctx, cfg.OrganizationID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, ingesterrors.Folder(cfg.OrganizationID, errors.Wrap(err, "find organization member"))
	}
	if member == nil {
		tracing.TraceErr(span, ingesterrors.ErrNoOrganizationMember)
		return nil, ingesterrors.Folder(cfg.OrganizationID, ingesterrors.ErrNoOrganizationMember)
	}

	err = r.folders.CreateRoot(ctx, &models.Folder{
		OrganizationID: cfg.OrganizationID,
		Name:           r.defaultName,
		CreatedBy:      member.UserID,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, ingesterrors.Folder(cfg.OrganizationID, errors.Wrap(err, "create default folder"))
	}

	// re-read: a concurrent run may have won the insert
	created, err := r.folders.FindRootByName(ctx, cfg.OrganizationID, r.defaultName)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, ingesterrors.Folder(cfg.OrganizationID, errors.Wrap(err, "reload default folder"))
	}
	if created == nil {
		err = errors.Errorf("default folder %q missing after create", r.defaultName)
		tracing.TraceErr(span, err)
		return nil, ingesterrors.Folder(cfg.OrganizationID, err)
	}

	r.log.Info("created default folder",
		zap.String("organization_id", cfg.OrganizationID),
		zap.String("folder_id", created.ID),
	)
	return created, nil
}
