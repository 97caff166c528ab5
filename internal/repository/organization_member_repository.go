package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
)

type organizationMemberRepository struct {
	db *gorm.DB
}

func NewOrganizationMemberRepository(db *gorm.DB) interfaces.OrganizationMemberRepository {
	return &organizationMemberRepository{db: db}
}

// FindAnyMember returns the longest standing member of the organization, or nil.
func (r *organizationMemberRepository) FindAnyMember(ctx context.Context, organizationID string) (*models.OrganizationMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "organizationMemberRepository.FindAnyMember")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOrganization(span, organizationID)

	var member models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &member, nil
}
