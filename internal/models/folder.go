package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/docingest/internal/utils"
)

// Folder groups documents of an organization. Root folders have no parent and
// their names are unique per organization.
type Folder struct {
	ID             string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(50);not null;uniqueIndex:idx_document_folders_root_name,priority:1,where:parent_id IS NULL" json:"organizationId"`
	ParentID       *string   `gorm:"column:parent_id;type:varchar(50);index" json:"parentId"`
	Name           string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_document_folders_root_name,priority:2,where:parent_id IS NULL" json:"name"`
	CreatedBy      string    `gorm:"column:created_by;type:varchar(50)" json:"createdBy"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Folder) TableName() string {
	return "document_folders"
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = utils.GenerateNanoIDWithPrefix("fold", 16)
	}
	return nil
}
