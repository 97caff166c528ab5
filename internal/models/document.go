package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/utils"
)

const (
	MaxDocumentNameLength = 500
	MaxContentTypeLength  = 255
)

// Document is a registered reference to an uploaded file.
type Document struct {
	ID              string              `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FolderID        string              `gorm:"column:folder_id;type:varchar(50);index;not null" json:"folderId"`
	OrganizationID  string              `gorm:"column:organization_id;type:varchar(50);index;not null" json:"organizationId"`
	Name            string              `gorm:"column:name;type:varchar(500);not null" json:"name"`
	Description     string              `gorm:"column:description;type:text" json:"description"`
	StorageURL      string              `gorm:"column:storage_url;type:varchar(2000);not null" json:"storageUrl"`
	StorageKey      string              `gorm:"column:storage_key;type:varchar(1000)" json:"storageKey"`
	ContentType     string              `gorm:"column:content_type;type:varchar(255)" json:"contentType"`
	Size            int64               `gorm:"column:size;not null;default:0" json:"size"`
	CreatedBy       string              `gorm:"column:created_by;type:varchar(50)" json:"createdBy"`
	Tags            pq.StringArray      `gorm:"column:tags;type:text[]" json:"tags"`
	Source          enum.DocumentSource `gorm:"column:source;type:varchar(50)" json:"source"`
	SourceReference string              `gorm:"column:source_reference;type:varchar(255);index" json:"sourceReference"`
	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = utils.GenerateNanoIDWithPrefix("doc", 16)
	}
	d.CreatedAt = utils.Now()
	d.UpdatedAt = d.CreatedAt
	return nil
}
