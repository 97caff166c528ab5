package models

import "time"

// OrganizationMember links a user to an organization. Owned by the surrounding
// application; the pipeline only reads it.
type OrganizationMember struct {
	ID             string    `gorm:"column:id;type:varchar(50);primaryKey"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(50);index;not null"`
	UserID         string    `gorm:"column:user_id;type:varchar(50);not null"`
	Role           string    `gorm:"column:role;type:varchar(50)"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}
