package models

import "gorm.io/gorm"

// NeedPost statuses and urgency levels
const (
	NeedActive    = "active"
	NeedFulfilled = "fulfilled"

	UrgencyNormal = "normal"
	UrgencyUrgent = "urgent"
)

// NeedPost is a household request-for-help item.
type NeedPost struct {
	gorm.Model
	Content     string `gorm:"not null" json:"content"`
	Status      string `gorm:"default:'active'" json:"status"`   // active, fulfilled
	Urgency     string `gorm:"default:'normal'" json:"urgency"`  // normal, urgent
	CreatedByID uint   `gorm:"not null" json:"created_by_id"`
	FamilyID    uint   `gorm:"not null;index" json:"family_id"`

	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
