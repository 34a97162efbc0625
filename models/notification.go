package models

import "gorm.io/gorm"

// Notification types
const (
	NotifFamilyInvite  = "family_invite"
	NotifNewNeed       = "new_need"
	NotifNewMessage    = "new_message"
	NotifNeedFulfilled = "need_fulfilled"
)

// Notification is a durable per-recipient record of a fan-out event.
// Rows are append-only; IsRead flips only through the explicit mark-read
// action.
type Notification struct {
	gorm.Model
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	SenderID    *uint  `json:"sender_id,omitempty"` // who caused the notification
	Type        string `gorm:"not null" json:"type"`
	Content     string `gorm:"not null" json:"content"`
	// ID of the triggering entity: a FamilyRequest, NeedPost or Message
	// depending on Type
	RelatedID *uint `json:"related_id,omitempty"`
	IsRead    bool  `gorm:"default:false" json:"is_read"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
