package models

import "gorm.io/gorm"

// Family is the sharing group and the unit of real-time broadcast scope.
type Family struct {
	gorm.Model
	Name       string `gorm:"not null" json:"name"`
	InviteCode string `gorm:"uniqueIndex;not null" json:"invite_code"` // 6 hex chars
	CreatedBy  uint   `gorm:"not null" json:"created_by"`
}

// FamilyRequest statuses
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FamilyRequest is a directed join invitation from a family member to a
// family-less user. The composite unique index spans the full triple
// regardless of status, so a resolved request blocks a repeat invite
// between the same pair for the same family.
type FamilyRequest struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;uniqueIndex:idx_family_requests_triple" json:"sender_id"`
	ReceiverID uint   `gorm:"not null;uniqueIndex:idx_family_requests_triple" json:"receiver_id"`
	FamilyID   uint   `gorm:"not null;uniqueIndex:idx_family_requests_triple" json:"family_id"`
	Status     string `gorm:"default:'pending'" json:"status"` // pending, accepted, rejected

	Sender   User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User   `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Family   Family `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}
