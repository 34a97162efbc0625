package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. A user belongs to at most one
// family at a time; FamilyID stays nil until they create or join one.
type User struct {
	gorm.Model

	// Authentication fields
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	PhoneNumber  string `gorm:"uniqueIndex;not null" json:"phone_number"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`

	// Email verification OTP
	OTP          string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	// Profile information
	Avatar string `json:"avatar,omitempty"`

	// Family membership
	FamilyID *uint  `gorm:"index" json:"family_id,omitempty"`
	Role     string `gorm:"default:'member'" json:"role"` // member, admin

	// Device push channel (FCM registration token), empty when the user
	// has no registered device
	FCMToken string `json:"-"`
}
