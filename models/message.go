package models

import "gorm.io/gorm"

// Message is a family chat message. Content may be empty when the message
// carries an attachment only.
type Message struct {
	gorm.Model
	Content    string `json:"content"`
	Attachment string `gorm:"default:''" json:"attachment"`       // public URL of the uploaded file
	FileType   string `gorm:"default:'text'" json:"file_type"`    // text, image, video, raw
	SenderID   uint   `gorm:"not null;index" json:"sender_id"`
	FamilyID   uint   `gorm:"not null;index" json:"family_id"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
