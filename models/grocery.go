package models

import "gorm.io/gorm"

// GroceryList groups items for one family. Seen rows track which members
// have opened the list since creation.
type GroceryList struct {
	gorm.Model
	Title       string `gorm:"default:'Grocery List'" json:"title"`
	FamilyID    uint   `gorm:"not null;index" json:"family_id"`
	CreatedByID uint   `gorm:"not null" json:"created_by_id"`

	Items []GroceryItem `gorm:"foreignKey:ListID" json:"items"`
	Seen  []GrocerySeen `gorm:"foreignKey:ListID" json:"seen_by"`
}

// GroceryItem is a single entry on a list (e.g. "Milk").
type GroceryItem struct {
	gorm.Model
	ListID      uint   `gorm:"not null;index" json:"list_id"`
	Name        string `gorm:"not null" json:"name"`
	IsPurchased bool   `gorm:"default:false" json:"is_purchased"`
	// Who bought this specific item; cleared when unpurchased
	PurchasedByID *uint `json:"purchased_by_id,omitempty"`

	PurchasedBy *User `gorm:"foreignKey:PurchasedByID" json:"purchased_by,omitempty"`
}

// GrocerySeen marks a list as viewed by a user. The unique index makes
// repeated markings a no-op at the storage layer.
type GrocerySeen struct {
	gorm.Model
	ListID uint `gorm:"not null;uniqueIndex:idx_grocery_seen_list_user" json:"list_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_grocery_seen_list_user" json:"user_id"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
