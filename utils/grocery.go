package utils

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"familyconnect/models"
)

// GroceryService owns grocery list mutations. Every mutation rebroadcasts to
// the family room; nothing here writes the notification ledger, grocery
// changes are a lower urgency class than chat and needs.
type GroceryService struct {
	DB     *gorm.DB
	FanOut *FanOut
	Logger *log.Logger
}

func NewGroceryService(db *gorm.DB, fanout *FanOut, logger *log.Logger) *GroceryService {
	return &GroceryService{DB: db, FanOut: fanout, Logger: logger}
}

// CreateList creates a list with the creator pre-marked as having seen it.
func (s *GroceryService) CreateList(user *models.User, title string) (*models.GroceryList, error) {
	if title == "" {
		title = "New List"
	}

	list := models.GroceryList{
		Title:       title,
		FamilyID:    *user.FamilyID,
		CreatedByID: user.ID,
		Seen:        []models.GrocerySeen{{UserID: user.ID}},
	}
	if err := s.DB.Create(&list).Error; err != nil {
		return nil, err
	}

	s.FanOut.GroceryChanged(list.FamilyID, EventNewGroceryList, &list)
	return &list, nil
}

// Lists returns the family's lists, newest first, with items and seen-by
// users loaded.
func (s *GroceryService) Lists(familyID uint) ([]models.GroceryList, error) {
	var lists []models.GroceryList
	err := s.DB.Where("family_id = ?", familyID).
		Order("created_at DESC").
		Preload("Items").
		Preload("Items.PurchasedBy").
		Preload("Seen.User").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// AddItem appends an item to the list and rebroadcasts the full list.
func (s *GroceryService) AddItem(listID uint, name string) (*models.GroceryList, error) {
	list, err := s.loadList(listID)
	if err != nil {
		return nil, err
	}

	item := models.GroceryItem{ListID: list.ID, Name: name}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, err
	}
	list.Items = append(list.Items, item)

	s.FanOut.GroceryChanged(list.FamilyID, EventUpdateGroceryList, list)
	return list, nil
}

// ToggleItem flips an item's purchased flag, recording who bought it and
// clearing the buyer when unpurchased.
func (s *GroceryService) ToggleItem(user *models.User, listID, itemID uint) (*models.GroceryList, error) {
	list, err := s.loadList(listID)
	if err != nil {
		return nil, err
	}

	var item models.GroceryItem
	if err := s.DB.Where("id = ? AND list_id = ?", itemID, listID).First(&item).Error; err != nil {
		return nil, TranslateStorage(err, "Item not found", "")
	}

	item.IsPurchased = !item.IsPurchased
	if item.IsPurchased {
		item.PurchasedByID = &user.ID
	} else {
		item.PurchasedByID = nil
	}
	if err := s.DB.Model(&item).Select("is_purchased", "purchased_by_id").Updates(&item).Error; err != nil {
		return nil, err
	}

	list, err = s.loadList(listID)
	if err != nil {
		return nil, err
	}

	s.FanOut.GroceryChanged(list.FamilyID, EventUpdateGroceryList, list)
	return list, nil
}

// MarkSeen records that the user viewed the list. Idempotent: a repeat
// marking writes nothing and broadcasts nothing.
func (s *GroceryService) MarkSeen(user *models.User, listID uint) error {
	list, err := s.loadList(listID)
	if err != nil {
		return err
	}

	var existing models.GrocerySeen
	err = s.DB.Where("list_id = ? AND user_id = ?", listID, user.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	seen := models.GrocerySeen{ListID: listID, UserID: user.ID}
	if err := s.DB.Create(&seen).Error; err != nil {
		// A racing marking beat us to the constraint; still a no-op.
		if translated := TranslateStorage(err, "", "seen"); IsKind(translated, KindPrecondition) {
			return nil
		}
		return err
	}

	var seenBy []models.GrocerySeen
	if err := s.DB.Where("list_id = ?", listID).Preload("User").Find(&seenBy).Error; err != nil {
		s.Logger.Printf("seen-by reload failed for list %d: %v", listID, err)
		seenBy = append(list.Seen, seen)
	}

	s.FanOut.GroceryChanged(list.FamilyID, EventListSeen, map[string]interface{}{
		"listId": listID,
		"seenBy": seenBy,
	})
	return nil
}

func (s *GroceryService) loadList(listID uint) (*models.GroceryList, error) {
	var list models.GroceryList
	if err := s.DB.Preload("Items").Preload("Seen").First(&list, listID).Error; err != nil {
		return nil, TranslateStorage(err, "List not found", "")
	}
	return &list, nil
}
