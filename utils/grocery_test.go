package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"familyconnect/models"
)

func newTestGroceryService(t *testing.T, db *gorm.DB) (*GroceryService, *fakeBroadcaster) {
	t.Helper()
	fanout, broadcaster, _ := newTestFanOut(t, db)
	return NewGroceryService(db, fanout, testLogger()), broadcaster
}

func TestCreateListSeedsCreatorSeen(t *testing.T) {
	db := openTestDB(t)
	svc, broadcaster := newTestGroceryService(t, db)
	author, _, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "Weekly Groceries")
	require.NoError(t, err)
	require.Equal(t, "Weekly Groceries", list.Title)

	var seen []models.GrocerySeen
	require.NoError(t, db.Where("list_id = ?", list.ID).Find(&seen).Error)
	require.Len(t, seen, 1)
	require.Equal(t, author.ID, seen[0].UserID)

	events := broadcaster.recorded()
	require.Len(t, events, 1)
	require.Equal(t, EventNewGroceryList, events[0].Event)
}

func TestCreateListDefaultTitle(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestGroceryService(t, db)
	author, _, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "")
	require.NoError(t, err)
	require.Equal(t, "New List", list.Title)
}

func TestAddItemBroadcasts(t *testing.T) {
	db := openTestDB(t)
	svc, broadcaster := newTestGroceryService(t, db)
	author, _, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "Weekly")
	require.NoError(t, err)

	updated, err := svc.AddItem(list.ID, "Milk")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, "Milk", updated.Items[0].Name)
	require.False(t, updated.Items[0].IsPurchased)

	events := broadcaster.recorded()
	require.Len(t, events, 2) // new_grocery_list + update_grocery_list
	require.Equal(t, EventUpdateGroceryList, events[1].Event)

	_, err = svc.AddItem(9999, "Eggs")
	require.True(t, IsKind(err, KindNotFound))
}

func TestToggleItemTracksBuyer(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestGroceryService(t, db)
	author, bob, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "Weekly")
	require.NoError(t, err)
	list, err = svc.AddItem(list.ID, "Milk")
	require.NoError(t, err)
	itemID := list.Items[0].ID

	toggled, err := svc.ToggleItem(bob, list.ID, itemID)
	require.NoError(t, err)
	require.True(t, toggled.Items[0].IsPurchased)
	require.Equal(t, bob.ID, *toggled.Items[0].PurchasedByID)

	// Unpurchasing clears the buyer.
	toggled, err = svc.ToggleItem(bob, list.ID, itemID)
	require.NoError(t, err)
	require.False(t, toggled.Items[0].IsPurchased)
	require.Nil(t, toggled.Items[0].PurchasedByID)

	_, err = svc.ToggleItem(bob, list.ID, 9999)
	require.True(t, IsKind(err, KindNotFound))
}

func TestMarkSeenIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc, broadcaster := newTestGroceryService(t, db)
	author, bob, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "Weekly")
	require.NoError(t, err)
	before := len(broadcaster.recorded())

	require.NoError(t, svc.MarkSeen(bob, list.ID))
	require.NoError(t, svc.MarkSeen(bob, list.ID))

	// Exactly one seen row for bob, exactly one list_seen broadcast.
	var count int64
	require.NoError(t, db.Model(&models.GrocerySeen{}).
		Where("list_id = ? AND user_id = ?", list.ID, bob.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	events := broadcaster.recorded()[before:]
	require.Len(t, events, 1)
	require.Equal(t, EventListSeen, events[0].Event)
}

func TestMarkSeenByCreatorIsNoOp(t *testing.T) {
	db := openTestDB(t)
	svc, broadcaster := newTestGroceryService(t, db)
	author, _, _, _ := seedFamily(t, db)

	list, err := svc.CreateList(author, "Weekly")
	require.NoError(t, err)
	before := len(broadcaster.recorded())

	// The creator is seeded into seenBy at creation time.
	require.NoError(t, svc.MarkSeen(author, list.ID))
	require.Len(t, broadcaster.recorded()[before:], 0)
}

func TestMarkSeenUnknownList(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestGroceryService(t, db)
	author, _, _, _ := seedFamily(t, db)

	err := svc.MarkSeen(author, 9999)
	require.True(t, IsKind(err, KindNotFound))
}
