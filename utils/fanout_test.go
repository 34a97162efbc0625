package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"familyconnect/models"
)

// seedFamily creates a family with an author plus two members, one of which
// has a registered device token.
func seedFamily(t *testing.T, db *gorm.DB) (author, withToken, withoutToken *models.User, familyID uint) {
	t.Helper()
	author = createUser(t, db, "alice", "+201", nil, "")
	family := createFamily(t, db, "Does", "A1B2C3", author.ID)
	require.NoError(t, db.Model(author).Update("family_id", family.ID).Error)
	author.FamilyID = &family.ID
	withToken = createUser(t, db, "bob", "+202", &family.ID, "token-bob")
	withoutToken = createUser(t, db, "carol", "+203", &family.ID, "")
	return author, withToken, withoutToken, family.ID
}

func TestMessageFanOut(t *testing.T) {
	db := openTestDB(t)
	fanout, broadcaster, push := newTestFanOut(t, db)
	author, withToken, withoutToken, familyID := seedFamily(t, db)

	msg := &models.Message{Content: "dinner at 7", SenderID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(msg).Error)

	fanout.MessageCreated(author, msg)

	events := broadcaster.recorded()
	require.Len(t, events, 1)
	require.Equal(t, EventNewMessage, events[0].Event)
	require.Equal(t, familyID, events[0].FamilyID)

	// Exactly one ledger entry per member, author excluded.
	var notifications []models.Notification
	require.NoError(t, db.Order("recipient_id").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	require.ElementsMatch(t,
		[]uint{withToken.ID, withoutToken.ID},
		[]uint{notifications[0].RecipientID, notifications[1].RecipientID})
	for _, n := range notifications {
		require.Equal(t, models.NotifNewMessage, n.Type)
		require.Equal(t, "alice: dinner at 7", n.Content)
		require.Equal(t, author.ID, *n.SenderID)
		require.Equal(t, msg.ID, *n.RelatedID)
		require.False(t, n.IsRead)
	}

	// Push only for the member with a device token.
	jobs := push.enqueued()
	require.Len(t, jobs, 1)
	require.Equal(t, "token-bob", jobs[0].Token)
	require.Equal(t, "New Family Message", jobs[0].Title)
}

func TestMessageFanOutFileBody(t *testing.T) {
	db := openTestDB(t)
	fanout, _, _ := newTestFanOut(t, db)
	author, _, _, familyID := seedFamily(t, db)

	msg := &models.Message{Attachment: "https://cdn.example.com/x.jpg", FileType: "image", SenderID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(msg).Error)

	fanout.MessageCreated(author, msg)

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 2)
	require.Equal(t, "alice sent a file", notifications[0].Content)
}

func TestUrgentNeedFanOut(t *testing.T) {
	db := openTestDB(t)
	fanout, broadcaster, push := newTestFanOut(t, db)
	author, _, _, familyID := seedFamily(t, db)

	need := &models.NeedPost{Content: "pick up medicine", Urgency: models.UrgencyUrgent, CreatedByID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(need).Error)

	fanout.NeedCreated(author, need)

	events := broadcaster.recorded()
	require.Len(t, events, 1)
	require.Equal(t, EventNewNeed, events[0].Event)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	jobs := push.enqueued()
	require.Len(t, jobs, 1)
	require.Equal(t, "URGENT Family Need", jobs[0].Title)
	require.Equal(t, "alice needs: pick up medicine", jobs[0].Body)
}

func TestNormalNeedTitle(t *testing.T) {
	db := openTestDB(t)
	fanout, _, push := newTestFanOut(t, db)
	author, _, _, familyID := seedFamily(t, db)

	need := &models.NeedPost{Content: "milk", Urgency: models.UrgencyNormal, CreatedByID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(need).Error)

	fanout.NeedCreated(author, need)

	jobs := push.enqueued()
	require.Len(t, jobs, 1)
	require.Equal(t, "New Family Need", jobs[0].Title)
}

func TestFanOutSurvivesFullPushQueue(t *testing.T) {
	db := openTestDB(t)
	broadcaster := &fakeBroadcaster{}
	push := &fakePushQueue{full: true}
	fanout := NewFanOut(db, broadcaster, push, NewResolver(db), testLogger())
	author, _, _, familyID := seedFamily(t, db)

	msg := &models.Message{Content: "hi", SenderID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(msg).Error)

	fanout.MessageCreated(author, msg)

	// Push delivery failing must not cost any ledger entry.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestNeedUpdateBroadcastsOnly(t *testing.T) {
	db := openTestDB(t)
	fanout, broadcaster, push := newTestFanOut(t, db)
	author, _, _, familyID := seedFamily(t, db)

	need := &models.NeedPost{Content: "milk", CreatedByID: author.ID, FamilyID: familyID, Status: models.NeedFulfilled}
	require.NoError(t, db.Create(need).Error)

	fanout.NeedUpdated(need)

	events := broadcaster.recorded()
	require.Len(t, events, 1)
	require.Equal(t, EventUpdateNeed, events[0].Event)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count, "status updates are realtime only")
	require.Empty(t, push.enqueued())
}

func TestGroceryChangeBroadcastsOnly(t *testing.T) {
	db := openTestDB(t)
	fanout, broadcaster, push := newTestFanOut(t, db)
	_, _, _, familyID := seedFamily(t, db)

	fanout.GroceryChanged(familyID, EventNewGroceryList, map[string]string{"title": "weekly"})

	events := broadcaster.recorded()
	require.Len(t, events, 1)
	require.Equal(t, EventNewGroceryList, events[0].Event)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
	require.Empty(t, push.enqueued())
}

func TestFanOutWithoutHub(t *testing.T) {
	db := openTestDB(t)
	fanout := NewFanOut(db, nil, &fakePushQueue{}, NewResolver(db), testLogger())
	author, _, _, familyID := seedFamily(t, db)

	msg := &models.Message{Content: "hi", SenderID: author.ID, FamilyID: familyID}
	require.NoError(t, db.Create(msg).Error)

	// Broadcast being unavailable must not prevent the durable writes.
	fanout.MessageCreated(author, msg)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}
