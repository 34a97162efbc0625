package utils

import (
	"io"
	"log"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"familyconnect/config"
	"familyconnect/models"
	"familyconnect/worker"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func createUser(t *testing.T, db *gorm.DB, name, phone string, familyID *uint, fcmToken string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		PhoneNumber:  phone,
		IsVerified:   true,
		FamilyID:     familyID,
		FCMToken:     fcmToken,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createFamily(t *testing.T, db *gorm.DB, name, code string, createdBy uint) *models.Family {
	t.Helper()
	family := &models.Family{Name: name, InviteCode: code, CreatedBy: createdBy}
	require.NoError(t, db.Create(family).Error)
	return family
}

type recordedBroadcast struct {
	FamilyID uint
	Event    string
	Payload  interface{}
}

// fakeBroadcaster records broadcasts instead of pushing frames to sockets.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedBroadcast
}

func (f *fakeBroadcaster) Broadcast(familyID uint, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedBroadcast{FamilyID: familyID, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) recorded() []recordedBroadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedBroadcast, len(f.events))
	copy(out, f.events)
	return out
}

// fakePushQueue records enqueued jobs; reports full when told to.
type fakePushQueue struct {
	mu   sync.Mutex
	jobs []worker.PushJob
	full bool
}

func (f *fakePushQueue) Enqueue(job worker.PushJob) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.jobs = append(f.jobs, job)
	return true
}

func (f *fakePushQueue) enqueued() []worker.PushJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]worker.PushJob, len(f.jobs))
	copy(out, f.jobs)
	return out
}

// newTestFanOut wires a FanOut over the test database with recording fakes.
func newTestFanOut(t *testing.T, db *gorm.DB) (*FanOut, *fakeBroadcaster, *fakePushQueue) {
	t.Helper()
	broadcaster := &fakeBroadcaster{}
	push := &fakePushQueue{}
	fanout := NewFanOut(db, broadcaster, push, NewResolver(db), testLogger())
	return fanout, broadcaster, push
}
