package utils

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSession collects frames written to it.
type fakeSession struct {
	mu        sync.Mutex
	frames    []Envelope
	failWrite bool
}

func (s *fakeSession) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errors.New("connection gone")
	}
	s.frames = append(s.frames, v.(Envelope))
	return nil
}

func (s *fakeSession) received() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, len(s.frames))
	copy(out, s.frames)
	return out
}

func allowAll(userID, familyID uint) error { return nil }

func TestHubRoomIsolation(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	inX := &fakeSession{}
	inY := &fakeSession{}
	require.NoError(t, hub.Subscribe(inX, 1, 10))
	require.NoError(t, hub.Subscribe(inY, 2, 20))

	hub.Broadcast(10, EventNewMessage, "hello")

	require.Len(t, inX.received(), 1)
	require.Equal(t, EventNewMessage, inX.received()[0].Event)
	require.Empty(t, inY.received(), "broadcast to family 10 must not reach family 20")
}

func TestHubSubscribeIdempotent(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	s := &fakeSession{}
	require.NoError(t, hub.Subscribe(s, 1, 10))
	require.NoError(t, hub.Subscribe(s, 1, 10))
	require.Equal(t, 1, hub.RoomSize(10))

	hub.Broadcast(10, EventNewNeed, "x")
	require.Len(t, s.received(), 1, "duplicate subscription must not double-deliver")
}

func TestHubSubscribeMovesRooms(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	s := &fakeSession{}
	require.NoError(t, hub.Subscribe(s, 1, 10))
	require.NoError(t, hub.Subscribe(s, 1, 20))

	require.Equal(t, 0, hub.RoomSize(10))
	require.Equal(t, 1, hub.RoomSize(20))
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	s := &fakeSession{}
	require.NoError(t, hub.Subscribe(s, 1, 10))
	hub.Unsubscribe(s)
	require.Equal(t, 0, hub.RoomSize(10))

	hub.Broadcast(10, EventNewMessage, "bye")
	require.Empty(t, s.received())

	// Safe on sessions that never subscribed.
	hub.Unsubscribe(&fakeSession{})
}

func TestHubAuthorizerRejects(t *testing.T) {
	deny := func(userID, familyID uint) error {
		return Precondition("You are not a member of this family")
	}
	hub := NewHub(deny, testLogger())

	s := &fakeSession{}
	err := hub.Subscribe(s, 1, 10)
	require.Error(t, err)
	require.True(t, IsKind(err, KindPrecondition))
	require.Equal(t, 0, hub.RoomSize(10))
}

func TestHubDropsFailedSessions(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	healthy := &fakeSession{}
	broken := &fakeSession{failWrite: true}
	require.NoError(t, hub.Subscribe(healthy, 1, 10))
	require.NoError(t, hub.Subscribe(broken, 2, 10))

	hub.Broadcast(10, EventNewMessage, "hi")

	require.Len(t, healthy.received(), 1)
	require.Equal(t, 1, hub.RoomSize(10), "session with failing writes should be dropped")
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub(allowAll, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := &fakeSession{}
			familyID := uint(n%3 + 1)
			_ = hub.Subscribe(s, uint(n), familyID)
			hub.Broadcast(familyID, EventUpdateNeed, fmt.Sprintf("payload-%d", n))
			hub.Unsubscribe(s)
		}(i)
	}
	wg.Wait()

	for f := uint(1); f <= 3; f++ {
		require.Equal(t, 0, hub.RoomSize(f))
	}
}
