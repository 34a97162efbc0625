package utils

import (
	"log"
	"sync"
)

// Session is one live realtime connection. *websocket.Conn satisfies it.
type Session interface {
	WriteJSON(v interface{}) error
}

// SubscribeAuthorizer verifies that a user may join a family's room before
// the hub admits the connection. Wired to the membership resolver at startup.
type SubscribeAuthorizer func(userID, familyID uint) error

// Envelope is the wire frame for every broadcast.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub maintains the mapping from family id to the set of live sessions
// subscribed to that family's room and fans broadcasts out to them.
// All methods are safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[uint]map[Session]struct{}
	byfam     map[Session]uint // session -> current room
	authorize SubscribeAuthorizer
	logger    *log.Logger
}

func NewHub(authorize SubscribeAuthorizer, logger *log.Logger) *Hub {
	return &Hub{
		rooms:     make(map[uint]map[Session]struct{}),
		byfam:     make(map[Session]uint),
		authorize: authorize,
		logger:    logger,
	}
}

// Subscribe admits the session into the family's room. Idempotent; a session
// already in another room is moved. The claimed family id is checked against
// the authorizer, so a connection cannot join a room for a family its user
// does not belong to.
func (h *Hub) Subscribe(s Session, userID, familyID uint) error {
	if h.authorize != nil {
		if err := h.authorize(userID, familyID); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.byfam[s]; ok {
		if current == familyID {
			return nil
		}
		h.removeLocked(s, current)
	}

	room, ok := h.rooms[familyID]
	if !ok {
		room = make(map[Session]struct{})
		h.rooms[familyID] = room
	}
	room[s] = struct{}{}
	h.byfam[s] = familyID

	h.logger.Printf("session joined family room %d (%d connected)", familyID, len(room))
	return nil
}

// Unsubscribe removes the session from whatever room it is in. Called on
// disconnect; safe to call for sessions that never subscribed.
func (h *Hub) Unsubscribe(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if familyID, ok := h.byfam[s]; ok {
		h.removeLocked(s, familyID)
	}
}

func (h *Hub) removeLocked(s Session, familyID uint) {
	if room, ok := h.rooms[familyID]; ok {
		delete(room, s)
		if len(room) == 0 {
			delete(h.rooms, familyID)
		}
	}
	delete(h.byfam, s)
}

// Broadcast delivers the payload to every session currently in the family's
// room. Fire-and-forget: no acknowledgment, no retry, nothing persisted when
// the room is empty. Sessions whose write fails are dropped from the room.
func (h *Hub) Broadcast(familyID uint, event string, payload interface{}) {
	h.mu.RLock()
	sessions := make([]Session, 0, len(h.rooms[familyID]))
	for s := range h.rooms[familyID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	frame := Envelope{Event: event, Data: payload}
	for _, s := range sessions {
		if err := s.WriteJSON(frame); err != nil {
			h.logger.Printf("dropping session from family room %d: %v", familyID, err)
			h.Unsubscribe(s)
		}
	}
}

// RoomSize reports how many sessions are subscribed to a family's room.
func (h *Hub) RoomSize(familyID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[familyID])
}
