package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"familyconnect/utils"
)

// wsSession serializes writes to one websocket connection; broadcasts can
// arrive from many request goroutines at once.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSession) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// joinFrame is the only message clients send on the realtime channel.
type joinFrame struct {
	Event    string `json:"event"`
	FamilyID uint   `json:"family_id"`
}

// HandleFamilySocket serves one realtime connection. The client joins its
// family room by sending {"event": "join_family", "family_id": N}; the hub
// verifies the claim against actual membership before admitting it. The
// session is removed from its room when the connection drops.
func HandleFamilySocket(hub *utils.Hub, logger *log.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			c.Close()
			return
		}

		session := &wsSession{conn: c}
		defer func() {
			hub.Unsubscribe(session)
			c.Close()
		}()

		for {
			var frame joinFrame
			if err := c.ReadJSON(&frame); err != nil {
				return
			}

			if frame.Event != "join_family" || frame.FamilyID == 0 {
				continue
			}

			if err := hub.Subscribe(session, userID, frame.FamilyID); err != nil {
				logger.Printf("subscribe rejected for user %d family %d: %v", userID, frame.FamilyID, err)
				if writeErr := session.WriteJSON(utils.Envelope{
					Event: "error",
					Data:  err.Error(),
				}); writeErr != nil {
					return
				}
			}
		}
	}
}
