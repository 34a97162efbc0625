package utils

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"familyconnect/models"
	"familyconnect/worker"
)

// Broadcast event names. Exact strings matter to connected clients.
const (
	EventNewMessage        = "new_message"
	EventNewGroceryList    = "new_grocery_list"
	EventUpdateGroceryList = "update_grocery_list"
	EventListSeen          = "list_seen"
	EventNewNeed           = "new_need"
	EventUpdateNeed        = "update_need"
)

// Broadcaster fans an event out to every live connection in a family room.
// *Hub satisfies it.
type Broadcaster interface {
	Broadcast(familyID uint, event string, payload interface{})
}

// PushQueue accepts best-effort push jobs. *worker.PushWorker satisfies it.
type PushQueue interface {
	Enqueue(job worker.PushJob) bool
}

// FanOut performs the side-effect sequence for a persisted domain event:
// broadcast to the family room, then write one notification ledger row per
// member (author excluded) and enqueue a push for members with a device
// token. The caller has already durably persisted the event; nothing in here
// may fail the caller's request. Per-member failures are isolated and logged.
type FanOut struct {
	DB       *gorm.DB
	Hub      Broadcaster
	Push     PushQueue
	Resolver *Resolver
	Logger   *log.Logger
}

func NewFanOut(db *gorm.DB, hub Broadcaster, push PushQueue, resolver *Resolver, logger *log.Logger) *FanOut {
	return &FanOut{DB: db, Hub: hub, Push: push, Resolver: resolver, Logger: logger}
}

// MessageCreated fans out a freshly persisted chat message.
func (f *FanOut) MessageCreated(sender *models.User, msg *models.Message) {
	body := fmt.Sprintf("%s: %s", sender.Name, msg.Content)
	if msg.Content == "" {
		body = fmt.Sprintf("%s sent a file", sender.Name)
	}

	f.notifyFamily(familyEvent{
		author:   sender,
		familyID: msg.FamilyID,
		event:    EventNewMessage,
		payload:  msg,
		notif:    models.NotifNewMessage,
		title:    "New Family Message",
		body:     body,
		related:  msg.ID,
		data:     map[string]string{"type": "chat", "familyId": fmt.Sprint(msg.FamilyID)},
	})
}

// NeedCreated fans out a freshly persisted need post. Urgent needs carry a
// distinct push title.
func (f *FanOut) NeedCreated(creator *models.User, need *models.NeedPost) {
	title := "New Family Need"
	if need.Urgency == models.UrgencyUrgent {
		title = "URGENT Family Need"
	}

	f.notifyFamily(familyEvent{
		author:   creator,
		familyID: need.FamilyID,
		event:    EventNewNeed,
		payload:  need,
		notif:    models.NotifNewNeed,
		title:    title,
		body:     fmt.Sprintf("%s needs: %s", creator.Name, need.Content),
		related:  need.ID,
		data:     map[string]string{"type": "need", "familyId": fmt.Sprint(need.FamilyID)},
	})
}

// NeedUpdated rebroadcasts a status change. Lower urgency class: realtime
// only, no ledger rows, no push.
func (f *FanOut) NeedUpdated(need *models.NeedPost) {
	f.broadcast(need.FamilyID, EventUpdateNeed, need)
}

// GroceryChanged rebroadcasts a list mutation. Realtime only.
func (f *FanOut) GroceryChanged(familyID uint, event string, payload interface{}) {
	f.broadcast(familyID, event, payload)
}

// InviteSent records and pushes the invitation toward its single receiver.
func (f *FanOut) InviteSent(sender *models.User, receiver *models.User, req *models.FamilyRequest) {
	body := fmt.Sprintf("%s invited you to join their family.", sender.Name)
	f.notifyOne(receiver, sender.ID, models.NotifFamilyInvite, "Family Invitation", body, req.ID,
		map[string]string{"type": "invite", "requestId": fmt.Sprint(req.ID)})
}

// InviteAccepted tells the original sender that the receiver joined.
func (f *FanOut) InviteAccepted(responder *models.User, senderID uint) {
	var sender models.User
	if err := f.DB.First(&sender, senderID).Error; err != nil {
		f.Logger.Printf("invite accepted: sender %d lookup failed: %v", senderID, err)
		return
	}
	body := fmt.Sprintf("%s joined your family!", responder.Name)
	f.notifyOne(&sender, responder.ID, models.NotifFamilyInvite, "Invite Accepted", body, responder.ID,
		map[string]string{"type": "info"})
}

type familyEvent struct {
	author   *models.User
	familyID uint
	event    string
	payload  interface{}
	notif    string
	title    string
	body     string
	related  uint
	data     map[string]string
}

func (f *FanOut) notifyFamily(ev familyEvent) {
	// Realtime first; durable ledger writes do not depend on it succeeding.
	f.broadcast(ev.familyID, ev.event, ev.payload)

	members, err := f.Resolver.Members(ev.familyID, ev.author.ID)
	if err != nil {
		LogError("fanout_member_lookup_failed", err, map[string]interface{}{
			"family_id": ev.familyID,
			"event":     ev.event,
		})
		return
	}

	for i := range members {
		f.notifyOne(&members[i], ev.author.ID, ev.notif, ev.title, ev.body, ev.related, ev.data)
	}
}

// notifyOne writes one ledger row and enqueues push for one recipient. A
// failed recipient never aborts processing of the rest.
func (f *FanOut) notifyOne(recipient *models.User, senderID uint, notifType, title, body string, relatedID uint, data map[string]string) {
	notification := models.Notification{
		RecipientID: recipient.ID,
		SenderID:    &senderID,
		Type:        notifType,
		Content:     body,
		RelatedID:   &relatedID,
	}
	if err := f.DB.Create(&notification).Error; err != nil {
		LogError("notification_write_failed", err, map[string]interface{}{
			"recipient_id": recipient.ID,
			"type":         notifType,
		})
		// Still attempt push; the two channels are independent.
	}

	if recipient.FCMToken != "" && f.Push != nil {
		f.Push.Enqueue(worker.PushJob{
			Token: recipient.FCMToken,
			Title: title,
			Body:  body,
			Data:  data,
		})
	}
}

func (f *FanOut) broadcast(familyID uint, event string, payload interface{}) {
	if f.Hub == nil {
		return
	}
	f.Hub.Broadcast(familyID, event, payload)
}
