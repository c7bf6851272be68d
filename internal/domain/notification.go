package domain

import (
	"time"

	"github.com/google/uuid"
)

// notificationNS namespaces the deterministic notification IDs so they
// cannot collide with IDs minted by other services.
var notificationNS = uuid.MustParse("8f3c1a6e-52d4-4f09-9a77-0b64c1f0d9b2")

// Notification is one in-app notification record. Created exactly once
// per (event, recipient) pair and never mutated by the fan-out engine;
// read-state toggling happens through the REST surface.
type Notification struct {
	ID              string
	UserID          string
	Type            EventKind
	Title           string
	Message         string
	RelatedEntityID string
	Read            bool
	CreatedAt       time.Time
}

// NotificationID derives a deterministic ID from the triggering entity,
// the recipient and the event kind, so redelivery of the same logical
// event upserts instead of duplicating.
func NotificationID(entityID, userID string, kind EventKind) string {
	return uuid.NewSHA1(notificationNS, []byte(entityID+"/"+userID+"/"+string(kind))).String()
}

// WSNotification is the wire shape pushed to websocket clients.
type WSNotification struct {
	UserID string            `json:"user_id"`
	Type   EventKind         `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}
