package posts

import "time"

// EventType names the mutation that produced an Event.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventPatched EventType = "patched"
	EventDeleted EventType = "deleted"
)

// Event is published by backends that support change notification.
// For EventDeleted, Post is the removed post.
type Event struct {
	Type EventType `json:"type"`
	Post Post      `json:"post"`
	At   time.Time `json:"at"`
}
