package chat

import (
	"time"
)

// EntityType distinguishes direct conversations from group conversations
type EntityType string

const (
	TypeUser  EntityType = "user"
	TypeGroup EntityType = "group"
)

// DirectMessage represents a one-to-one conversation message
type DirectMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BaseMessage represents a message within a group conversation
type BaseMessage struct {
	ID         string    `json:"id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entity represents a conversation-list item: either a single user (direct)
// or a group. Both message collections exist on every entity; only the one
// matching Type is expected to be populated.
type Entity struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Avatar         string          `json:"avatar,omitempty"`
	Type           EntityType      `json:"type"`
	DirectMessages []DirectMessage `json:"direct_messages"`
	GroupMessages  []BaseMessage   `json:"group_messages"`
}

// LastActivity returns the most recent message timestamp across both
// collections. Entities with no messages report the zero time, which makes
// them sort after everything else.
func (e Entity) LastActivity() time.Time {
	var latest time.Time
	for _, m := range e.DirectMessages {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	for _, m := range e.GroupMessages {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	return latest
}
