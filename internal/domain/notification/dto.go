package notification

import "encoding/json"

// ============= Wire envelope =============

// Envelope wraps every payload published on a user's notification channel.
// Events other than the one the subscriber binds are ignored.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ============= Response DTOs =============

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// MarkReadResponse represents the result of marking a notification read
type MarkReadResponse struct {
	Message     string `json:"message"`
	UnreadCount int    `json:"unread_count"`
}

// StreamTokenResponse represents the short-lived stream token response
type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
