package push

import (
	"sync"

	"github.com/google/uuid"
)

// Event represents a push event to be streamed to a user's open UI sessions
type Event struct {
	UserID string      `json:"-"`
	Event  string      `json:"event"`
	Data   interface{} `json:"data"`
}

// Toast is a transient UI notification
type Toast struct {
	ID      string `json:"id"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Toast levels
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Hub fans events out to a user's connected streams. A user may hold several
// streams at once (multiple tabs); publishing never blocks on a slow consumer.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new push Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new stream for a user and returns the event channel
// and a cleanup function. The cleanup function is safe to call exactly once.
func (h *Hub) Subscribe(userID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all of a user's open streams
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[userID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// PublishToast sends a transient toast notification to a user
func (h *Hub) PublishToast(userID, level, message string) {
	h.Publish(userID, Event{
		UserID: userID,
		Event:  "toast",
		Data: Toast{
			ID:      uuid.New().String(),
			Level:   level,
			Message: message,
		},
	})
}

// StreamCount returns the number of open streams for a user
func (h *Hub) StreamCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[userID]; ok {
		return len(subs)
	}
	return 0
}

// ActiveUsers returns the ids of all users with at least one open stream
func (h *Hub) ActiveUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.subscribers))
	for userID := range h.subscribers {
		users = append(users, userID)
	}
	return users
}
