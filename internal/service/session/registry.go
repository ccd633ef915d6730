package session

import (
	"sync"
)

// Registry tracks which conversation each user currently has open. The
// real-time subscriber consults it to suppress redundant toasts. Entries are
// transient; there is nothing to persist.
type Registry struct {
	mu       sync.RWMutex
	selected map[string]string
}

// NewRegistry creates an empty selection registry
func NewRegistry() *Registry {
	return &Registry{
		selected: make(map[string]string),
	}
}

// Select records the conversation the user has open
func (r *Registry) Select(userID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected[userID] = chatID
}

// Clear forgets the user's selection (conversation closed or user left)
func (r *Registry) Clear(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selected, userID)
}

// SelectedChat returns the user's open conversation, if any
func (r *Registry) SelectedChat(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chatID, ok := r.selected[userID]
	return chatID, ok
}
