package unread

import (
	"sync"

	"github.com/letusconnect/connect-gateway-go/internal/domain/unread"
)

// Service owns one watcher per user with at least one open UI stream. The
// stream lifecycle drives the watcher lifecycle: the first stream starts the
// watcher, the last stream closing stops it.
type Service struct {
	fetcher  unread.CountFetcher
	opts     unread.Options
	onChange ChangeFunc
	toaster  Toaster

	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewService creates the unread aggregation service
func NewService(fetcher unread.CountFetcher, opts unread.Options, onChange ChangeFunc, toaster Toaster) *Service {
	return &Service{
		fetcher:  fetcher,
		opts:     opts.WithDefaults(),
		onChange: onChange,
		toaster:  toaster,
		watchers: make(map[string]*Watcher),
	}
}

// EnsureWatcher returns the user's watcher, starting one if absent
func (s *Service) EnsureWatcher(userID string) *Watcher {
	s.mu.Lock()
	if w, ok := s.watchers[userID]; ok {
		s.mu.Unlock()
		return w
	}

	w := NewWatcher(s.fetcher, userID, s.opts, s.onChange, s.toaster)
	s.watchers[userID] = w
	s.mu.Unlock()

	w.Start()
	return w
}

// State returns the user's current aggregate state. When no watcher exists
// yet, one is started and its initial loading state is returned.
func (s *Service) State(userID string) unread.State {
	return s.EnsureWatcher(userID).State()
}

// Refetch restarts the user's fetch cycle with a fresh attempt budget
func (s *Service) Refetch(userID string) error {
	s.mu.Lock()
	w, ok := s.watchers[userID]
	s.mu.Unlock()

	if !ok {
		return unread.ErrNoWatcher
	}
	w.Refetch()
	return nil
}

// StopWatcher tears down the user's watcher, if any
func (s *Service) StopWatcher(userID string) {
	s.mu.Lock()
	w, ok := s.watchers[userID]
	if ok {
		delete(s.watchers, userID)
	}
	s.mu.Unlock()

	if ok {
		w.Stop()
	}
}

// StopAll tears down every watcher (shutdown path)
func (s *Service) StopAll() {
	s.mu.Lock()
	watchers := make([]*Watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.watchers = make(map[string]*Watcher)
	s.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
}
