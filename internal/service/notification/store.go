package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
)

// StatsFetcher is the upstream capability the store refreshes from
type StatsFetcher interface {
	NotificationStats(ctx context.Context, userID string) (*notification.Stats, error)
	NotificationUnreadCount(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, notificationID string) (string, error)
}

// userState is the cached notification aggregate for one user. decrements
// counts every optimistic decrement ever applied; an authoritative fetch
// snapshots it before the network call and subtracts whatever arrived
// mid-flight when committing, so a fresh fetch wins over older local edits
// while newer edits survive.
type userState struct {
	unreadCount int
	hasCount    bool
	stats       *notification.Stats
	lastError   string
	decrements  uint64
}

// Store is the process-wide notification stats cache. It has an explicit
// lifecycle: construct with New, wipe with Reset. Mutations are synchronous
// state replacements; concurrent fetch and decrement are reconciled by the
// decrement counter rather than strict sequencing, and the next authoritative
// refresh corrects any transient skew.
type Store struct {
	fetcher StatsFetcher

	mu    sync.Mutex
	users map[string]*userState
}

// New creates an empty stats store
func New(fetcher StatsFetcher) *Store {
	return &Store{
		fetcher: fetcher,
		users:   make(map[string]*userState),
	}
}

// Reset wipes all cached state. Intended for test isolation.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*userState)
}

func (s *Store) stateFor(userID string) *userState {
	if st, ok := s.users[userID]; ok {
		return st
	}
	st := &userState{}
	s.users[userID] = st
	return st
}

// FetchUnreadCount refreshes the authoritative unread count. On failure the
// prior value is kept (stale-but-available); defaults apply only before the
// first successful fetch.
func (s *Store) FetchUnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	st := s.stateFor(userID)
	before := st.decrements
	s.mu.Unlock()

	count, err := s.fetcher.NotificationUnreadCount(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		st.lastError = err.Error()
		return st.unreadCount, err
	}

	value := count - int(st.decrements-before)
	if value < 0 {
		value = 0
	}
	st.unreadCount = value
	st.hasCount = true
	st.lastError = ""
	if st.stats != nil {
		st.stats.UnreadCount = value
	}
	return value, nil
}

// UpdateStats refreshes the full aggregate and replaces the cached object
// wholesale; a partial merge could leave inconsistent partial aggregates.
func (s *Store) UpdateStats(ctx context.Context, userID string) (*notification.Stats, error) {
	s.mu.Lock()
	st := s.stateFor(userID)
	before := st.decrements
	s.mu.Unlock()

	stats, err := s.fetcher.NotificationStats(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		st.lastError = err.Error()
		return nil, err
	}

	replaced := cloneStats(stats)
	value := replaced.UnreadCount - int(st.decrements-before)
	if value < 0 {
		value = 0
	}
	replaced.UnreadCount = value

	st.stats = replaced
	st.unreadCount = value
	st.hasCount = true
	st.lastError = ""
	return cloneStats(replaced), nil
}

// RefreshAll runs an authoritative stats refresh for each user, continuing
// past individual failures so one user's upstream error does not starve the
// others' reconciliation.
func (s *Store) RefreshAll(ctx context.Context, userIDs []string) {
	for _, userID := range userIDs {
		if _, err := s.UpdateStats(ctx, userID); err != nil {
			slog.Warn("Notification stats refresh failed", "user_id", userID, "error", err)
		}
	}
}

// DecrementUnread applies the optimistic local decrement after the caller
// marks a single notification read, ahead of the next authoritative refresh.
// The count never goes below zero, and the cached stats object mirrors the
// change when present.
func (s *Store) DecrementUnread(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateFor(userID)
	st.decrements++
	if st.unreadCount > 0 {
		st.unreadCount--
	}
	if st.stats != nil && st.stats.UnreadCount > 0 {
		st.stats.UnreadCount--
	}
	return st.unreadCount
}

// MarkRead acknowledges the notification upstream, then applies the
// optimistic decrement locally.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) (string, int, error) {
	message, err := s.fetcher.MarkNotificationRead(ctx, notificationID)
	if err != nil {
		return "", 0, err
	}
	return message, s.DecrementUnread(userID), nil
}

// UnreadCount returns the cached unread count and whether a successful fetch
// has happened yet
func (s *Store) UnreadCount(userID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok {
		return 0, false
	}
	return st.unreadCount, st.hasCount
}

// Stats returns a copy of the cached aggregate, if one has been fetched
func (s *Store) Stats(userID string) (*notification.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok || st.stats == nil {
		return nil, false
	}
	return cloneStats(st.stats), true
}

// LastError returns the most recent fetch failure, empty after any success
func (s *Store) LastError(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.users[userID]; ok {
		return st.lastError
	}
	return ""
}

func cloneStats(in *notification.Stats) *notification.Stats {
	out := *in
	out.PriorityStats = cloneCounts(in.PriorityStats)
	out.TypeStats = cloneCounts(in.TypeStats)
	return &out
}

func cloneCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
