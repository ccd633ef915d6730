package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStatsFetcher serves configurable values and errors. onUnreadFetch and
// onStatsFetch run while the corresponding network call is "in flight",
// before the store commits.
type fakeStatsFetcher struct {
	unreadCount int
	unreadErr   error
	stats       *notification.Stats
	statsErr    error
	statsErrFor map[string]error
	markMessage string
	markErr     error

	onUnreadFetch func()
	onStatsFetch  func()
}

func (f *fakeStatsFetcher) NotificationUnreadCount(ctx context.Context, userID string) (int, error) {
	if f.onUnreadFetch != nil {
		f.onUnreadFetch()
	}
	return f.unreadCount, f.unreadErr
}

func (f *fakeStatsFetcher) NotificationStats(ctx context.Context, userID string) (*notification.Stats, error) {
	if f.onStatsFetch != nil {
		f.onStatsFetch()
	}
	if err, ok := f.statsErrFor[userID]; ok {
		return nil, err
	}
	return f.stats, f.statsErr
}

func (f *fakeStatsFetcher) MarkNotificationRead(ctx context.Context, notificationID string) (string, error) {
	return f.markMessage, f.markErr
}

func sampleStats() *notification.Stats {
	return &notification.Stats{
		TotalCount:    10,
		UnreadCount:   4,
		ReadCount:     5,
		ArchivedCount: 1,
		PriorityStats: map[string]int{"high": 2, "normal": 8},
		TypeStats:     map[string]int{"message": 6, "mentorship": 4},
	}
}

// ===== STORE TESTS =====

func TestStore_DecrementFloorsAtZero(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{})

	assert.Equal(t, 0, store.DecrementUnread("user-1"))
	assert.Equal(t, 0, store.DecrementUnread("user-1"))
}

func TestStore_FetchUnreadCount_Success(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{unreadCount: 5})

	count, err := store.FetchUnreadCount(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 5, count)

	cached, ok := store.UnreadCount("user-1")
	assert.True(t, ok)
	assert.Equal(t, 5, cached)
	assert.Empty(t, store.LastError("user-1"))
}

func TestStore_FetchFailureKeepsPriorValue(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{unreadCount: 5}
	store := New(fetcher)

	_, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)

	fetcher.unreadErr = errors.New("upstream down")
	_, err = store.FetchUnreadCount(context.Background(), "user-1")

	assert.Error(t, err)
	cached, ok := store.UnreadCount("user-1")
	assert.True(t, ok)
	assert.Equal(t, 5, cached)
	assert.Equal(t, "upstream down", store.LastError("user-1"))
}

func TestStore_FetchFailureBeforeFirstSuccessLeavesDefault(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{unreadErr: errors.New("boom")})

	_, err := store.FetchUnreadCount(context.Background(), "user-1")

	assert.Error(t, err)
	count, ok := store.UnreadCount("user-1")
	assert.False(t, ok)
	assert.Zero(t, count)
}

func TestStore_UpdateStats_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{stats: sampleStats()}
	store := New(fetcher)

	stats, err := store.UpdateStats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.UnreadCount)

	fetcher.stats = &notification.Stats{TotalCount: 11, UnreadCount: 2, ReadCount: 9}
	stats, err = store.UpdateStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 11, stats.TotalCount)
	assert.Equal(t, 2, stats.UnreadCount)
	// No partial merge: the old breakdown maps are gone
	assert.Nil(t, stats.PriorityStats)

	count, ok := store.UnreadCount("user-1")
	assert.True(t, ok)
	assert.Equal(t, 2, count)
}

func TestStore_StatsReturnsCopy(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{stats: sampleStats()})
	_, err := store.UpdateStats(context.Background(), "user-1")
	require.NoError(t, err)

	stats, ok := store.Stats("user-1")
	require.True(t, ok)
	stats.UnreadCount = 999
	stats.PriorityStats["high"] = 999

	fresh, ok := store.Stats("user-1")
	require.True(t, ok)
	assert.Equal(t, 4, fresh.UnreadCount)
	assert.Equal(t, 2, fresh.PriorityStats["high"])
}

func TestStore_RefreshAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{
		stats:       sampleStats(),
		statsErrFor: map[string]error{"user-bad": errors.New("upstream down")},
	}
	store := New(fetcher)

	store.RefreshAll(context.Background(), []string{"user-bad", "user-good"})

	// The failing user does not block the one after it
	stats, ok := store.Stats("user-good")
	require.True(t, ok)
	assert.Equal(t, 4, stats.UnreadCount)

	_, ok = store.Stats("user-bad")
	assert.False(t, ok)
	assert.Equal(t, "upstream down", store.LastError("user-bad"))
}

func TestStore_DecrementMirrorsIntoCachedStats(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{stats: sampleStats()})
	_, err := store.UpdateStats(context.Background(), "user-1")
	require.NoError(t, err)

	store.DecrementUnread("user-1")

	stats, ok := store.Stats("user-1")
	require.True(t, ok)
	assert.Equal(t, 3, stats.UnreadCount)

	count, _ := store.UnreadCount("user-1")
	assert.Equal(t, 3, count)
}

func TestStore_MidflightDecrementSurvivesAuthoritativeFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{unreadCount: 10}
	store := New(fetcher)

	// Seed so the decrement has something to act on
	_, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)

	// A mark-read lands while the authoritative fetch is in flight; the
	// fetched value must not clobber the newer local edit.
	fetcher.onUnreadFetch = func() {
		fetcher.onUnreadFetch = nil
		store.DecrementUnread("user-1")
	}

	count, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 9, count)
}

func TestStore_MarkRead(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{unreadCount: 3, markMessage: "Notification marked as read"}
	store := New(fetcher)

	_, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)

	message, count, err := store.MarkRead(context.Background(), "user-1", "notif-1")

	require.NoError(t, err)
	assert.Equal(t, "Notification marked as read", message)
	assert.Equal(t, 2, count)
}

func TestStore_MarkReadFailureDoesNotDecrement(t *testing.T) {
	t.Parallel()

	fetcher := &fakeStatsFetcher{unreadCount: 3, markErr: errors.New("not found")}
	store := New(fetcher)

	_, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)

	_, _, err = store.MarkRead(context.Background(), "user-1", "notif-1")

	assert.Error(t, err)
	count, _ := store.UnreadCount("user-1")
	assert.Equal(t, 3, count)
}

func TestStore_ResetWipesAllState(t *testing.T) {
	t.Parallel()

	store := New(&fakeStatsFetcher{unreadCount: 5})
	_, err := store.FetchUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)

	store.Reset()

	_, ok := store.UnreadCount("user-1")
	assert.False(t, ok)
}
