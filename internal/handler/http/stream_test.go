package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
	unreadDomain "github.com/letusconnect/connect-gateway-go/internal/domain/unread"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/jwt"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/pubsub"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/push"
	chatlistService "github.com/letusconnect/connect-gateway-go/internal/service/chatlist"
	notificationService "github.com/letusconnect/connect-gateway-go/internal/service/notification"
	realtimeService "github.com/letusconnect/connect-gateway-go/internal/service/realtime"
	"github.com/letusconnect/connect-gateway-go/internal/service/session"
	unreadService "github.com/letusconnect/connect-gateway-go/internal/service/unread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves every upstream capability the stream lifecycle touches
type fakeUpstream struct{}

func (f *fakeUpstream) DirectUnreadCount(ctx context.Context, userID string) (int, error) {
	return 1, nil
}

func (f *fakeUpstream) GroupUnreadCount(ctx context.Context, userID string) (int, error) {
	return 2, nil
}

func (f *fakeUpstream) ChatEntities(ctx context.Context, userID string) ([]chat.Entity, error) {
	return []chat.Entity{{ID: "group-1", Name: "Gophers", Type: chat.TypeGroup}}, nil
}

func (f *fakeUpstream) NotificationStats(ctx context.Context, userID string) (*notification.Stats, error) {
	return &notification.Stats{}, nil
}

func (f *fakeUpstream) NotificationUnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (f *fakeUpstream) MarkNotificationRead(ctx context.Context, notificationID string) (string, error) {
	return "Notification marked as read", nil
}

// fakeStreamTransport tracks which subjects are currently subscribed
type fakeStreamTransport struct {
	mu       sync.Mutex
	subjects map[string]struct{}
	subErr   error
}

type fakeStreamSub struct {
	transport *fakeStreamTransport
	subject   string
}

func (s *fakeStreamSub) Unsubscribe() error {
	s.transport.mu.Lock()
	delete(s.transport.subjects, s.subject)
	s.transport.mu.Unlock()
	return nil
}

func newFakeStreamTransport() *fakeStreamTransport {
	return &fakeStreamTransport{subjects: make(map[string]struct{})}
}

func (t *fakeStreamTransport) Subscribe(subject string, h pubsub.Handler) (pubsub.Subscription, error) {
	if t.subErr != nil {
		return nil, t.subErr
	}
	t.mu.Lock()
	t.subjects[subject] = struct{}{}
	t.mu.Unlock()
	return &fakeStreamSub{transport: t, subject: subject}, nil
}

func (t *fakeStreamTransport) Close() {}

func (t *fakeStreamTransport) subscribed(subject string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.subjects[subject]
	return ok
}

type streamFixture struct {
	handler    NotificationHandler
	jwtService jwt.Service
	hub        *push.Hub
	transport  *fakeStreamTransport
	realtime   *realtimeService.Service
	unread     *unreadService.Service
	chatlist   *chatlistService.Service
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()

	upstream := &fakeUpstream{}
	transport := newFakeStreamTransport()
	hub := push.NewHub()
	registry := session.NewRegistry()
	chatlistSvc := chatlistService.NewService(upstream)
	statsStore := notificationService.New(upstream)
	unreadSvc := unreadService.NewService(upstream, unreadDomain.Options{
		MaxRetries: 1,
		RetryDelay: 5 * time.Millisecond,
	}, nil, hub)
	realtimeSvc := realtimeService.NewService(transport, chatlistSvc, registry, hub)
	jwtService := jwt.NewJWTService("test-secret-key")

	t.Cleanup(unreadSvc.StopAll)

	return &streamFixture{
		handler: NewNotificationHandler(
			statsStore,
			jwtService,
			hub,
			realtimeSvc,
			unreadSvc,
			chatlistSvc,
		),
		jwtService: jwtService,
		hub:        hub,
		transport:  transport,
		realtime:   realtimeSvc,
		unread:     unreadSvc,
		chatlist:   chatlistSvc,
	}
}

// openStream runs the SSE handler in the background and returns a cancel
// func that closes the stream plus a channel closed when the handler returns
func (f *streamFixture) openStream(t *testing.T, userID string) (func(), chan struct{}) {
	t.Helper()

	token, _, err := f.jwtService.GenerateStreamToken(userID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?token="+token, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.handler.Stream(rec, req)
		close(done)
	}()
	return cancel, done
}

// ===== STREAM LIFECYCLE TESTS =====

func TestStream_FirstOpenBindsLastCloseTearsDown(t *testing.T) {
	t.Parallel()

	f := newStreamFixture(t)

	cancel, done := f.openStream(t, "user-1")

	require.Eventually(t, func() bool {
		return f.hub.StreamCount("user-1") == 1 && f.realtime.Bound("user-1")
	}, time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool {
		return f.unread.Refetch("user-1") == nil
	}, time.Second, 2*time.Millisecond)
	assert.True(t, f.transport.subscribed(notification.ChannelFor("user-1")))

	// Seed the chat snapshot the subscriber resolves group names against
	_, err := f.chatlist.Refresh(context.Background(), "user-1")
	require.NoError(t, err)
	_, ok := f.chatlist.GroupName("user-1", "group-1")
	require.True(t, ok)

	cancel()
	<-done

	assert.Zero(t, f.hub.StreamCount("user-1"))
	assert.False(t, f.realtime.Bound("user-1"))
	assert.False(t, f.transport.subscribed(notification.ChannelFor("user-1")))
	assert.ErrorIs(t, f.unread.Refetch("user-1"), unreadDomain.ErrNoWatcher)
	_, ok = f.chatlist.GroupName("user-1", "group-1")
	assert.False(t, ok)
}

func TestStream_SecondTabKeepsBindingUntilLastClose(t *testing.T) {
	t.Parallel()

	f := newStreamFixture(t)

	cancelFirst, doneFirst := f.openStream(t, "user-1")
	require.Eventually(t, func() bool {
		return f.realtime.Bound("user-1")
	}, time.Second, 2*time.Millisecond)

	cancelSecond, doneSecond := f.openStream(t, "user-1")
	require.Eventually(t, func() bool {
		return f.hub.StreamCount("user-1") == 2
	}, time.Second, 2*time.Millisecond)

	cancelFirst()
	<-doneFirst

	assert.Equal(t, 1, f.hub.StreamCount("user-1"))
	assert.True(t, f.realtime.Bound("user-1"))
	assert.NoError(t, f.unread.Refetch("user-1"))

	cancelSecond()
	<-doneSecond

	assert.False(t, f.realtime.Bound("user-1"))
	assert.ErrorIs(t, f.unread.Refetch("user-1"), unreadDomain.ErrNoWatcher)
}

func TestStream_BindsWhenStreamCountAlreadyAboveOne(t *testing.T) {
	t.Parallel()

	f := newStreamFixture(t)

	// Another tab's channel is already registered when this handler opens,
	// so it never observes a stream count of one
	_, cleanup := f.hub.Subscribe("user-1")
	defer cleanup()

	cancel, done := f.openStream(t, "user-1")
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		return f.realtime.Bound("user-1")
	}, time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool {
		return f.unread.Refetch("user-1") == nil
	}, time.Second, 2*time.Millisecond)
}

func TestStream_BindFailureReturnsBadGateway(t *testing.T) {
	t.Parallel()

	f := newStreamFixture(t)
	f.transport.subErr = errors.New("connection lost")

	token, _, err := f.jwtService.GenerateStreamToken("user-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.handler.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?token="+token, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, f.hub.StreamCount("user-1"))
	assert.False(t, f.realtime.Bound("user-1"))
}

func TestStream_RejectsMissingOrInvalidToken(t *testing.T) {
	t.Parallel()

	f := newStreamFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?token=bogus", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
