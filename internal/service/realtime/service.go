package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/pubsub"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/push"
)

// GroupNameResolver resolves a group chat id to its display name
type GroupNameResolver interface {
	GroupName(userID, chatID string) (string, bool)
}

// SelectionReader reports the conversation a user currently has open
type SelectionReader interface {
	SelectedChat(userID string) (string, bool)
}

// Toaster publishes transient notifications to a user's UI
type Toaster interface {
	PublishToast(userID, level, message string)
}

// fallbackGroupLabel is used when the group chat id cannot be resolved
// against the user's chat snapshot. A lookup miss is degraded, never thrown.
const fallbackGroupLabel = "a group"

// Service binds one handler per connected user to that user's notification
// channel on the pub/sub transport. The binding exists only while the user
// has an open stream: Bind on the first stream, Unbind after the last.
//
// The handler takes its lookup and selection capabilities as injected
// dependencies rather than capturing snapshots, so it always consults
// current data.
type Service struct {
	transport pubsub.Transport
	resolver  GroupNameResolver
	selection SelectionReader
	toaster   Toaster

	mu   sync.Mutex
	subs map[string]pubsub.Subscription
}

// NewService creates the real-time subscriber service
func NewService(transport pubsub.Transport, resolver GroupNameResolver, selection SelectionReader, toaster Toaster) *Service {
	return &Service{
		transport: transport,
		resolver:  resolver,
		selection: selection,
		toaster:   toaster,
		subs:      make(map[string]pubsub.Subscription),
	}
}

// Bind subscribes the user's notification channel. Binding twice is a no-op.
// Transport-level connection recovery is the transport's responsibility; the
// subscriber does not retry here.
func (s *Service) Bind(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[userID]; ok {
		return nil
	}

	sub, err := s.transport.Subscribe(notification.ChannelFor(userID), func(data []byte) {
		s.handleMessage(userID, data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", notification.ChannelFor(userID), err)
	}

	s.subs[userID] = sub
	slog.Debug("Notification channel bound", "user_id", userID)
	return nil
}

// Unbind unsubscribes the user's notification channel, if bound
func (s *Service) Unbind(userID string) {
	s.mu.Lock()
	sub, ok := s.subs[userID]
	if ok {
		delete(s.subs, userID)
	}
	s.mu.Unlock()

	if ok {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("Unsubscribe failed", "user_id", userID, "error", err)
		}
	}
}

// UnbindAll tears down every channel binding (shutdown path)
func (s *Service) UnbindAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]pubsub.Subscription)
	s.mu.Unlock()

	for userID, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("Unsubscribe failed", "user_id", userID, "error", err)
		}
	}
}

// Bound reports whether the user's channel is currently subscribed
func (s *Service) Bound(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[userID]
	return ok
}

// handleMessage processes one payload from the user's channel. Only the
// new-unread-message event is handled; anything else is ignored. No toast is
// shown when the event's group chat is the conversation the user already has
// open.
func (s *Service) handleMessage(userID string, data []byte) {
	var envelope notification.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		slog.Warn("Malformed push payload", "user_id", userID, "error", err)
		return
	}
	if envelope.Event != notification.EventNewUnreadMessage {
		return
	}

	var event notification.NewUnreadMessageEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		slog.Warn("Malformed new-unread-message event", "user_id", userID, "error", err)
		return
	}
	if event.GroupChatID == "" {
		return
	}

	if selected, ok := s.selection.SelectedChat(userID); ok && selected == event.GroupChatID {
		// User is already viewing that conversation
		return
	}

	groupName, ok := s.resolver.GroupName(userID, event.GroupChatID)
	if !ok {
		groupName = fallbackGroupLabel
	}

	s.toaster.PublishToast(userID, push.LevelInfo, fmt.Sprintf("New message from %s in %s", event.SenderName, groupName))
}
