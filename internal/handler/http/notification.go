package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
	"github.com/letusconnect/connect-gateway-go/internal/handler/http/response"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/jwt"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/push"
	chatlistService "github.com/letusconnect/connect-gateway-go/internal/service/chatlist"
	notificationService "github.com/letusconnect/connect-gateway-go/internal/service/notification"
	realtimeService "github.com/letusconnect/connect-gateway-go/internal/service/realtime"
	unreadService "github.com/letusconnect/connect-gateway-go/internal/service/unread"
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	Stats(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)

	// SSE
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	store       *notificationService.Store
	jwtService  jwt.Service
	hub         *push.Hub
	realtimeSvc *realtimeService.Service
	unreadSvc   *unreadService.Service
	chatlistSvc *chatlistService.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	store *notificationService.Store,
	jwtService jwt.Service,
	hub *push.Hub,
	realtimeSvc *realtimeService.Service,
	unreadSvc *unreadService.Service,
	chatlistSvc *chatlistService.Service,
) NotificationHandler {
	return &notificationHandlerImpl{
		store:       store,
		jwtService:  jwtService,
		hub:         hub,
		realtimeSvc: realtimeSvc,
		unreadSvc:   unreadSvc,
		chatlistSvc: chatlistSvc,
	}
}

// Stats returns the caller's notification aggregate, refreshing from the
// upstream on a cache miss
func (h *notificationHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	stats, ok := h.store.Stats(userID)
	if !ok {
		var err error
		stats, err = h.store.UpdateStats(r.Context(), userID)
		if err != nil {
			response.HandleError(w, err)
			return
		}
	}

	response.Success(w, stats)
}

// UnreadCount returns the cached unread notification count, fetching the
// authoritative value on a cache miss
func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	count, ok := h.store.UnreadCount(userID)
	if !ok {
		var err error
		count, err = h.store.FetchUnreadCount(r.Context(), userID)
		if err != nil {
			response.HandleError(w, err)
			return
		}
	}

	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

// MarkRead acknowledges a single notification upstream and applies the
// optimistic local decrement
func (h *notificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	notifID := chi.URLParam(r, "id")
	if notifID == "" {
		response.BadRequest(w, "Notification ID is required", nil)
		return
	}

	message, count, err := h.store.MarkRead(r.Context(), userID, notifID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.MarkReadResponse{
		Message:     message,
		UnreadCount: count,
	})
}

// GetStreamToken generates a short-lived token for SSE connections
func (h *notificationHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(userID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, notification.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection for real-time toasts and unread counts.
// The stream lifecycle is the mount/unmount signal: the user's first stream
// binds the pub/sub channel and starts the unread watcher, the last stream
// closing tears both down.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Token comes from a query parameter (EventSource cannot set headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(userID)

	defer func() {
		cleanup()
		if h.hub.StreamCount(userID) == 0 {
			h.realtimeSvc.Unbind(userID)
			h.unreadSvc.StopWatcher(userID)
			h.chatlistSvc.Forget(userID)
		}
	}()

	// Bind and EnsureWatcher are idempotent; every stream open goes through
	// them rather than only the one that observes itself as first, which
	// would race a second tab opening at the same moment.
	if err := h.realtimeSvc.Bind(userID); err != nil {
		http.Error(w, "Subscription failed", http.StatusBadGateway)
		return
	}
	h.unreadSvc.EnsureWatcher(userID)

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			// Send keepalive ping
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
