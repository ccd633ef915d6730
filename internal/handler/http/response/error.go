package response

import (
	"errors"
	"net/http"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
	"github.com/letusconnect/connect-gateway-go/internal/domain/unread"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/connect"
)

// HandleError maps domain and upstream errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Upstream API errors pass through with gateway semantics: a 404 from
	// the API is a 404 here, everything else is an upstream failure.
	var apiErr *connect.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			NotFound(w, apiErr.Message)
			return
		}
		BadGateway(w, apiErr.Message)
		return
	}

	switch {
	// Unread domain errors
	case errors.Is(err, unread.ErrNoWatcher):
		NotFound(w, "No unread state for user")

	// Chat domain errors
	case errors.Is(err, chat.ErrEntityNotFound):
		NotFound(w, "Chat not found")
	case errors.Is(err, chat.ErrSnapshotMissing):
		NotFound(w, "No chat snapshot loaded")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrStatsUnavailable):
		NotFound(w, "Notification stats not fetched yet")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
