package http

import (
	"net/http"

	"github.com/letusconnect/connect-gateway-go/internal/handler/http/response"
	unreadService "github.com/letusconnect/connect-gateway-go/internal/service/unread"
)

// UnreadHandler defines the unread aggregate handler interface
type UnreadHandler interface {
	State(w http.ResponseWriter, r *http.Request)
	Refetch(w http.ResponseWriter, r *http.Request)
}

type unreadHandlerImpl struct {
	unreadSvc *unreadService.Service
}

// NewUnreadHandler creates a new unread handler
func NewUnreadHandler(unreadSvc *unreadService.Service) UnreadHandler {
	return &unreadHandlerImpl{
		unreadSvc: unreadSvc,
	}
}

// State returns the caller's current aggregate unread state
func (h *unreadHandlerImpl) State(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	response.Success(w, h.unreadSvc.State(userID))
}

// Refetch restarts the caller's fetch cycle with a fresh attempt budget.
// This is the manual recovery path behind the UI's retry button.
func (h *unreadHandlerImpl) Refetch(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := h.unreadSvc.Refetch(userID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Refetch started", h.unreadSvc.State(userID))
}
