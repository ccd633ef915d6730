package http

import (
	"encoding/json"
	"net/http"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
	"github.com/letusconnect/connect-gateway-go/internal/handler/http/response"
	"github.com/letusconnect/connect-gateway-go/internal/service/session"
)

// SessionHandler defines the selected-conversation handler interface
type SessionHandler interface {
	SelectChat(w http.ResponseWriter, r *http.Request)
	ClearChat(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	registry *session.Registry
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *session.Registry) SessionHandler {
	return &sessionHandlerImpl{
		registry: registry,
	}
}

// SelectChat records the conversation the caller currently has open, which
// suppresses push toasts for that conversation.
func (h *sessionHandlerImpl) SelectChat(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req chat.SelectChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if req.ChatID == "" {
		response.BadRequest(w, "chat_id is required", nil)
		return
	}

	h.registry.Select(userID, req.ChatID)
	response.SuccessWithMessage(w, "Selected chat updated", nil)
}

// ClearChat forgets the caller's open conversation
func (h *sessionHandlerImpl) ClearChat(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	h.registry.Clear(userID)
	response.SuccessWithMessage(w, "Selected chat cleared", nil)
}
