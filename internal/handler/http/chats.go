package http

import (
	"net/http"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
	"github.com/letusconnect/connect-gateway-go/internal/handler/http/response"
	chatlistService "github.com/letusconnect/connect-gateway-go/internal/service/chatlist"
)

// ChatsHandler defines the conversation list handler interface
type ChatsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type chatsHandlerImpl struct {
	chatlistSvc *chatlistService.Service
}

// NewChatsHandler creates a new chats handler
func NewChatsHandler(chatlistSvc *chatlistService.Service) ChatsHandler {
	return &chatsHandlerImpl{
		chatlistSvc: chatlistSvc,
	}
}

// List returns the caller's conversations sorted by most-recent activity.
// Pass refresh=true to force a new upstream snapshot.
func (h *chatsHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var (
		chats []chat.Entity
		err   error
	)
	if getBoolQueryParam(r, "refresh", false) {
		chats, err = h.chatlistSvc.Refresh(r.Context(), userID)
	} else {
		chats, err = h.chatlistSvc.Sorted(r.Context(), userID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, chat.ListResponse{
		Chats: chats,
		Total: len(chats),
	})
}
