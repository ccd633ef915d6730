package chat

// ============= Response DTOs =============

// ListResponse represents the sorted conversation list in API responses
type ListResponse struct {
	Chats []Entity `json:"chats"`
	Total int      `json:"total"`
}

// SelectChatRequest represents a request to mark a conversation as the one
// the user currently has open
type SelectChatRequest struct {
	ChatID string `json:"chat_id"`
}
