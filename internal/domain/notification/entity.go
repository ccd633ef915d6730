package notification

// Stats is the authoritative notification aggregate owned by the upstream
// API. The unread/read/archived breakdown is trusted as-is; this layer never
// re-derives it.
type Stats struct {
	TotalCount    int            `json:"totalCount"`
	UnreadCount   int            `json:"unreadCount"`
	ReadCount     int            `json:"readCount"`
	ArchivedCount int            `json:"archivedCount"`
	PriorityStats map[string]int `json:"priorityStats"`
	TypeStats     map[string]int `json:"typeStats"`
}

// NewUnreadMessageEvent is the wire payload delivered on a user's
// notification channel when a message arrives in one of their group chats.
// Consumed once by the real-time subscriber, never persisted.
type NewUnreadMessageEvent struct {
	GroupChatID string `json:"groupChatId"`
	SenderName  string `json:"senderName"`
	Content     string `json:"content"`
	MessageID   string `json:"messageId"`
}

// EventNewUnreadMessage is the only event the subscriber binds a handler for.
const EventNewUnreadMessage = "new-unread-message"

// ChannelFor returns the per-user notification channel name used on the
// pub/sub transport.
func ChannelFor(userID string) string {
	return "user-notifications-new-msg-" + userID
}
