package connect

import (
	"context"
	"net/url"
)

// unreadCountBody mirrors the direct-message unread count response
type unreadCountBody struct {
	UnreadCount int `json:"unreadCount"`
}

// DirectUnreadCount returns the number of unread direct messages for a user.
func (c *Client) DirectUnreadCount(ctx context.Context, userID string) (int, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("senderId", userID)
	}

	var body unreadCountBody
	if err := c.get(ctx, "/api/messages/unread", query, &body); err != nil {
		return 0, err
	}
	return body.UnreadCount, nil
}

// GroupUnreadCount returns the aggregated unread count across all of the
// user's group chats. The endpoint responds with a bare JSON number.
func (c *Client) GroupUnreadCount(ctx context.Context, userID string) (int, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var count int
	if err := c.get(ctx, "/api/group-chats/unread-count", query, &count); err != nil {
		return 0, err
	}
	return count, nil
}
