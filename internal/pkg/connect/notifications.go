package connect

import (
	"context"
	"net/url"

	"github.com/letusconnect/connect-gateway-go/internal/domain/notification"
)

// NotificationStats fetches the full notification aggregate for a user.
func (c *Client) NotificationStats(ctx context.Context, userID string) (*notification.Stats, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var stats notification.Stats
	if err := c.get(ctx, "/api/notifications/stats", query, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// NotificationUnreadCount fetches the authoritative unread notification
// count for a user.
func (c *Client) NotificationUnreadCount(ctx context.Context, userID string) (int, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var body unreadCountBody
	if err := c.get(ctx, "/api/notifications/unread-count", query, &body); err != nil {
		return 0, err
	}
	return body.UnreadCount, nil
}

// markReadBody mirrors the mark-as-read response
type markReadBody struct {
	Message string `json:"message"`
}

// MarkNotificationRead acknowledges a single notification as read and
// returns the upstream confirmation message.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) (string, error) {
	var body markReadBody
	if err := c.patch(ctx, "/api/notifications/"+url.PathEscape(notificationID), nil, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}
