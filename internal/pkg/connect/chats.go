package connect

import (
	"context"
	"net/url"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
)

// chatListBody mirrors the chat entity list response
type chatListBody struct {
	Chats []chat.Entity `json:"chats"`
}

// ChatEntities fetches the user's conversation entities, direct and group,
// with their message collections.
func (c *Client) ChatEntities(ctx context.Context, userID string) ([]chat.Entity, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var body chatListBody
	if err := c.get(ctx, "/api/chats", query, &body); err != nil {
		return nil, err
	}
	return body.Chats, nil
}
