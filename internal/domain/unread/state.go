package unread

import (
	"context"
	"time"
)

// State is the aggregate unread-count snapshot for one user. Whenever Error
// is empty, TotalCount equals DirectCount + GroupCount.
type State struct {
	DirectCount int    `json:"direct_count"`
	GroupCount  int    `json:"group_count"`
	TotalCount  int    `json:"total_count"`
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
}

// Options configures the retry behavior of a fetch cycle. A failed attempt
// is retried after RetryDelay * 2^retryCount, up to MaxRetries retries.
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// WithDefaults fills zero-valued options.
func (o Options) WithDefaults() Options {
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// CountFetcher fetches the two independent unread counts from the upstream
// API. Both calls are issued concurrently by the aggregator.
type CountFetcher interface {
	DirectUnreadCount(ctx context.Context, userID string) (int, error)
	GroupUnreadCount(ctx context.Context, userID string) (int, error)
}
