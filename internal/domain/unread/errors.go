package unread

import "errors"

// Unread domain errors
var (
	ErrNoWatcher = errors.New("no unread watcher for user")
)
