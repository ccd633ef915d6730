package chat

import "errors"

// Chat domain errors
var (
	ErrEntityNotFound  = errors.New("chat entity not found")
	ErrSnapshotMissing = errors.New("no chat snapshot loaded for user")
)
