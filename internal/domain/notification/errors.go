package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrStatsUnavailable     = errors.New("notification stats not fetched yet")
)
