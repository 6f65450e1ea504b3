package model

import "time"

// Session represents a tracking session. Sessions are persisted but not yet
// exposed through any route.
type Session struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes"`
}
