package model

import "time"

// Device represents a tracked device owned by a user. Label is the
// client-supplied external identifier and is not unique: a user may register
// several devices under the same label.
type Device struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"device_name"`
	Label     string    `json:"device_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateDeviceRequest represents a device registration request.
type CreateDeviceRequest struct {
	Name  string `json:"device_name"`
	Label string `json:"device_id"`
}

// UpdateDeviceRequest represents a partial device update. Pointer fields
// distinguish an omitted field from an explicit zero value.
type UpdateDeviceRequest struct {
	Name     *string `json:"device_name"`
	IsActive *bool   `json:"is_active"`
}
