package model

import "time"

// Location represents a single GPS report for a device. Rows are append-only;
// Timestamp is assigned by the database at insert. The optional readings are
// nullable in storage and render as null in responses when absent.
type Location struct {
	ID        int64     `json:"id"`
	DeviceID  int64     `json:"device_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy"`
	Speed     *float64  `json:"speed"`
	Heading   *float64  `json:"heading"`
	Altitude  *float64  `json:"altitude"`
}

// UpdateLocationRequest represents an inbound location report. Latitude and
// Longitude are pointers so that a present zero coordinate passes validation.
type UpdateLocationRequest struct {
	DeviceID  int64    `json:"device_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
	Altitude  *float64 `json:"altitude"`
}
