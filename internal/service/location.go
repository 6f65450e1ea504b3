package service

import (
	"context"
	"errors"
	"time"

	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/repository"
)

var (
	ErrLocationDeviceRequired = errors.New("Device ID is required")
	ErrLatitudeRequired       = errors.New("Latitude is required")
	ErrLongitudeRequired      = errors.New("Longitude is required")
	ErrNoLocationData         = errors.New("No location data found")
	ErrStartRequired          = errors.New("Start time is required")
	ErrEndRequired            = errors.New("End time is required")
	ErrInvalidTimestamp       = errors.New("Invalid timestamp format")
)

// timestampLayouts are the accepted history-bound formats: RFC 3339 (a Z
// suffix parses as UTC) or a bare local timestamp without offset.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// LocationService handles location reports and queries. Every operation
// confirms the device belongs to the calling user before touching location
// rows.
type LocationService struct {
	devices   DeviceStore
	locations LocationStore
}

// NewLocationService creates a new LocationService.
func NewLocationService(devices DeviceStore, locations LocationStore) *LocationService {
	return &LocationService{devices: devices, locations: locations}
}

// Update appends a location report for a device owned by the user. The
// coordinates are checked for presence only; out-of-range values are stored
// as sent. The timestamp is assigned server-side.
func (s *LocationService) Update(ctx context.Context, userID int64, req model.UpdateLocationRequest) (*model.Location, error) {
	if req.DeviceID == 0 {
		return nil, ErrLocationDeviceRequired
	}
	if req.Latitude == nil {
		return nil, ErrLatitudeRequired
	}
	if req.Longitude == nil {
		return nil, ErrLongitudeRequired
	}

	if err := s.requireOwnership(ctx, req.DeviceID, userID); err != nil {
		return nil, err
	}

	loc := &model.Location{
		DeviceID:  req.DeviceID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Heading:   req.Heading,
		Altitude:  req.Altitude,
	}

	if err := s.locations.Insert(ctx, loc); err != nil {
		return nil, err
	}

	return loc, nil
}

// Current returns the most recent location for a device owned by the user.
func (s *LocationService) Current(ctx context.Context, deviceID, userID int64) (*model.Location, error) {
	if err := s.requireOwnership(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	loc, err := s.locations.Current(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNoLocation) {
			return nil, ErrNoLocationData
		}
		return nil, err
	}

	return loc, nil
}

// History returns all locations for a device owned by the user with
// timestamps in [start, end], oldest first. Both bounds are required.
func (s *LocationService) History(ctx context.Context, deviceID, userID int64, start, end string) ([]model.Location, error) {
	if err := s.requireOwnership(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	if start == "" {
		return nil, ErrStartRequired
	}
	if end == "" {
		return nil, ErrEndRequired
	}

	startTime, err := parseTimestamp(start)
	if err != nil {
		return nil, err
	}
	endTime, err := parseTimestamp(end)
	if err != nil {
		return nil, err
	}

	return s.locations.History(ctx, deviceID, startTime, endTime)
}

func (s *LocationService) requireOwnership(ctx context.Context, deviceID, userID int64) error {
	owned, err := s.devices.Owned(ctx, deviceID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotDeviceOwner
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}
