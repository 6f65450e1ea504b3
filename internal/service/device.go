package service

import (
	"context"
	"errors"

	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/repository"
)

var (
	ErrDeviceNameRequired  = errors.New("Device name is required")
	ErrDeviceLabelRequired = errors.New("Device ID is required")
	ErrDeviceNotFound      = errors.New("Device not found")
	ErrNotDeviceOwner      = errors.New("Unauthorized")
	ErrNoUpdateFields      = errors.New("No fields to update")
	ErrDeviceNotOwned      = errors.New("Device not found or unauthorized")
)

// DeviceService handles device registration and owner-scoped mutation.
type DeviceService struct {
	devices DeviceStore
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(devices DeviceStore) *DeviceService {
	return &DeviceService{devices: devices}
}

// List returns all devices owned by the user.
func (s *DeviceService) List(ctx context.Context, userID int64) ([]model.Device, error) {
	return s.devices.ListByUser(ctx, userID)
}

// Create registers a device owned by the user. New devices are active.
func (s *DeviceService) Create(ctx context.Context, userID int64, req model.CreateDeviceRequest) (*model.Device, error) {
	if req.Name == "" {
		return nil, ErrDeviceNameRequired
	}
	if req.Label == "" {
		return nil, ErrDeviceLabelRequired
	}

	device := &model.Device{
		UserID: userID,
		Name:   req.Name,
		Label:  req.Label,
	}

	if err := s.devices.Create(ctx, device); err != nil {
		return nil, err
	}

	return device, nil
}

// Update applies the supplied fields to a device. Ownership is confirmed
// before any mutation: a missing device yields ErrDeviceNotFound, a device
// owned by someone else yields ErrNotDeviceOwner and the row is untouched.
func (s *DeviceService) Update(ctx context.Context, deviceID, userID int64, req model.UpdateDeviceRequest) (*model.Device, error) {
	if req.Name == nil && req.IsActive == nil {
		return nil, ErrNoUpdateFields
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if device.UserID != userID {
		return nil, ErrNotDeviceOwner
	}

	updated, err := s.devices.Update(ctx, deviceID, req.Name, req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	return updated, nil
}

// Delete removes a device owned by the user. A device that does not exist or
// belongs to someone else yields ErrDeviceNotOwned, without revealing which.
func (s *DeviceService) Delete(ctx context.Context, deviceID, userID int64) error {
	owned, err := s.devices.Owned(ctx, deviceID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrDeviceNotOwned
	}

	err = s.devices.Delete(ctx, deviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		return ErrDeviceNotFound
	}
	return err
}
