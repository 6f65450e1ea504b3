package service

import (
	"context"
	"time"

	"github.com/geotrack/geotrack-go/internal/model"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByPhone(ctx context.Context, phoneNumber string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// DeviceStore is the persistence surface for devices. Owned is the ownership
// point query consulted before any device or location access.
type DeviceStore interface {
	Create(ctx context.Context, device *model.Device) error
	ListByUser(ctx context.Context, userID int64) ([]model.Device, error)
	GetByID(ctx context.Context, id int64) (*model.Device, error)
	Update(ctx context.Context, id int64, name *string, isActive *bool) (*model.Device, error)
	Delete(ctx context.Context, id int64) error
	Owned(ctx context.Context, deviceID, userID int64) (bool, error)
}

// LocationStore is the persistence surface for location reports.
type LocationStore interface {
	Insert(ctx context.Context, loc *model.Location) error
	Current(ctx context.Context, deviceID int64) (*model.Location, error)
	History(ctx context.Context, deviceID int64, start, end time.Time) ([]model.Location, error)
}
