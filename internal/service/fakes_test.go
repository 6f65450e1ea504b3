package service

import (
	"context"
	"sort"
	"time"

	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/repository"
)

type fakeUserStore struct {
	users     map[int64]*model.User
	nextID    int64
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.PhoneNumber == user.PhoneNumber {
			return repository.ErrDuplicatePhone
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByPhone(_ context.Context, phoneNumber string) (*model.User, error) {
	for _, u := range f.users {
		if u.PhoneNumber == phoneNumber {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

type fakeDeviceStore struct {
	devices map[int64]*model.Device
	nextID  int64
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: make(map[int64]*model.Device)}
}

func (f *fakeDeviceStore) Create(_ context.Context, device *model.Device) error {
	f.nextID++
	device.ID = f.nextID
	device.IsActive = true
	device.CreatedAt = time.Now()
	stored := *device
	f.devices[device.ID] = &stored
	return nil
}

func (f *fakeDeviceStore) ListByUser(_ context.Context, userID int64) ([]model.Device, error) {
	var devices []model.Device
	for _, d := range f.devices {
		if d.UserID == userID {
			devices = append(devices, *d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

func (f *fakeDeviceStore) GetByID(_ context.Context, id int64) (*model.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDeviceStore) Update(_ context.Context, id int64, name *string, isActive *bool) (*model.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if isActive != nil {
		d.IsActive = *isActive
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDeviceStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.devices[id]; !ok {
		return repository.ErrDeviceNotFound
	}
	delete(f.devices, id)
	return nil
}

func (f *fakeDeviceStore) Owned(_ context.Context, deviceID, userID int64) (bool, error) {
	d, ok := f.devices[deviceID]
	return ok && d.UserID == userID, nil
}

type fakeLocationStore struct {
	locations []model.Location
	nextID    int64
}

func (f *fakeLocationStore) Insert(_ context.Context, loc *model.Location) error {
	f.nextID++
	loc.ID = f.nextID
	loc.Timestamp = time.Now()
	f.locations = append(f.locations, *loc)
	return nil
}

func (f *fakeLocationStore) Current(_ context.Context, deviceID int64) (*model.Location, error) {
	var latest *model.Location
	for i := range f.locations {
		l := &f.locations[i]
		if l.DeviceID != deviceID {
			continue
		}
		if latest == nil || l.Timestamp.After(latest.Timestamp) {
			latest = l
		}
	}
	if latest == nil {
		return nil, repository.ErrNoLocation
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeLocationStore) History(_ context.Context, deviceID int64, start, end time.Time) ([]model.Location, error) {
	var locations []model.Location
	for _, l := range f.locations {
		if l.DeviceID == deviceID && !l.Timestamp.Before(start) && !l.Timestamp.After(end) {
			locations = append(locations, l)
		}
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Timestamp.Before(locations[j].Timestamp) })
	return locations, nil
}
