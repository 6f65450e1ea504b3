package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/geotrack/geotrack-go/internal/model"
)

var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepository handles device persistence operations.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new DeviceRepository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Create inserts a new device and sets the generated fields on the struct.
func (r *DeviceRepository) Create(ctx context.Context, device *model.Device) error {
	query := `INSERT INTO devices (user_id, device_name, device_id)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at`

	return r.db.QueryRowContext(ctx, query,
		device.UserID, device.Name, device.Label,
	).Scan(&device.ID, &device.IsActive, &device.CreatedAt)
}

// ListByUser retrieves all devices owned by a user.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID int64) ([]model.Device, error) {
	query := `SELECT id, user_id, device_name, device_id, is_active, created_at
		FROM devices WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []model.Device
	for rows.Next() {
		var d model.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Label, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// GetByID retrieves a device by its ID regardless of owner.
func (r *DeviceRepository) GetByID(ctx context.Context, id int64) (*model.Device, error) {
	query := `SELECT id, user_id, device_name, device_id, is_active, created_at
		FROM devices WHERE id = $1`

	device := &model.Device{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID, &device.UserID, &device.Name, &device.Label, &device.IsActive, &device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	return device, nil
}

// Update modifies only the supplied columns of a device and returns the
// updated row. At least one of name or isActive must be non-nil.
func (r *DeviceRepository) Update(ctx context.Context, id int64, name *string, isActive *bool) (*model.Device, error) {
	var assignments []string
	var params []any

	if name != nil {
		params = append(params, *name)
		assignments = append(assignments, fmt.Sprintf("device_name = $%d", len(params)))
	}
	if isActive != nil {
		params = append(params, *isActive)
		assignments = append(assignments, fmt.Sprintf("is_active = $%d", len(params)))
	}

	params = append(params, id)
	query := fmt.Sprintf(`UPDATE devices SET %s WHERE id = $%d
		RETURNING id, user_id, device_name, device_id, is_active, created_at`,
		strings.Join(assignments, ", "), len(params))

	device := &model.Device{}
	err := r.db.QueryRowContext(ctx, query, params...).Scan(
		&device.ID, &device.UserID, &device.Name, &device.Label, &device.IsActive, &device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	return device, nil
}

// Delete removes a device. Location rows cascade at the database level.
func (r *DeviceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Owned reports whether the device belongs to the user. This is a point
// lookup rather than a scan over the user's device list.
func (r *DeviceRepository) Owned(ctx context.Context, deviceID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM devices WHERE id = $1 AND user_id = $2)`

	var owned bool
	if err := r.db.QueryRowContext(ctx, query, deviceID, userID).Scan(&owned); err != nil {
		return false, err
	}
	return owned, nil
}
