package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geotrack/geotrack-go/internal/model"
)

var ErrNoLocation = errors.New("no location data found")

// LocationRepository handles location persistence operations. Locations are
// append-only: there is no update or delete.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Insert appends a location report. The timestamp is assigned by the
// database at insert and set on the struct.
func (r *LocationRepository) Insert(ctx context.Context, loc *model.Location) error {
	query := `INSERT INTO locations (device_id, latitude, longitude, accuracy, speed, heading, altitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, timestamp`

	return r.db.QueryRowContext(ctx, query,
		loc.DeviceID, loc.Latitude, loc.Longitude, loc.Accuracy, loc.Speed, loc.Heading, loc.Altitude,
	).Scan(&loc.ID, &loc.Timestamp)
}

// Current retrieves the most recent location for a device.
func (r *LocationRepository) Current(ctx context.Context, deviceID int64) (*model.Location, error) {
	query := `SELECT id, device_id, latitude, longitude, timestamp, accuracy, speed, heading, altitude
		FROM locations WHERE device_id = $1
		ORDER BY timestamp DESC LIMIT 1`

	loc := &model.Location{}
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&loc.ID, &loc.DeviceID, &loc.Latitude, &loc.Longitude, &loc.Timestamp,
		&loc.Accuracy, &loc.Speed, &loc.Heading, &loc.Altitude,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLocation
		}
		return nil, err
	}

	return loc, nil
}

// History retrieves all locations for a device within [start, end], oldest
// first.
func (r *LocationRepository) History(ctx context.Context, deviceID int64, start, end time.Time) ([]model.Location, error) {
	query := `SELECT id, device_id, latitude, longitude, timestamp, accuracy, speed, heading, altitude
		FROM locations WHERE device_id = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, deviceID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(
			&l.ID, &l.DeviceID, &l.Latitude, &l.Longitude, &l.Timestamp,
			&l.Accuracy, &l.Speed, &l.Heading, &l.Altitude,
		); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}

	return locations, rows.Err()
}
