package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geotrack/geotrack-go/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles tracking-session persistence. No route exposes
// sessions yet; the storage layer is complete so clients can be added without
// a schema change.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create starts a new tracking session for a user.
func (r *SessionRepository) Create(ctx context.Context, userID int64, notes *string) (*model.Session, error) {
	query := `INSERT INTO sessions (user_id, notes) VALUES ($1, $2)
		RETURNING id, user_id, start_time, end_time, notes`

	session := &model.Session{}
	err := r.db.QueryRowContext(ctx, query, userID, notes).Scan(
		&session.ID, &session.UserID, &session.StartTime, &session.EndTime, &session.Notes,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// End closes an open session, optionally replacing its notes. Returns
// ErrSessionNotFound if the session does not exist or is already closed.
func (r *SessionRepository) End(ctx context.Context, sessionID int64, notes *string) (*model.Session, error) {
	query := `UPDATE sessions SET end_time = CURRENT_TIMESTAMP, notes = COALESCE($2, notes)
		WHERE id = $1 AND end_time IS NULL
		RETURNING id, user_id, start_time, end_time, notes`

	session := &model.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID, notes).Scan(
		&session.ID, &session.UserID, &session.StartTime, &session.EndTime, &session.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}

// ListByUser retrieves all sessions for a user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]model.Session, error) {
	query := `SELECT id, user_id, start_time, end_time, notes
		FROM sessions WHERE user_id = $1 ORDER BY start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.Notes); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
