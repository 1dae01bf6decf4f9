// ABOUTME: Session persistence for signed-in dashboard users
// ABOUTME: Stores the backend bearer token and user record behind an opaque session id

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	query := `
		INSERT INTO sessions (id, user_id, user_json, token, business_name, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sess.ID,
		sess.UserID,
		sess.UserJSON,
		sess.Token,
		sess.BusinessName,
		formatTime(sess.CreatedAt),
		formatTime(sess.LastActivity),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "user_id", sess.UserID)
	return nil
}

// GetSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, user_id, user_json, token, business_name, created_at, last_activity
		FROM sessions
		WHERE id = ?
	`

	var sess Session
	var createdAt, lastActivity string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.UserJSON,
		&sess.Token,
		&sess.BusinessName,
		&createdAt,
		&lastActivity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if sess.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if sess.LastActivity, err = parseTime("last_activity", lastActivity); err != nil {
		return nil, err
	}

	return &sess, nil
}

// TouchSession records activity on a session.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	return s.updateSession(ctx, `UPDATE sessions SET last_activity = ? WHERE id = ?`, formatTime(at), id)
}

// UpdateSessionBusinessName refreshes the business name shown in the shell.
func (s *SQLiteStore) UpdateSessionBusinessName(ctx context.Context, id, businessName string) error {
	return s.updateSession(ctx, `UPDATE sessions SET business_name = ? WHERE id = ?`, businessName, id)
}

func (s *SQLiteStore) updateSession(ctx context.Context, query string, value any, id string) error {
	result, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteIdleSessions removes sessions with no activity since before.
func (s *SQLiteStore) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_activity < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("deleting idle sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		s.logger.Info("removed idle sessions", "count", n)
	}
	return n, nil
}
