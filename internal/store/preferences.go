// ABOUTME: Per-user dashboard preferences
// ABOUTME: Currently the quick setup guide completion flag

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetPreferences returns the stored preferences, or zero values when none exist.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	prefs := &Preferences{UserID: userID}

	var completed int
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT setup_completed, updated_at FROM preferences WHERE user_id = ?`, userID,
	).Scan(&completed, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}

	prefs.SetupCompleted = completed != 0
	if prefs.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetSetupCompleted records whether the user dismissed the quick setup guide.
func (s *SQLiteStore) SetSetupCompleted(ctx context.Context, userID string, completed bool) error {
	flag := 0
	if completed {
		flag = 1
	}
	query := `
		INSERT INTO preferences (user_id, setup_completed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			setup_completed = excluded.setup_completed,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, userID, flag, formatTime(time.Now())); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}
