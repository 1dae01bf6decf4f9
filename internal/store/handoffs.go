// ABOUTME: Tab-scoped handoff records with a TTL
// ABOUTME: Holds the signup exchange token, signup email and demo sandbox draft per browser tab

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PutHandoff inserts or replaces the value for (tab, kind).
func (s *SQLiteStore) PutHandoff(ctx context.Context, h *Handoff) error {
	query := `
		INSERT INTO handoffs (tab_id, kind, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tab_id, kind) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		h.TabID,
		string(h.Kind),
		h.Payload,
		formatTime(h.CreatedAt),
		formatTime(h.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("upserting handoff: %w", err)
	}
	return nil
}

// GetHandoff returns the live value for (tab, kind).
func (s *SQLiteStore) GetHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error) {
	h, err := scanHandoff(s.db.QueryRowContext(ctx, handoffSelect, tabID, string(kind)))
	if err != nil {
		return nil, err
	}
	if !time.Now().Before(h.ExpiresAt) {
		return nil, ErrExpired
	}
	return h, nil
}

// TakeHandoff reads and deletes the value for (tab, kind) in one transaction.
func (s *SQLiteStore) TakeHandoff(ctx context.Context, tabID string, kind HandoffKind) (*Handoff, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	h, err := scanHandoff(tx.QueryRowContext(ctx, handoffSelect, tabID, string(kind)))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM handoffs WHERE tab_id = ? AND kind = ?`, tabID, string(kind)); err != nil {
		return nil, fmt.Errorf("deleting handoff: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if !time.Now().Before(h.ExpiresAt) {
		return nil, ErrExpired
	}
	return h, nil
}

// DeleteHandoff removes the value for (tab, kind) if present.
func (s *SQLiteStore) DeleteHandoff(ctx context.Context, tabID string, kind HandoffKind) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM handoffs WHERE tab_id = ? AND kind = ?`, tabID, string(kind)); err != nil {
		return fmt.Errorf("deleting handoff: %w", err)
	}
	return nil
}

// DeleteExpiredHandoffs removes every handoff whose TTL has passed.
func (s *SQLiteStore) DeleteExpiredHandoffs(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM handoffs WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired handoffs: %w", err)
	}
	return result.RowsAffected()
}

const handoffSelect = `
	SELECT tab_id, kind, payload, created_at, expires_at
	FROM handoffs
	WHERE tab_id = ? AND kind = ?
`

func scanHandoff(row *sql.Row) (*Handoff, error) {
	var h Handoff
	var kind, createdAt, expiresAt string
	err := row.Scan(&h.TabID, &kind, &h.Payload, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying handoff: %w", err)
	}
	h.Kind = HandoffKind(kind)
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if h.ExpiresAt, err = parseTime("expires_at", expiresAt); err != nil {
		return nil, err
	}
	return &h, nil
}
