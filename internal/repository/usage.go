package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vaultpass/passgen-go/internal/model"
)

// UsageRepository records generation metadata used for quotas.
type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Reserve inserts ev as pending if the user has fewer than limit pending or
// successful events for ev.Generator since since. The user's row is locked
// for the duration, so concurrent reservations for one user are serialized
// across server instances. It reports false when the quota is used up.
func (r *UsageRepository) Reserve(ctx context.Context, ev *model.UsageEvent, since time.Time, limit int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, ev.UserID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("lock user: %w", err)
	}

	used, err := countSince(ctx, tx, ev.UserID, ev.Generator, since)
	if err != nil {
		return false, err
	}
	if used >= limit {
		return false, nil
	}

	ev.Status = model.UsagePending
	result, err := tx.ExecContext(ctx,
		`INSERT INTO generation_events (user_id, generator, length, classes, status) VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, ev.Generator, ev.Length, ev.Classes, ev.Status)
	if err != nil {
		return false, err
	}
	if ev.ID, err = result.LastInsertId(); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// Complete sets the final status of a reserved event.
func (r *UsageRepository) Complete(ctx context.Context, id int64, status model.UsageStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE generation_events SET status = ? WHERE id = ?`, status, id)
	return err
}

// CountSince counts a user's pending and successful generations with the
// given generator created at or after since.
func (r *UsageRepository) CountSince(ctx context.Context, userID int64, generator string, since time.Time) (int, error) {
	return countSince(ctx, r.db, userID, generator, since)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countSince(ctx context.Context, q queryRower, userID int64, generator string, since time.Time) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM generation_events
		WHERE user_id = ? AND generator = ? AND status IN ('pending', 'ok') AND created_at >= ?`,
		userID, generator, since).Scan(&n)
	return n, err
}
