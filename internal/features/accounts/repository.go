// Package accounts — repository.go performs all operations on the users and
// lookup_logs tables. Every function is a single query against the pool;
// there are no cross-statement transactions here.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ensure inserts a default row for the user if one does not exist yet.
// Idempotent: an existing row is left untouched.
func (r *Repository) Ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO users (user_id, credits, blocked, access)
		VALUES ($1, 0, FALSE, 'user')
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure user %d: %w", userID, err)
	}
	return nil
}

// Get returns credits, blocked flag and access tier for the user.
// An absent row reads as (0, false, "user") with no error.
func (r *Repository) Get(ctx context.Context, userID int64) (Info, error) {
	query := `SELECT credits, blocked, access FROM users WHERE user_id = $1`
	var info Info
	err := r.db.QueryRow(ctx, query, userID).Scan(&info.Credits, &info.Blocked, &info.Access)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Info{Access: AccessUser}, nil
		}
		return Info{}, fmt.Errorf("failed to read user %d: %w", userID, err)
	}
	return info, nil
}

// AddCredits increments the user's credits by amount, creating the row
// first if needed. Amount may be any integer the admin supplies.
func (r *Repository) AddCredits(ctx context.Context, userID int64, amount int64) error {
	query := `
		INSERT INTO users (user_id, credits, blocked, access)
		VALUES ($1, $2, FALSE, 'user')
		ON CONFLICT (user_id) DO UPDATE
		SET credits = users.credits + EXCLUDED.credits, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to add credits for user %d: %w", userID, err)
	}
	return nil
}

// SetBlocked sets the blocked flag, creating the row first if needed.
func (r *Repository) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	query := `
		INSERT INTO users (user_id, credits, blocked, access)
		VALUES ($1, 0, $2, 'user')
		ON CONFLICT (user_id) DO UPDATE
		SET blocked = EXCLUDED.blocked, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, blocked); err != nil {
		return fmt.Errorf("failed to set blocked=%v for user %d: %w", blocked, userID, err)
	}
	return nil
}

// SetAccess updates the access tier of an existing row.
func (r *Repository) SetAccess(ctx context.Context, userID int64, access string) error {
	query := `UPDATE users SET access = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, access); err != nil {
		return fmt.Errorf("failed to set access for user %d: %w", userID, err)
	}
	return nil
}

// DeductOne atomically decrements the user's credits by exactly one,
// refusing when the stored value is not strictly positive. The conditional
// UPDATE closes the check-then-act race between concurrent requests from
// the same user; the affected-row count is the success signal.
func (r *Repository) DeductOne(ctx context.Context, userID int64) (bool, error) {
	query := `
		UPDATE users
		SET credits = credits - 1, updated_at = NOW()
		WHERE user_id = $1 AND credits > 0
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to deduct credit for user %d: %w", userID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUserIDs returns every known user ID. Used only by broadcast.
func (r *Repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user ids: %w", err)
	}
	return ids, nil
}

// LogLookup appends one audit row. Rows are never mutated or deleted.
func (r *Repository) LogLookup(ctx context.Context, userID int64, vehicle string, success bool, reason string) error {
	query := `
		INSERT INTO lookup_logs (user_id, vehicle, success, error)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, userID, vehicle, success, reason); err != nil {
		return fmt.Errorf("failed to append lookup log: %w", err)
	}
	return nil
}

// StatsSince aggregates the audit log from the given instant. Feeds the
// daily digest to admins.
func (r *Repository) StatsSince(ctx context.Context, since time.Time) (Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE success),
		       COUNT(DISTINCT user_id)
		FROM lookup_logs
		WHERE created_at >= $1
	`
	var s Stats
	if err := r.db.QueryRow(ctx, query, since).Scan(&s.Total, &s.Succeeded, &s.Users); err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate lookup stats: %w", err)
	}
	s.Failed = s.Total - s.Succeeded
	return s, nil
}
