// Package admin — repository.go works with the vouchers table.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// Repository persists vouchers.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateVoucher inserts a voucher and returns its generated ID, which
// becomes part of the printable code.
func (r *Repository) CreateVoucher(ctx context.Context, codeHash string, credits, createdBy int64) (int64, error) {
	query := `
		INSERT INTO vouchers (code_hash, credits, created_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, codeHash, credits, createdBy).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create voucher: %w", err)
	}
	return id, nil
}

// GetVoucher loads one voucher by ID. Unknown IDs map to
// common.ErrVoucherInvalid so callers cannot distinguish a wrong ID from
// a wrong secret.
func (r *Repository) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	query := `
		SELECT id, code_hash, credits, created_by, created_at, redeemed_by, redeemed_at
		FROM vouchers
		WHERE id = $1
	`
	var v Voucher
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.CodeHash, &v.Credits, &v.CreatedBy, &v.CreatedAt,
		&v.RedeemedBy, &v.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrVoucherInvalid
		}
		return nil, fmt.Errorf("failed to read voucher %d: %w", id, err)
	}
	return &v, nil
}

// MarkRedeemed claims the voucher for userID. The conditional UPDATE makes
// redemption single-shot even under concurrent attempts; zero affected
// rows means somebody else got there first.
func (r *Repository) MarkRedeemed(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		UPDATE vouchers
		SET redeemed_by = $2, redeemed_at = NOW()
		WHERE id = $1 AND redeemed_by IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to redeem voucher %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
