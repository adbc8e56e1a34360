// Package admin implements the privileged surface: credit grants,
// block/unblock, broadcast and credit vouchers. Admin identity is a static
// allow-list loaded once from configuration; it is not mutable at runtime.
// models.go describes the voucher structures.
package admin

import "time"

// Voucher is a one-shot credit top-up code. Only the argon2id hash of the
// code's secret part is stored; the full code is shown to the issuing
// admin exactly once.
type Voucher struct {
	ID         int64      `db:"id"`
	CodeHash   string     `db:"code_hash"`
	Credits    int64      `db:"credits"`
	CreatedBy  int64      `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
	RedeemedBy *int64     `db:"redeemed_by"`
	RedeemedAt *time.Time `db:"redeemed_at"`
}

// codePrefix leads every voucher code: RC-<id>-<secret>.
const codePrefix = "RC"
