// Package common — errors.go defines the sentinel errors shared by the
// feature packages. Handlers match on these to pick the user-facing reply
// instead of parsing error strings.
package common

import "errors"

// Account errors
var (
	// ErrBlocked — the caller is blocked from using the bot
	ErrBlocked = errors.New("user is blocked")
	// ErrNoCredits — the caller has no lookup credits left
	ErrNoCredits = errors.New("no lookup credits")
)

// Admin errors
var (
	// ErrInvalidAmount — amount is zero or otherwise unusable
	ErrInvalidAmount = errors.New("amount must be a non-zero integer")
)

// Voucher errors
var (
	// ErrVoucherInvalid — malformed or unknown voucher code
	ErrVoucherInvalid = errors.New("invalid voucher code")
	// ErrVoucherUsed — the voucher was already redeemed
	ErrVoucherUsed = errors.New("voucher already redeemed")
)
