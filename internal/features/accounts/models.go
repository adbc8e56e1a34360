// Package accounts manages user rows: credits, the blocked flag and the
// access tier, plus the append-only lookup audit log.
// models.go describes the structures backing the users and lookup_logs tables.
package accounts

import "time"

// Access tiers. Premium and admin tiers bypass credit consumption.
const (
	AccessUser    = "user"
	AccessPremium = "premium"
	AccessAdmin   = "admin"
)

// User is one row of the users table. Rows are created lazily on first
// interaction and never deleted.
type User struct {
	UserID    int64     `db:"user_id"`    // Telegram user ID (primary key)
	Credits   int64     `db:"credits"`    // Remaining lookup credits, never negative
	Blocked   bool      `db:"blocked"`    // Blocked from using the bot
	Access    string    `db:"access"`     // user / premium / admin
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Info is the subset of a user row the lookup flow needs.
// Absent rows read as the zero value with Access "user".
type Info struct {
	Credits int64
	Blocked bool
	Access  string
}

// LookupLog is one audit row, appended per completed lookup attempt.
type LookupLog struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Vehicle   string    `db:"vehicle"`
	Success   bool      `db:"success"` // whether the remote fetch actually succeeded
	Error     string    `db:"error"`   // failure reason, empty on success
	CreatedAt time.Time `db:"created_at"`
}

// Stats aggregates the audit log over a period, for the admin digest.
type Stats struct {
	Total     int64
	Succeeded int64
	Failed    int64
	Users     int64 // distinct users who performed lookups
}
