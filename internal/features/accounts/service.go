// Package accounts — service.go contains the account business logic.
// The service sits behind the Store interface so the lookup and admin
// flows can be exercised in tests without a live database.
package accounts

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store is what the service needs from persistent storage.
// *Repository is the production implementation.
type Store interface {
	Ensure(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (Info, error)
	AddCredits(ctx context.Context, userID int64, amount int64) error
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	SetAccess(ctx context.Context, userID int64, access string) error
	DeductOne(ctx context.Context, userID int64) (bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	LogLookup(ctx context.Context, userID int64, vehicle string, success bool, reason string) error
	StatsSince(ctx context.Context, since time.Time) (Stats, error)
}

// Service manages user accounts and the audit log.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Ensure guarantees a row exists for the user. Called on every inbound
// update before anything else touches the account.
func (s *Service) Ensure(ctx context.Context, userID int64) error {
	return s.store.Ensure(ctx, userID)
}

// EnsureAdmin marks an allow-list admin in storage on first contact.
// The allow-list itself stays authoritative; the stored tier is
// opportunistic, so later balance displays show "admin".
func (s *Service) EnsureAdmin(ctx context.Context, userID int64) error {
	if err := s.store.Ensure(ctx, userID); err != nil {
		return err
	}
	return s.store.SetAccess(ctx, userID, AccessAdmin)
}

// Get returns the account info, defaulting for absent rows.
func (s *Service) Get(ctx context.Context, userID int64) (Info, error) {
	return s.store.Get(ctx, userID)
}

// AddCredits grants (or with a negative amount revokes) credits.
func (s *Service) AddCredits(ctx context.Context, userID int64, amount int64) error {
	if err := s.store.AddCredits(ctx, userID, amount); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("Credits adjusted")
	return nil
}

// SetBlocked blocks or unblocks the user.
func (s *Service) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	if err := s.store.SetBlocked(ctx, userID, blocked); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"blocked": blocked,
	}).Info("Blocked flag updated")
	return nil
}

// DeductOne burns one credit if the balance is strictly positive.
func (s *Service) DeductOne(ctx context.Context, userID int64) (bool, error) {
	return s.store.DeductOne(ctx, userID)
}

// RefundOne returns one credit, used when a billed fetch fails.
func (s *Service) RefundOne(ctx context.Context, userID int64) error {
	return s.store.AddCredits(ctx, userID, 1)
}

// ListUserIDs returns all known user IDs for broadcast fan-out.
func (s *Service) ListUserIDs(ctx context.Context) ([]int64, error) {
	return s.store.ListUserIDs(ctx)
}

// LogLookup appends an audit row for a completed lookup attempt.
func (s *Service) LogLookup(ctx context.Context, userID int64, vehicle string, success bool, reason string) error {
	return s.store.LogLookup(ctx, userID, vehicle, success, reason)
}

// StatsSince aggregates audit rows for the digest job.
func (s *Service) StatsSince(ctx context.Context, since time.Time) (Stats, error) {
	return s.store.StatsSince(ctx, since)
}
