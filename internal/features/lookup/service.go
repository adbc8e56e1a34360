// service.go sequences one lookup request: cooldown → blocked → billing →
// fetch → audit → reply. Each guard short-circuits with a sentinel error
// the handler maps to a specific user-visible message.
package lookup

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/common"
	"github.com/nanacinema/RCFINDER/internal/features/accounts"
)

// AccountStore is the slice of the account service the flow needs.
type AccountStore interface {
	Ensure(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (accounts.Info, error)
	DeductOne(ctx context.Context, userID int64) (bool, error)
	RefundOne(ctx context.Context, userID int64) error
	LogLookup(ctx context.Context, userID int64, vehicle string, success bool, reason string) error
}

// CooldownError rejects a lookup attempted before the cooldown elapsed.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, retry in %s", common.FormatWait(e.RetryAfter))
}

// Service runs the credit-gated lookup flow.
type Service struct {
	store   AccountStore
	fetcher Fetcher
	limiter *Limiter
	admins  map[int64]struct{}
}

func NewService(store AccountStore, fetcher Fetcher, limiter *Limiter, adminIDs []int64) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		store:   store,
		fetcher: fetcher,
		limiter: limiter,
		admins:  admins,
	}
}

// Lookup performs one gated lookup for the given (already normalized)
// vehicle number and returns the formatted reply text.
//
// Guard order: cooldown, blocked, billing, fetch. The credit is reserved
// BEFORE the fetch — a caller who cannot be billed gets no paid work —
// and refunded when the fetch fails, so failed lookups cost nothing.
// The audit row records the real fetch outcome either way.
//
// onFetch, when non-nil, runs after all guards pass and before the
// network call; the handler uses it for the "fetching..." progress reply.
//
// Returned errors: *CooldownError, common.ErrBlocked, common.ErrNoCredits.
func (s *Service) Lookup(ctx context.Context, userID int64, vehicle string, onFetch func()) (string, error) {
	if err := s.store.Ensure(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ensure failed")
	}

	if allowed, retryAfter := s.limiter.Check(userID); !allowed {
		return "", &CooldownError{RetryAfter: retryAfter}
	}

	info, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	isAdmin := s.isAllowlisted(userID)
	privileged := isAdmin || info.Access == accounts.AccessAdmin || info.Access == accounts.AccessPremium

	// Allow-list admins bypass the blocked flag.
	if info.Blocked && !isAdmin {
		return "", common.ErrBlocked
	}

	billed := false
	if !privileged {
		ok, err := s.store.DeductOne(ctx, userID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", common.ErrNoCredits
		}
		billed = true
	}

	if onFetch != nil {
		onFetch()
	}

	res := s.fetcher.Fetch(ctx, vehicle)

	if res.OK {
		s.limiter.Record(userID)
	} else if billed {
		if err := s.store.RefundOne(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Credit refund failed")
		}
	}

	if err := s.store.LogLookup(ctx, userID, vehicle, res.OK, res.Reason); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Audit log append failed")
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"vehicle": vehicle,
		"success": res.OK,
		"billed":  billed,
	}).Info("Lookup completed")

	return FormatReply(vehicle, res.Display(), privileged), nil
}

func (s *Service) isAllowlisted(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}
