package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanacinema/RCFINDER/internal/features/accounts"
)

// statsStore satisfies accounts.Store; only StatsSince matters here.
type statsStore struct {
	stats accounts.Stats
	since time.Time
}

func (s *statsStore) Ensure(ctx context.Context, userID int64) error { return nil }
func (s *statsStore) Get(ctx context.Context, userID int64) (accounts.Info, error) {
	return accounts.Info{}, nil
}
func (s *statsStore) AddCredits(ctx context.Context, userID, amount int64) error    { return nil }
func (s *statsStore) SetBlocked(ctx context.Context, userID int64, b bool) error    { return nil }
func (s *statsStore) SetAccess(ctx context.Context, userID int64, a string) error   { return nil }
func (s *statsStore) DeductOne(ctx context.Context, userID int64) (bool, error)     { return false, nil }
func (s *statsStore) ListUserIDs(ctx context.Context) ([]int64, error)              { return nil, nil }
func (s *statsStore) LogLookup(ctx context.Context, u int64, v string, ok bool, r string) error {
	return nil
}
func (s *statsStore) StatsSince(ctx context.Context, since time.Time) (accounts.Stats, error) {
	s.since = since
	return s.stats, nil
}

func TestSendDigest(t *testing.T) {
	store := &statsStore{stats: accounts.Stats{Total: 12, Succeeded: 9, Failed: 3, Users: 5}}
	svc := accounts.NewService(store)

	var recipients []int64
	var lastText string
	s := NewScheduler(svc, []int64{10, 20}, "UTC", "0 9 * * *", func(userID int64, text string) {
		recipients = append(recipients, userID)
		lastText = text
	})

	require.NoError(t, s.sendDigest(context.Background()))

	assert.Equal(t, []int64{10, 20}, recipients)
	assert.Contains(t, lastText, "Total: 12")
	assert.Contains(t, lastText, "Succeeded: 9")
	assert.Contains(t, lastText, "Failed: 3")
	assert.Contains(t, lastText, "Unique users: 5")

	// The window is the trailing 24 hours.
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), store.since, time.Minute)
}

func TestNewSchedulerBadTimezoneFallsBack(t *testing.T) {
	svc := accounts.NewService(&statsStore{})
	s := NewScheduler(svc, nil, "Not/AZone", "0 9 * * *", func(int64, string) {})
	require.NotNil(t, s)
}
