// Package jobs runs background tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/features/accounts"
)

// Scheduler manages background tasks.
type Scheduler struct {
	cron           *cron.Cron
	accountService *accounts.Service
	adminIDs       []int64
	digestSpec     string
	sendFunc       func(userID int64, text string)
}

// NewScheduler creates the task scheduler in the given timezone.
func NewScheduler(accountService *accounts.Service, adminIDs []int64, timezone, digestSpec string, sendFunc func(userID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Failed to load %s, falling back to UTC+5:30", timezone)
		loc = time.FixedZone("IST", 5*60*60+30*60)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:           c,
		accountService: accountService,
		adminIDs:       adminIDs,
		digestSpec:     digestSpec,
		sendFunc:       sendFunc,
	}
}

// Start registers all background tasks and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	// Daily lookup digest to admins
	if _, err := s.cron.AddFunc(s.digestSpec, func() {
		log.Info("[CRON] Daily lookup digest")
		if err := s.sendDigest(ctx); err != nil {
			log.WithError(err).Error("[CRON] Digest failed")
		}
	}); err != nil {
		log.WithError(err).Errorf("[CRON] Invalid digest schedule %q", s.digestSpec)
	}

	s.cron.Start()
	log.Info("Task scheduler started")
}

func (s *Scheduler) sendDigest(ctx context.Context) error {
	stats, err := s.accountService.StatsSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"📊 Lookups in the last 24h\n\nTotal: %d\nSucceeded: %d\nFailed: %d\nUnique users: %d",
		stats.Total, stats.Succeeded, stats.Failed, stats.Users,
	)
	for _, id := range s.adminIDs {
		s.sendFunc(id, text)
	}
	return nil
}

// Stop stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Task scheduler stopped")
}
