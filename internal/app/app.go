// Package app initializes every component of the application.
// app.go is the assembly point: it creates the DB pool, repositories,
// services and handlers and wires them into a single Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/bot"
	"github.com/nanacinema/RCFINDER/internal/config"
	"github.com/nanacinema/RCFINDER/internal/db/postgres"
	"github.com/nanacinema/RCFINDER/internal/features/accounts"
	"github.com/nanacinema/RCFINDER/internal/features/admin"
	"github.com/nanacinema/RCFINDER/internal/features/lookup"
	"github.com/nanacinema/RCFINDER/internal/health"
	"github.com/nanacinema/RCFINDER/internal/jobs"
)

// App holds every long-lived component of the application.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Health    *health.Server
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
	Limiter   *lookup.Limiter
}

// New creates and initializes the application.
// Initialization order matters: components depend on one another.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Authorized as @%s", botAPI.Self.UserName)

	// === 3. Repositories ===
	accountRepo := accounts.NewRepository(pool)
	voucherRepo := admin.NewRepository(pool)

	// === 4. Services ===
	accountService := accounts.NewService(accountRepo)
	limiter := lookup.NewLimiter(cfg.LookupCooldown)
	client := lookup.NewClient(cfg.LookupAPIBase, cfg.LookupTimeout)
	lookupService := lookup.NewService(accountService, client, limiter, cfg.AdminIDs)
	adminService := admin.NewService(voucherRepo, accountService, cfg.AdminIDs)

	// === 5. Handlers ===
	lookupHandler := lookup.NewHandler(lookupService, botAPI)
	adminHandler := admin.NewHandler(adminService, botAPI)

	// === 6. Bot ===
	b := bot.New(botAPI, cfg, accountService, lookupHandler, adminService, adminHandler)

	// === 7. Background jobs ===
	scheduler := jobs.NewScheduler(accountService, cfg.AdminIDs, cfg.AppTimezone, cfg.StatsDigestCron, b.SendMessageToUser)

	// === 8. Health endpoint (optional) ===
	var healthSrv *health.Server
	if cfg.HealthEnabled {
		healthSrv = health.NewServer(cfg.HealthPort, pool)
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Health:    healthSrv,
		DB:        pool,
		BotAPI:    botAPI,
		Limiter:   limiter,
	}, nil
}

// runMigrations applies all SQL migrations in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002LookupLogs},
		{3, migration003Vouchers},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		log.Infof("Migration %d applied", m.version)
	}

	return nil
}

// SQL migrations are embedded in the binary to keep deploys to a single
// artifact.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    credits BIGINT NOT NULL DEFAULT 0,
    blocked BOOLEAN NOT NULL DEFAULT FALSE,
    access VARCHAR(16) NOT NULL DEFAULT 'user',
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

var migration002LookupLogs = `
CREATE TABLE IF NOT EXISTS lookup_logs (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    vehicle VARCHAR(32) NOT NULL,
    success BOOLEAN NOT NULL,
    error TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_lookup_logs_user_id ON lookup_logs(user_id);
CREATE INDEX IF NOT EXISTS idx_lookup_logs_created_at ON lookup_logs(created_at DESC);
`

var migration003Vouchers = `
CREATE TABLE IF NOT EXISTS vouchers (
    id BIGSERIAL PRIMARY KEY,
    code_hash VARCHAR(255) NOT NULL,
    credits BIGINT NOT NULL,
    created_by BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    redeemed_by BIGINT,
    redeemed_at TIMESTAMP
);
`
