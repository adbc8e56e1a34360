// Package main is the bot entry point.
// It loads configuration, initializes the application and runs it.
// Shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/app"
	"github.com/nanacinema/RCFINDER/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== Bot starting ===")

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.DB.Close()
	defer application.Limiter.Close()

	application.Scheduler.Start(ctx)
	defer application.Scheduler.Stop()

	if application.Health != nil {
		application.Health.Start()
	}

	// Handle stop signals (Ctrl+C, docker stop)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go application.Bot.Start(ctx)

	log.Info("=== Bot ready ===")

	sig := <-quit
	log.Infof("Received signal %s, shutting down...", sig)

	cancel()

	if application.Health != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		application.Health.Stop(shutdownCtx)
		shutdownCancel()
	}

	log.Info("=== Bot stopped ===")
}

// setupLogging configures the log format.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
