// Package main implements HCNoticer, a monitor for the Hack Club YSWS
// catalog that diffs each fetch against previously observed state and
// emails a digest of newly listed events.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/robfig/cron/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/TheusHen/HCNoticer/config"
	"github.com/TheusHen/HCNoticer/diff"
	"github.com/TheusHen/HCNoticer/email"
	"github.com/TheusHen/HCNoticer/fetch"
	"github.com/TheusHen/HCNoticer/pkg/catalog"
	"github.com/TheusHen/HCNoticer/report"
	"github.com/TheusHen/HCNoticer/storage"
)

func main() {
	checkOnly := flag.Bool("check", false, "fetch, diff and update state without sending email")
	configPath := flag.String("config", "", "path to YAML config file")
	schedule := flag.String("schedule", "", "cron schedule for repeated runs (overrides config; empty = run once)")
	flag.Parse()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *schedule != "" {
		cfg.Schedule = *schedule
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := newApp(ctx, cfg, *checkOnly, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// One-shot mode: the exit code reports the run outcome
	if cfg.Schedule == "" {
		if err := app.run(ctx); err != nil {
			logger.Error("Run failed", "error", err)
			cleanup()
			os.Exit(1)
		}
		return
	}

	// Schedule mode: keep running until interrupted, logging per-run errors
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if err := app.run(ctx); err != nil {
			logger.Error("Scheduled run failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid cron schedule", "schedule", cfg.Schedule, "error", err)
		os.Exit(1)
	}

	logger.Info("Starting scheduler", "schedule", cfg.Schedule)
	c.Start()
	<-ctx.Done()

	logger.Info("Shutting down")
	<-c.Stop().Done()
}

type app struct {
	fetcher   *fetch.Fetcher
	store     *storage.Store
	engine    *diff.Engine
	sender    *email.Sender
	logger    *slog.Logger
	checkOnly bool
}

func newApp(ctx context.Context, cfg *config.Config, checkOnly bool, logger *slog.Logger) (*app, func(), error) {
	cleanup := func() {}

	var store *storage.Store
	if cfg.StorageBucket != "" {
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init storage client: %w", err)
		}
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close storage client", "error", err)
			}
		}
		store = storage.NewGCS(client, cfg.StorageBucket, logger)
		logger.Info("Using Cloud Storage state backend", "bucket", cfg.StorageBucket)
	} else {
		store = storage.New(cfg.StateFile, logger)
	}

	return &app{
		fetcher:   fetch.New(cfg.APIURL, logger),
		store:     store,
		engine:    diff.New(store, logger),
		sender:    email.NewSender(buildProvider(ctx, cfg, logger), cfg.Email.To, logger),
		logger:    logger,
		checkOnly: checkOnly,
	}, cleanup, nil
}

// buildProvider selects the delivery transport. Missing configuration is a
// deliberate skip, not an error: the run still fetches, diffs, and updates
// state, it just cannot notify.
func buildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) email.Provider {
	switch cfg.Email.Provider {
	case "mock":
		return email.NewMockProvider(logger)
	case "gmail":
		credsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON")
		if credsJSON == "" {
			logger.Warn("GOOGLE_CREDENTIALS_JSON not configured, email disabled")
			return nil
		}
		service, err := gmail.NewService(ctx, option.WithCredentialsJSON([]byte(credsJSON)))
		if err != nil {
			logger.Warn("Failed to initialize Gmail service, email disabled", "error", err)
			return nil
		}
		return email.NewGmailProvider(service, logger)
	case "mailersend":
		if cfg.Email.APIKey == "" {
			logger.Warn("MAILERSEND_API_KEY not configured, email disabled")
			return nil
		}
		if cfg.Email.FromEmail == "" {
			logger.Warn("EMAIL_FROM_EMAIL not configured, email disabled")
			return nil
		}
		return email.NewMailerSendProvider(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName, logger)
	default:
		logger.Warn("Unknown email provider, email disabled", "provider", cfg.Email.Provider)
		return nil
	}
}

// run executes one fetch, diff, report, notify cycle. Fetch and state-save
// failures are fatal to the run; delivery failures are not, because state
// has already been persisted by then.
func (a *app) run(ctx context.Context) error {
	start := time.Now()
	firstRun := !a.store.Exists(ctx)

	a.logger.Info("Fetching YSWS catalog")
	cat, err := a.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	a.logger.Info("Catalog fetched", "events", cat.Total())

	results, err := a.engine.Check(ctx, cat)
	if err != nil {
		return err
	}

	totalNew := catalog.TotalNew(results)
	if firstRun && totalNew > 0 {
		a.logger.Info("First run, events cataloged", "count", totalNew)
	}

	fmt.Print(report.Render(results, cat.Total()))

	switch {
	case a.checkOnly:
		a.logger.Info("Check-only mode, skipping email")
	case totalNew > 0:
		if _, err := a.sender.Notify(ctx, results); err != nil {
			a.logger.Warn("Digest delivery failed", "error", err)
		}
	}

	a.logger.Info("Run completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"new", totalNew,
		"tracked", cat.Total())

	return nil
}
