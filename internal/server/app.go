// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/logico/fleet/internal/config"
	"codeberg.org/logico/fleet/internal/handlers"
	mw "codeberg.org/logico/fleet/internal/middleware"
	"codeberg.org/logico/fleet/internal/repository"
	authsvc "codeberg.org/logico/fleet/internal/services/auth"
	"codeberg.org/logico/fleet/internal/services/email"
	"codeberg.org/logico/fleet/internal/services/recovery"
	"codeberg.org/logico/fleet/internal/services/report"
	"codeberg.org/logico/fleet/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Options overrides collaborators of the App, mainly for tests.
type Options struct {
	// Notifier delivers recovery codes. Defaults to SMTP when configured,
	// otherwise codes are logged.
	Notifier recovery.Notifier
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// App wires the services of the fleet service.
type App struct {
	cfg *config.Config

	Repo     *repository.Repository
	Sessions *session.Manager
	Auth     *authsvc.Service
	Recovery *recovery.Manager
	Reports  *report.Engine

	limiter *mw.RateLimiter
}

// NewApp builds the services on top of db. ctx bounds background work.
func NewApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, opts Options) (*App, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	notifier := opts.Notifier
	if notifier == nil {
		var err error
		notifier, err = newNotifier(cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Session.HashKey == "" && !config.IsLocalhost(cfg.Server.Host) {
		return nil, fmt.Errorf("session hash key is required when serving on %s", cfg.Server.Host)
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.Session.Secure)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	repo := repository.New(db).WithClock(opts.Clock)

	return &App{
		cfg:      cfg,
		Repo:     repo,
		Sessions: sessions,
		Auth:     authsvc.NewService(repo, authsvc.WithBcryptCost(opts.BcryptCost)),
		Recovery: recovery.NewManager(repo, notifier,
			recovery.WithTTL(cfg.Recovery.CodeTTL),
			recovery.WithClock(opts.Clock),
			recovery.WithBcryptCost(opts.BcryptCost),
		),
		Reports: report.NewEngine(repo, cfg.Report.Location()).WithClock(opts.Clock),
		limiter: mw.NewRateLimiter(ctx, rate.Limit(cfg.Recovery.RequestRate), cfg.Recovery.RequestBurst),
	}, nil
}

func newNotifier(cfg *config.Config) (recovery.Notifier, error) {
	if !cfg.SMTP.Enabled() {
		slog.Warn("smtp not configured, recovery codes are written to the log")
		return email.LogSender{Logger: slog.Default()}, nil
	}
	svc, err := email.NewService(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}
	return svc, nil
}

// Echo returns the configured HTTP handler.
func (a *App) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	a.setupMiddleware(e)
	a.setupRoutes(e)
	return e
}
