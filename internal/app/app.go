// Package app wires the bot together: config, logging, storage, the chat
// adapter, the command router, the polling worker and the chat egress.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/ZakisM/general-notifier/internal/alert"
	"github.com/ZakisM/general-notifier/internal/config"
	"github.com/ZakisM/general-notifier/internal/egress"
	"github.com/ZakisM/general-notifier/internal/fetch"
	"github.com/ZakisM/general-notifier/internal/router"
	"github.com/ZakisM/general-notifier/internal/runtime/supervisor"
	"github.com/ZakisM/general-notifier/internal/storage"
	"github.com/ZakisM/general-notifier/internal/transport"
	"github.com/ZakisM/general-notifier/internal/transport/telegram"
	"github.com/ZakisM/general-notifier/internal/watch"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

const (
	// defaultQueueSize bounds the notification channel between the polling
	// worker and the chat egress. A full queue blocks the worker, which is
	// the intended backpressure.
	defaultQueueSize = 100

	updateChanSize = 64
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	repo    storage.Repository
	adapter *telegram.Adapter
	router  *router.Router
	worker  *watch.Worker
	egress  *egress.Egress

	bus chan alert.ResponseMessage
	sup *supervisor.Supervisor
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.New(loggingConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a := &App{cfgm: cfgm, logs: logs, log: log}
	if err := a.build(cfg); err != nil {
		_ = logs.Close()
		return nil, err
	}
	return a, nil
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console || !cfg.Logging.File.Enabled,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func (a *App) build(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database url is required (database.url or DATABASE_URL)")
	}

	busyTimeout, err := config.ParseDurationField("database.busy_timeout", cfg.Database.BusyTimeout)
	if err != nil {
		return err
	}
	repo, err := storage.Open(storage.Config{
		Path:        cfg.Database.URL,
		BusyTimeout: busyTimeout,
		MaxConns:    cfg.Database.MaxConns,
	}, a.log.With(logx.String("comp", "storage")))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.repo = repo

	pollTimeout, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	if err != nil {
		return err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, a.log.With(logx.String("comp", "telegram")))
	if err != nil {
		return fmt.Errorf("create telegram adapter: %w", err)
	}
	a.adapter = adapter

	fetchTimeout, err := config.ParseDurationField("watch.fetch_timeout", cfg.Watch.FetchTimeout)
	if err != nil {
		return err
	}
	fetcher, err := fetch.New(fetch.Config{
		RenderURL: cfg.Watch.RenderURL,
		Timeout:   fetchTimeout,
	})
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	queueSize := cfg.Watch.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	a.bus = make(chan alert.ResponseMessage, queueSize)

	worker, err := watch.New(watch.Config{Schedule: cfg.Watch.Schedule},
		repo, fetcher, a.bus, a.log.With(logx.String("comp", "watch")))
	if err != nil {
		return err
	}
	a.worker = worker

	a.egress = egress.New(egress.Config{RatePerSec: cfg.Watch.RatePerSec},
		adapter, a.bus, a.log.With(logx.String("comp", "egress")))

	a.router = router.New(router.Config{Prefix: cfg.Commands.Prefix},
		repo, adapter, a.log.With(logx.String("comp", "router")))

	return nil
}

// Start launches every long-running task. It returns once everything is
// running; use Done/Err to observe failures.
func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log),
		// Loss of the router, worker or egress is fatal: the host
		// supervisor is expected to restart the process.
		supervisor.WithCancelOnError(true),
	)

	updates := make(chan transport.Update, updateChanSize)
	if err := a.adapter.Start(a.sup.Context(), updates); err != nil {
		return fmt.Errorf("start telegram adapter: %w", err)
	}

	a.sup.Go("router", func(ctx context.Context) error {
		return a.router.Run(ctx, updates)
	})
	a.sup.Go("watch", a.worker.Run)
	a.sup.Go("egress", a.egress.Run)
	a.sup.Go0("config.watch", func(ctx context.Context) {
		_ = a.cfgm.Watch(ctx, a.onConfigChange)
	})

	// Best-effort readiness for systemd units; a no-op elsewhere.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	a.log.Info("general-notifier started")
	return nil
}

// onConfigChange re-applies the hot-reloadable part of the config. Only
// logging settings take effect without a restart.
func (a *App) onConfigChange(cfg *config.Config) {
	a.logs.Apply(loggingConfig(cfg))
}

// Done is closed when the app context is cancelled, either by the caller or
// by a fatal task error.
func (a *App) Done() <-chan struct{} { return a.sup.Context().Done() }

func (a *App) Err() error { return a.sup.Err() }

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.adapter != nil {
		_ = a.adapter.Stop(ctx)
	}
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}
