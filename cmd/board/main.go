// recruiting-board — terminal kanban for the hiring pipeline
//
// Candidates sit in stage columns (Registrado → Convocado → Capacitación
// Teórica → Capacitación Práctica → Contratado). Cards are selected, picked
// up and dropped on a column; the move is validated locally and committed
// through the recruiting backend:
//   - single and bulk stage updates, with the gating forms they need
//   - attendance quick-check and candidate process history
//   - bulk WhatsApp messaging and its send history
//   - per-column Excel export
//
// The board itself is read from PostgreSQL. Committed moves are published on
// Redis so other open boards reload.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jobmate/recruiting-board/internal/config"
	"jobmate/recruiting-board/internal/db"
	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/logging"
	"jobmate/recruiting-board/internal/scheduler"
	"jobmate/recruiting-board/internal/tui"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[recruiting-board] Config error: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[recruiting-board] Logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.WithField("version", version).Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("board exited with error")
		fmt.Fprintf(os.Stderr, "[recruiting-board] %v\n", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.Database.URL)
	if err != nil {
		return errors.Wrap(err, "postgres")
	}
	defer pool.Close()
	logger.Info("postgres connected")

	// ── Redis (optional) ─────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, change feed disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info("redis connected")
	}

	// ── Backend client ───────────────────────────────────────────────────────
	client, err := gateway.New(gateway.Options{
		BaseURL:   cfg.Server.BaseURL,
		CSRFToken: cfg.Server.CSRFToken,
		SessionID: cfg.Server.SessionID,
		Paths:     cfg.GatewayPaths(),
		Timeout:   cfg.Server.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return errors.Wrap(err, "backend client")
	}

	// ── Board ────────────────────────────────────────────────────────────────
	store := kanban.NewStore(pool, logger)
	feed := kanban.NewFeed(rdb, logger)
	coord := kanban.NewCoordinator(client, kanban.WithPublisher(feed), kanban.WithLogger(logger))

	app := tui.New(ctx, tui.Deps{
		Coordinator: coord,
		Source:      store,
		Backend:     client,
		ExportDir:   cfg.Export.Dir,
		Logger:      logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// ── Background jobs ──────────────────────────────────────────────────────
	sched := scheduler.New(logger,
		scheduler.Job{Name: "board-refresh", Spec: cfg.Schedule.Refresh, Run: func(context.Context) error {
			p.Send(tui.RefreshRequested{})
			return nil
		}},
		scheduler.Job{Name: "messaging-tasks", Spec: cfg.Schedule.Tasks, Run: func(ctx context.Context) error {
			tasks, err := client.MessagingTasks(ctx)
			p.Send(tui.TasksLoaded{Tasks: tasks, Err: err})
			return err
		}},
	)
	if err := sched.Start(ctx); err != nil {
		return errors.Wrap(err, "scheduler")
	}
	defer func() {
		cancel()
		sched.Stop()
	}()

	go func() {
		err := feed.Listen(ctx, func(ev kanban.MoveEvent) {
			p.Send(tui.RemoteMove{Event: ev})
		})
		if err != nil {
			logger.WithError(err).Warn("change feed stopped")
		}
	}()

	// ── Run until quit or signal ─────────────────────────────────────────────
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "ui")
	}
	return nil
}
