// Package app wires the post composer into the Telegram bot runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/postbot/core/bootstrap"
	"github.com/m3rciful/postbot/core/cmd"
	coredatabase "github.com/m3rciful/postbot/core/database"
	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/middleware"
	"github.com/m3rciful/postbot/core/telegram/router"
	"github.com/m3rciful/postbot/core/telegram/state"
	"github.com/m3rciful/postbot/internal/config"
	"github.com/m3rciful/postbot/internal/journal"
	"github.com/m3rciful/postbot/internal/post"
)

// App is the post composer bot.
type App struct {
	cfg *config.Config

	registry  *tg.Registry
	drafts    state.Store[*post.Draft]
	composer  *post.Composer
	publisher *ChannelPublisher
	journal   *journal.Store
	janitor   *state.Janitor
	db        *sqlx.DB

	api atomic.Pointer[senderBox]
}

// Bootstrap initializes shared infrastructure and builds the App. It is the
// Bootstrap hook of cmd.Run.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	var dbCfg *coredatabase.Config
	if cfg.JournalEnabled() {
		dbCfg = &cfg.Database
	}
	res, err := bootstrap.Run(context.Background(), bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: dbCfg,
	})
	if err != nil {
		return nil, err
	}

	a, err := New(cfg, res.DB)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	return a, nil
}

// New assembles the App. db may be nil, which disables the publication journal.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	a := &App{
		cfg:       cfg,
		registry:  tg.NewRegistry(),
		drafts:    state.NewMemoryStore[*post.Draft](),
		publisher: NewChannelPublisher(cfg.Channel.ID),
		db:        db,
	}

	opts := post.Options{
		Store:       a.drafts,
		Publisher:   a.publisher,
		Destination: a.publisher.Destination(),
	}
	if db != nil {
		a.journal = journal.NewStore(db)
		opts.Recorder = a.journal
	}
	composer, err := post.NewComposer(opts)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.composer = composer

	if cfg.Drafts.IdleTTL > 0 {
		j, err := state.NewJanitor(a.drafts, state.JanitorOptions{
			Idle:     cfg.Drafts.IdleTTL,
			Interval: cfg.Drafts.SweepInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.janitor = j
	}

	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

// Bind attaches the bot used for both replies and channel posts.
func (a *App) Bind(s Sender) {
	a.api.Store(&senderBox{s: s})
	a.publisher.Bind(s)
}

func (a *App) sender() Sender {
	if box := a.api.Load(); box != nil {
		return box.s
	}
	return nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	admin := middleware.AdminOptions{AdminID: core.Telegram.AdminID, OnReject: a.rejectNonAdmin}

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      router.Routes(a, a.registry, a, admin),
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot == nil {
		return fmt.Errorf("app: runtime has no bot")
	}
	a.Bind(rt.Bot)
	if a.janitor != nil {
		a.janitor.Start()
	}
	logger.Info(ctx, "app", "wire",
		slog.String("status", "ok"),
		slog.String("destination", a.publisher.Destination()),
		slog.Bool("journal", a.journal != nil),
		slog.Duration("idle", a.cfg.Drafts.IdleTTL),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	if a.janitor != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		a.janitor.Stop(stopCtx)
		cancel()
	}
	pending := a.drafts.Len()
	if pending > 0 {
		logger.Warn(ctx, logger.ComponentDrafts, "drafts.discard",
			slog.String("status", "skip"),
			slog.Int("pending_count", pending),
		)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("app: close database: %w", err)
		}
	}
	return nil
}

var _ cmd.TelegramApp = (*App)(nil)
