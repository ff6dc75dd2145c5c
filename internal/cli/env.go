package cli

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/roach88/ordinal/internal/config"
	"github.com/roach88/ordinal/internal/engine"
	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
)

// env is what a store-backed command runs with.
type env struct {
	cfg    config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
	out    *OutputFormatter
	ids    engine.IDGenerator
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if opts.Driver != "" {
		dialect, err := store.ParseDialect(opts.Driver)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Driver = string(dialect)
	}
	if opts.DB != "" {
		cfg.DSN = opts.DB
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the text logger on stderr. --verbose forces debug.
func newLogger(opts *RootOptions, cfg config.Config, cmd *cobra.Command) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// openStore opens the configured store and applies the schema.
func openStore(cfg config.Config) (*store.Store, error) {
	timeout := store.WithLockTimeout(cfg.LockTimeout.Std())
	if cfg.Driver == string(store.DialectPostgres) {
		return store.OpenPostgres(cfg.DSN, timeout)
	}
	return store.Open(cfg.DSN, timeout)
}

// openEnv loads configuration, opens the store and builds the engine.
// The caller must call close.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(opts, cfg, cmd)
	logger.Debug("opening store", "driver", cfg.Driver, "lock_timeout", cfg.LockTimeout.Std())

	st, err := openStore(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ids := opts.IDGenerator
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}

	return &env{
		cfg:    cfg,
		store:  st,
		engine: engine.New(st, engine.WithLogger(logger)),
		logger: logger,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
		ids:    ids,
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// mutate runs fn, retrying with exponential backoff while it fails with a
// conflict. Any other error stops immediately. The final error is wrapped
// as a command error.
func (e *env) mutate(ctx context.Context, what string, fn func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(e.cfg.Retry.Attempts-1), retry.NewExponential(e.cfg.Retry.Base.Std()))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if order.IsConflict(err) {
			e.logger.Warn("retrying after conflict", "op", what, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return WrapExitError(ExitCommandError, what+" failed", err)
	}
	return nil
}

// fail wraps a read error as a command error.
func fail(what string, err error) error {
	return WrapExitError(ExitCommandError, what+" failed", err)
}
