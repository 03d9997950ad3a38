package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/clawteam/internal/config"
	"github.com/Iron-Ham/clawteam/internal/coordinator"
	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/event"
	"github.com/Iron-Ham/clawteam/internal/logging"
	"github.com/Iron-Ham/clawteam/internal/notify"
	"github.com/Iron-Ham/clawteam/internal/store"
	"github.com/Iron-Ham/clawteam/internal/team"
)

// app is everything one command invocation needs. It is built per command
// and closed before the process exits.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	coord  *coordinator.Coordinator

	closers []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewValidationError("config", nil, err.Error())
	}

	a := &app{cfg: cfg}
	root := cfg.ResolveTeamsDir()

	logDir := ""
	if cfg.Logging.File {
		logDir = root
	}
	logger, err := logging.NewLogger(logDir, logging.ParseLevel(cfg.Logging.Level), logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, errors.IOFailure(err, "open log")
	}
	a.logger = logger.WithCommand(cmd.Name())
	a.closers = append(a.closers, logger.Close)

	backend, err := a.openBackend(root)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	st := store.New(backend, store.NewFlockLocker(root, cfg.Store.LockTimeout()), a.logger)
	bus := event.NewBus(a.logger)

	if cfg.Notify.RedisAddr != "" {
		pub, err := notify.NewRedisPublisher(notify.RedisConfig{
			Addr:     cfg.Notify.RedisAddr,
			Password: cfg.Notify.RedisPassword,
			DB:       cfg.Notify.RedisDB,
		})
		if err != nil {
			// Notification is best effort; the command still runs.
			a.logger.Warn("event notifications disabled", "error", err.Error())
		} else {
			id := notify.NewNotifier(pub, cfg.Notify.ChannelPrefix, a.logger).Attach(bus)
			a.closers = append(a.closers, pub.Close, func() error {
				bus.Unsubscribe(id)
				return nil
			})
		}
	}

	a.coord, err = coordinator.New(coordinator.Config{
		Store: st,
		Bus:   bus,
		Defaults: team.Defaults{
			Agents: cfg.Team.DefaultAgents,
			Lead:   cfg.Team.DefaultLead,
		},
	}, coordinator.WithLogger(a.logger))
	if err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openBackend(root string) (store.Backend, error) {
	switch a.cfg.Store.Backend {
	case "sqlite":
		db, err := store.OpenSQLite(a.cfg.ResolveSQLitePath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case "file", "":
		return store.NewFileBackend(afero.NewOsFs(), root), nil
	default:
		return nil, errors.NewValidationError("store.backend", a.cfg.Store.Backend, "unknown backend")
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// errCommandFailed is returned after a failure envelope has been printed so
// that main exits non-zero without printing the error again.
var errCommandFailed = errors.New("command failed")

// runFunc is the body of a command: it returns the envelope data.
type runFunc func(ctx context.Context, a *app) (any, error)

// run builds the app, runs fn and prints the envelope.
func run(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format := outputFormat()

		a, err := newApp(cmd)
		if err != nil {
			return finish(cmd, format, nil, err)
		}
		defer func() {
			if cerr := a.close(); cerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", cerr)
			}
		}()

		data, err := fn(cmd.Context(), a)
		if err != nil {
			if errors.GetSeverity(err) >= errors.SeverityError {
				a.logger.Error("command failed", "kind", errors.KindOf(err).String(), "error", err.Error())
			} else {
				a.logger.Warn("command failed", "kind", errors.KindOf(err).String(), "error", err.Error())
			}
		}
		return finish(cmd, format, data, err)
	}
}

func finish(cmd *cobra.Command, format string, data any, err error) error {
	result := coordinator.Envelope(data, err)
	if perr := printResult(cmd.OutOrStdout(), format, result); perr != nil {
		return perr
	}
	if !result.OK {
		return errCommandFailed
	}
	return nil
}

// IsReported reports whether err was already printed as a failure envelope.
func IsReported(err error) bool {
	return errors.Is(err, errCommandFailed)
}
