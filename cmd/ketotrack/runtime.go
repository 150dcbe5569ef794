package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ketotrack/internal/adapter/boltdb"
	"ketotrack/internal/adapter/memory"
	"ketotrack/internal/adapter/postgres"
	"ketotrack/internal/app"
	"ketotrack/internal/config"
	"ketotrack/internal/domain"
	"ketotrack/internal/identity"
	"ketotrack/internal/logging"
)

type remoteStore interface {
	domain.RemoteStore
	domain.AccountRepository
}

// runtime is the fully wired application for one command invocation.
type runtime struct {
	cfg      *config.Config
	local    domain.LocalStore
	remote   remoteStore
	ident    *identity.Provider
	state    *app.SyncState
	migrator *app.Migrator
	policy   *app.SyncPolicy
	repo     *app.Repository
	phases   *app.PhaseEngine
	charts   *app.ChartsService
	settings *app.Settings
	auth     *app.AuthService
	coord    *app.Coordinator

	stopCoord func()
	closers   []io.Closer
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, JSONOutput: cfg.Log.JSON})
	log := logging.WithComponent("main")

	rt := &runtime{cfg: cfg, ident: identity.NewProvider()}

	if ephemeral {
		rt.local = memory.NewKV(cfg.LocalQuotaBytes)
	} else {
		store, err := boltdb.Open(cfg.DataDir, cfg.LocalQuotaBytes)
		if err != nil {
			return nil, err
		}
		rt.local = store
		rt.closers = append(rt.closers, store)
	}

	if cfg.DatabaseURL != "" && !ephemeral {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("open remote database: %w", err)
		}
		rt.remote = db
		rt.closers = append(rt.closers, db)
	} else {
		log.Info().Msg("no database configured, using in-memory remote store")
		rt.remote = memory.New()
	}

	stores := app.Stores{Local: rt.local, Remote: rt.remote, Identity: rt.ident}
	rt.state = app.NewSyncState(rt.local)
	rt.migrator = app.NewMigrator(stores, rt.state, app.MigratorOptions{
		Parallelism: cfg.MigrationParallelism,
		Timeout:     cfg.RemoteTimeout,
	})
	rt.policy = app.NewSyncPolicy(rt.ident, rt.state, rt.migrator)
	rt.repo = app.NewRepository(stores, rt.policy, rt.state, rt.migrator, cfg.RemoteTimeout)
	rt.phases = app.NewPhaseEngine(rt.repo)
	rt.charts = app.NewChartsService(rt.repo)
	rt.settings = app.NewSettings(rt.local)
	rt.auth = app.NewAuthService(rt.remote, rt.ident)
	rt.coord = app.NewCoordinator(rt.ident, rt.local, rt.policy, rt.migrator)

	// Restored before the coordinator listens so it does not re-run sign-in work.
	if uid, ok := rt.coord.RestoreSession(ctx); ok {
		rt.ident.SignIn(uid)
		log.Debug().Str("uid", uid).Msg("restored session")
	}
	rt.stopCoord = rt.coord.Start(ctx)
	return rt, nil
}

func (rt *runtime) close() {
	if rt.stopCoord != nil {
		rt.stopCoord()
	}
	if rt.migrator != nil {
		rt.migrator.Close()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

// waitMigration handles pending identity events, then blocks until the
// migration started by the last sign-in finishes or timeout passes.
func (rt *runtime) waitMigration(ctx context.Context, timeout time.Duration) error {
	if rt.stopCoord != nil {
		rt.stopCoord()
		rt.stopCoord = nil
	}
	task := rt.coord.LastMigration()
	if task == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return task.Wait(ctx)
}

func withRuntime(fn func(cmd *cobra.Command, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(cmd, rt, args)
	}
}
