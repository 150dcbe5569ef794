package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ketotrack/internal/domain"
	"ketotrack/internal/logging"
	"ketotrack/internal/metrics"
)

// MigratorOptions tunes the migration engine.
type MigratorOptions struct {
	// Parallelism caps concurrent metric writes. Defaults to 4.
	Parallelism int
	// Timeout bounds each remote call. Zero means no extra bound.
	Timeout time.Duration
}

// Migrator copies local data into the remote store once per user.
type Migrator struct {
	stores      Stores
	state       *SyncState
	parallelism int
	timeout     time.Duration
	log         zerolog.Logger

	group singleflight.Group

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewMigrator creates a Migrator. Call Close to stop background tasks.
func NewMigrator(stores Stores, state *SyncState, opts MigratorOptions) *Migrator {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	base, stop := context.WithCancel(context.Background())
	return &Migrator{
		stores:      stores,
		state:       state,
		parallelism: opts.Parallelism,
		timeout:     opts.Timeout,
		log:         logging.WithComponent("migration"),
		base:        base,
		stop:        stop,
	}
}

// Migrate runs one migration pass for the current user. Concurrent calls for
// the same user share a single pass. It returns a
// *domain.MigrationPartialFailure when some metric writes failed; the
// completion marker is then left unset so a later call retries.
func (m *Migrator) Migrate(ctx context.Context) error {
	uid, ok := m.stores.Identity.CurrentUser()
	if !ok {
		m.log.Debug().Msg("no user signed in, skipping migration")
		return nil
	}
	_, err, _ := m.group.Do(uid, func() (any, error) {
		return nil, m.migrate(ctx, uid)
	})
	return err
}

func (m *Migrator) migrate(ctx context.Context, uid string) error {
	done, err := m.state.MigrationCompleted(ctx, uid)
	if err != nil {
		metrics.Migrations.WithLabelValues("failed").Inc()
		return fmt.Errorf("read migration marker: %w", err)
	}
	if done {
		m.log.Debug().Str("uid", uid).Msg("data already migrated to cloud")
		metrics.Migrations.WithLabelValues("skipped").Inc()
		return nil
	}

	log := m.log.With().Str("uid", uid).Str("run_id", uuid.NewString()).Logger()
	log.Info().Msg("starting migration of local data to cloud")

	if err := m.migrateProfile(ctx, uid); err != nil {
		metrics.Migrations.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("profile migration failed")
		return err
	}

	var list []domain.DailyMetric
	if _, err := getJSON(ctx, m.stores.Local, keyMetrics, &list); err != nil {
		metrics.Migrations.WithLabelValues("failed").Inc()
		return fmt.Errorf("read local metrics: %w", err)
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)
	for _, metric := range list {
		metric := metric
		g.Go(func() error {
			err := remoteWrite(gctx, m.timeout, "put_metric", func(ctx context.Context) error {
				return m.stores.Remote.PutMetric(ctx, uid, metric)
			})
			if err != nil {
				log.Warn().Err(err).Str("date", metric.Date).Msg("metric migration failed")
				mu.Lock()
				failed = append(failed, metric.Date)
				mu.Unlock()
				return nil
			}
			metrics.MigratedDocuments.Inc()
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		sort.Strings(failed)
		metrics.Migrations.WithLabelValues("partial").Inc()
		return &domain.MigrationPartialFailure{UID: uid, Failed: failed, Total: len(list)}
	}

	if err := m.state.MarkMigrationCompleted(ctx, uid); err != nil {
		metrics.Migrations.WithLabelValues("failed").Inc()
		return fmt.Errorf("set migration marker: %w", err)
	}
	metrics.Migrations.WithLabelValues("completed").Inc()
	log.Info().Int("metrics", len(list)).Msg("migration complete")
	return nil
}

func (m *Migrator) migrateProfile(ctx context.Context, uid string) error {
	var profile domain.UserProfile
	found, err := getJSON(ctx, m.stores.Local, keyProfile, &profile)
	if err != nil {
		return fmt.Errorf("read local profile: %w", err)
	}
	if !found {
		return nil
	}
	return remoteWrite(ctx, m.timeout, "put_profile", func(ctx context.Context) error {
		return m.stores.Remote.PutProfile(ctx, uid, profile)
	})
}

// Trigger runs a manual migration pass inline and reports its result.
func (m *Migrator) Trigger(ctx context.Context) error {
	m.log.Info().Msg("manual migration requested")
	return m.Migrate(ctx)
}

// Start runs Migrate in the background. The task outlives ctx's
// cancellation but stops on Cancel or Close. Errors are logged and
// reported only through the task.
func (m *Migrator) Start(ctx context.Context) *MigrationTask {
	taskCtx, cancel := context.WithCancel(m.base)
	t := &MigrationTask{done: make(chan struct{}), cancel: cancel}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(t.done)
		defer cancel()
		t.err = m.Migrate(taskCtx)
		if t.err != nil {
			m.log.Error().Err(t.err).Msg("background migration failed")
		}
	}()
	return t
}

// Wait blocks until every background task has finished.
func (m *Migrator) Wait() {
	m.wg.Wait()
}

// Close cancels background tasks and waits for them to exit.
func (m *Migrator) Close() {
	m.stop()
	m.wg.Wait()
}

// MigrationTask is a handle on a background migration pass.
type MigrationTask struct {
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

// Done is closed when the pass finishes.
func (t *MigrationTask) Done() <-chan struct{} { return t.done }

// Err returns the pass result. It is only meaningful after Done is closed.
func (t *MigrationTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the pass finishes or ctx ends.
func (t *MigrationTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the pass. Writes already made stay in the remote store.
func (t *MigrationTask) Cancel() { t.cancel() }
