package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ketotrack/internal/domain"
	"ketotrack/internal/logging"
	"ketotrack/internal/metrics"
)

// Repository reads and writes metrics and the profile, routing each call
// to the local store, the remote store or both according to the sync policy.
type Repository struct {
	stores   Stores
	policy   *SyncPolicy
	state    *SyncState
	migrator *Migrator
	timeout  time.Duration
	log      zerolog.Logger

	now func() time.Time
}

// NewRepository creates a Repository. timeout bounds each remote call.
func NewRepository(stores Stores, policy *SyncPolicy, state *SyncState, migrator *Migrator, timeout time.Duration) *Repository {
	return &Repository{
		stores:   stores,
		policy:   policy,
		state:    state,
		migrator: migrator,
		timeout:  timeout,
		log:      logging.WithComponent("repository"),
		now:      time.Now,
	}
}

// SetClock overrides the wall clock used for default dates.
func (r *Repository) SetClock(now func() time.Time) { r.now = now }

func (r *Repository) localMetrics(ctx context.Context) domain.Result[[]domain.DailyMetric] {
	var list []domain.DailyMetric
	found, err := getJSON(ctx, r.stores.Local, keyMetrics, &list)
	switch {
	case err != nil:
		return domain.FailedOf[[]domain.DailyMetric](err)
	case !found || len(list) == 0:
		return domain.EmptyOf[[]domain.DailyMetric]()
	}
	return domain.HitOf(list)
}

func (r *Repository) remoteMetrics(ctx context.Context, uid string) domain.Result[[]domain.DailyMetric] {
	var list []domain.DailyMetric
	err := callRemote(ctx, r.timeout, "list_metrics", func(ctx context.Context) error {
		var err error
		list, err = r.stores.Remote.ListMetrics(ctx, uid)
		return err
	})
	switch {
	case err != nil:
		return domain.FailedOf[[]domain.DailyMetric](err)
	case len(list) == 0:
		return domain.EmptyOf[[]domain.DailyMetric]()
	}
	return domain.HitOf(list)
}

func (r *Repository) localOrEmpty(ctx context.Context) []domain.DailyMetric {
	res := r.localMetrics(ctx)
	if res.Kind == domain.Failed {
		r.log.Warn().Err(res.Err).Msg("read local metrics")
	}
	if res.Kind != domain.Hit {
		return []domain.DailyMetric{}
	}
	return res.Data
}

func (r *Repository) cacheMetrics(ctx context.Context, list []domain.DailyMetric) {
	if err := setJSON(ctx, r.stores.Local, keyMetrics, list); err != nil {
		r.log.Warn().Err(err).Msg("cache metrics locally")
	}
}

// DailyMetrics returns all metrics newest first. It never fails: remote
// errors fall back to the local list and local errors read as empty.
func (r *Repository) DailyMetrics(ctx context.Context) []domain.DailyMetric {
	if !r.policy.ShouldUseCloud(ctx) {
		return r.localOrEmpty(ctx)
	}
	uid, _ := r.stores.Identity.CurrentUser()

	remote := r.remoteMetrics(ctx, uid)
	switch remote.Kind {
	case domain.Hit:
		r.cacheMetrics(ctx, remote.Data)
		return remote.Data
	case domain.Failed:
		r.log.Warn().Err(remote.Err).Str("uid", uid).Msg("cloud read failed, using local metrics")
		metrics.CloudFallbacks.WithLabelValues("list_metrics").Inc()
		return r.localOrEmpty(ctx)
	}

	// Remote is empty. Local data that was never migrated gets pushed now.
	done, err := r.state.MigrationCompleted(ctx, uid)
	if err != nil {
		r.log.Warn().Err(err).Msg("read migration marker")
	}
	if done {
		return []domain.DailyMetric{}
	}
	local := r.localMetrics(ctx)
	if local.Kind != domain.Hit {
		return []domain.DailyMetric{}
	}
	if r.migrator != nil {
		if err := r.migrator.Migrate(ctx); err != nil {
			r.log.Warn().Err(err).Str("uid", uid).Msg("inline migration failed")
		}
	}
	again := r.remoteMetrics(ctx, uid)
	if again.Kind == domain.Hit {
		r.cacheMetrics(ctx, again.Data)
		return again.Data
	}
	return local.Data
}

// SaveDailyMetric stores m, replacing any entry for the same date, and
// returns the updated list newest first. A missing date means today. With
// cloud sync on, the remote write comes first and the local copy is a
// cache; if the remote write fails the metric is kept locally. An error is
// returned only when no store accepted the write.
func (r *Repository) SaveDailyMetric(ctx context.Context, m domain.DailyMetric) ([]domain.DailyMetric, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetric, err)
	}
	if m.Date == "" {
		m.Date = domain.Day(r.now())
	}
	m.DrBozRatio = domain.Ratio(m.Glucose, m.Ketones)

	local := r.localMetrics(ctx)
	if local.Kind == domain.Failed {
		return nil, fmt.Errorf("read local metrics: %w", local.Err)
	}
	list := domain.ReplaceByDate(local.Data, m)

	if r.policy.ShouldUseCloud(ctx) {
		uid, _ := r.stores.Identity.CurrentUser()
		err := remoteWrite(ctx, r.timeout, "put_metric", func(ctx context.Context) error {
			return r.stores.Remote.PutMetric(ctx, uid, m)
		})
		if err == nil {
			r.cacheMetrics(ctx, list)
			return list, nil
		}
		r.log.Warn().Err(err).Str("date", m.Date).Msg("cloud write failed, saving locally")
		metrics.CloudFallbacks.WithLabelValues("put_metric").Inc()
	}

	if err := setJSON(ctx, r.stores.Local, keyMetrics, list); err != nil {
		return nil, fmt.Errorf("save metrics locally: %w", err)
	}
	return list, nil
}

// Profile returns the user's profile: the remote copy when cloud sync is on
// and it exists, else the local copy, else a default that is persisted
// locally so the phase clock starts once.
func (r *Repository) Profile(ctx context.Context) domain.UserProfile {
	if r.policy.ShouldUseCloud(ctx) {
		uid, _ := r.stores.Identity.CurrentUser()
		var p *domain.UserProfile
		err := callRemote(ctx, r.timeout, "get_profile", func(ctx context.Context) error {
			var err error
			p, err = r.stores.Remote.GetProfile(ctx, uid)
			return err
		})
		switch {
		case err == nil && p != nil:
			if err := setJSON(ctx, r.stores.Local, keyProfile, p); err != nil {
				r.log.Warn().Err(err).Msg("cache profile locally")
			}
			return *p
		case err != nil && !isNotFound(err):
			r.log.Warn().Err(err).Str("uid", uid).Msg("cloud profile read failed, using local profile")
			metrics.CloudFallbacks.WithLabelValues("get_profile").Inc()
		}
	}

	var p domain.UserProfile
	found, err := getJSON(ctx, r.stores.Local, keyProfile, &p)
	if err != nil {
		r.log.Warn().Err(err).Msg("read local profile")
	}
	if found {
		return p
	}
	p = domain.DefaultProfile(r.now())
	if err := setJSON(ctx, r.stores.Local, keyProfile, p); err != nil {
		r.log.Warn().Err(err).Msg("persist default profile")
	}
	return p
}

// SaveProfile stores p with the same routing as SaveDailyMetric.
func (r *Repository) SaveProfile(ctx context.Context, p domain.UserProfile) error {
	if _, ok := domain.PhaseByNumber(p.CurrentPhase); !ok {
		return fmt.Errorf("%w: phase must be between 1 and %d", ErrInvalidProfile, domain.FinalPhase)
	}
	if r.policy.ShouldUseCloud(ctx) {
		uid, _ := r.stores.Identity.CurrentUser()
		err := remoteWrite(ctx, r.timeout, "put_profile", func(ctx context.Context) error {
			return r.stores.Remote.PutProfile(ctx, uid, p)
		})
		if err == nil {
			if err := setJSON(ctx, r.stores.Local, keyProfile, p); err != nil {
				r.log.Warn().Err(err).Msg("cache profile locally")
			}
			return nil
		}
		r.log.Warn().Err(err).Msg("cloud profile write failed, saving locally")
		metrics.CloudFallbacks.WithLabelValues("put_profile").Inc()
	}
	if err := setJSON(ctx, r.stores.Local, keyProfile, p); err != nil {
		return fmt.Errorf("save profile locally: %w", err)
	}
	return nil
}

// RecentMetrics returns the metrics of the last days days, oldest first.
func (r *Repository) RecentMetrics(ctx context.Context, days int) []domain.DailyMetric {
	cutoff := domain.Day(r.now().AddDate(0, 0, -days))
	all := r.DailyMetrics(ctx)
	recent := make([]domain.DailyMetric, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Date > cutoff {
			recent = append(recent, all[i])
		}
	}
	return recent
}

// TodayMetric returns today's entry, or nil.
func (r *Repository) TodayMetric(ctx context.Context) *domain.DailyMetric {
	today := domain.Day(r.now())
	for _, m := range r.DailyMetrics(ctx) {
		if m.Date == today {
			return &m
		}
	}
	return nil
}
