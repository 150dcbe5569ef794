package app

import (
	"context"

	"ketotrack/internal/domain"
	"ketotrack/internal/logging"
)

// SyncPolicy decides whether reads and writes go to the remote store.
type SyncPolicy struct {
	identity domain.Identity
	state    *SyncState
	migrator *Migrator
}

// NewSyncPolicy creates a SyncPolicy. migrator may be nil, in which case
// enabling sync never starts a migration.
func NewSyncPolicy(identity domain.Identity, state *SyncState, migrator *Migrator) *SyncPolicy {
	return &SyncPolicy{identity: identity, state: state, migrator: migrator}
}

// ShouldUseCloud is true when a user is signed in and has opted in to
// cloud sync. It never fails; any error reads as false.
func (p *SyncPolicy) ShouldUseCloud(ctx context.Context) bool {
	if p == nil || p.identity == nil || p.state == nil {
		return false
	}
	if _, ok := p.identity.CurrentUser(); !ok {
		return false
	}
	enabled, err := p.state.CloudSyncEnabled(ctx)
	if err != nil {
		log := logging.WithComponent("sync")
		log.Warn().Err(err).Msg("read cloud sync flag")
		return false
	}
	return enabled
}

// SetCloudSync persists the opt-in flag. Turning sync on when it was off
// starts a background migration and returns its task; otherwise the task
// is nil. The error only reports a failure to persist the flag.
func (p *SyncPolicy) SetCloudSync(ctx context.Context, enabled bool) (*MigrationTask, error) {
	was, err := p.state.CloudSyncEnabled(ctx)
	if err != nil {
		log := logging.WithComponent("sync")
		log.Warn().Err(err).Msg("read cloud sync flag")
		was = false
	}
	if err := p.state.SetCloudSyncEnabled(ctx, enabled); err != nil {
		return nil, err
	}
	if enabled && !was && p.migrator != nil {
		return p.migrator.Start(ctx), nil
	}
	return nil, nil
}
