package app

import (
	"context"

	"ketotrack/internal/domain"
)

// SyncState persists the cloud sync opt-in and the per-user migration
// markers in the local store. Markers are only ever set, never cleared.
type SyncState struct {
	local domain.LocalStore
}

// NewSyncState creates a SyncState backed by local.
func NewSyncState(local domain.LocalStore) *SyncState {
	return &SyncState{local: local}
}

// CloudSyncEnabled reports the persisted opt-in flag. Absent means false.
func (s *SyncState) CloudSyncEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	_, err := getJSON(ctx, s.local, keyCloudSync, &enabled)
	return enabled, err
}

// SetCloudSyncEnabled persists the opt-in flag.
func (s *SyncState) SetCloudSyncEnabled(ctx context.Context, enabled bool) error {
	return setJSON(ctx, s.local, keyCloudSync, enabled)
}

// MigrationCompleted reports whether uid's local data was fully migrated.
func (s *SyncState) MigrationCompleted(ctx context.Context, uid string) (bool, error) {
	var done bool
	_, err := getJSON(ctx, s.local, keyMigratedPrefix+uid, &done)
	return done, err
}

// MarkMigrationCompleted records a successful full migration for uid.
func (s *SyncState) MarkMigrationCompleted(ctx context.Context, uid string) error {
	return setJSON(ctx, s.local, keyMigratedPrefix+uid, true)
}
