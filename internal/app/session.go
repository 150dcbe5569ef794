package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"ketotrack/internal/domain"
	"ketotrack/internal/identity"
	"ketotrack/internal/logging"
)

// EventSource publishes authentication state changes.
type EventSource interface {
	Subscribe() identity.Subscriber
	Unsubscribe(sub identity.Subscriber)
}

// Coordinator turns identity events into sync state changes: signing in
// enables cloud sync and migrates local data, signing out disables it.
type Coordinator struct {
	events   EventSource
	local    domain.LocalStore
	policy   *SyncPolicy
	migrator *Migrator
	log      zerolog.Logger

	mu   sync.Mutex
	last *MigrationTask
}

// NewCoordinator creates a Coordinator. Call Start to begin listening.
func NewCoordinator(events EventSource, local domain.LocalStore, policy *SyncPolicy, migrator *Migrator) *Coordinator {
	return &Coordinator{
		events:   events,
		local:    local,
		policy:   policy,
		migrator: migrator,
		log:      logging.WithComponent("session"),
	}
}

// Start subscribes to identity events and handles them until the returned
// stop function is called. Events published before stop are still handled.
func (c *Coordinator) Start(ctx context.Context) (stop func()) {
	sub := c.events.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			c.Handle(ctx, ev)
		}
	}()
	return func() {
		c.events.Unsubscribe(sub)
		<-done
	}
}

// Handle applies one identity event. For sign-ins it returns the migration
// task that was started.
func (c *Coordinator) Handle(ctx context.Context, ev identity.Event) *MigrationTask {
	log := c.log.With().Str("uid", ev.UID).Str("event", string(ev.Type)).Logger()

	switch ev.Type {
	case identity.EventSignedIn:
		if err := setJSON(ctx, c.local, keySessionUser, ev.UID); err != nil {
			log.Warn().Err(err).Msg("persist session")
		}
		task, err := c.policy.SetCloudSync(ctx, true)
		if err != nil {
			log.Error().Err(err).Msg("enable cloud sync")
		}
		if task == nil && c.migrator != nil {
			// Sync was already on; a pending or partial migration still needs a pass.
			task = c.migrator.Start(ctx)
		}
		c.mu.Lock()
		c.last = task
		c.mu.Unlock()
		log.Info().Msg("signed in, cloud sync enabled")
		return task

	case identity.EventSignedOut:
		if err := setJSON(ctx, c.local, keySessionUser, ""); err != nil {
			log.Warn().Err(err).Msg("clear session")
		}
		if _, err := c.policy.SetCloudSync(ctx, false); err != nil {
			log.Error().Err(err).Msg("disable cloud sync")
		}
		log.Info().Msg("signed out, cloud sync disabled")
	}
	return nil
}

// LastMigration returns the task started by the most recent sign-in.
func (c *Coordinator) LastMigration() *MigrationTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// RestoreSession returns the user persisted by the last sign-in, if any.
func (c *Coordinator) RestoreSession(ctx context.Context) (string, bool) {
	var uid string
	found, err := getJSON(ctx, c.local, keySessionUser, &uid)
	if err != nil {
		c.log.Warn().Err(err).Msg("read session")
		return "", false
	}
	return uid, found && uid != ""
}
