package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks an absent profile, metric or account.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded is returned when the local store rejects a value for size.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrAccountExists is returned when signing up with a taken email.
	ErrAccountExists = errors.New("account already exists")
)

// RemoteError wraps any failure talking to the remote store, timeouts
// included. Callers recover from it by falling back to the local store.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// MigrationPartialFailure reports per-date writes that failed during a
// migration pass. The completion marker is left unset so the pass retries.
type MigrationPartialFailure struct {
	UID    string
	Failed []string
	Total  int
}

func (e *MigrationPartialFailure) Error() string {
	return fmt.Sprintf("migration for %s: %d of %d metrics failed (%s)",
		e.UID, len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}
