package domain

import (
	"context"
	"time"
)

// LocalStore is the durable on-device key/value port. Values are JSON text.
type LocalStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// RemoteStore is the per-user cloud document store port.
type RemoteStore interface {
	// GetProfile returns ErrNotFound when the user has no profile document.
	GetProfile(ctx context.Context, uid string) (*UserProfile, error)
	// PutProfile upserts, merging into any existing document.
	PutProfile(ctx context.Context, uid string, p UserProfile) error
	// PutMetric upserts the document keyed by m.Date.
	PutMetric(ctx context.Context, uid string, m DailyMetric) error
	// ListMetrics returns every metric document, newest date first.
	ListMetrics(ctx context.Context, uid string) ([]DailyMetric, error)
}

// Identity reports the signed-in user, if any.
type Identity interface {
	CurrentUser() (uid string, ok bool)
}

// Account is an email/password identity held by the remote database.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository defines the port for account persistence operations.
type AccountRepository interface {
	// GetByEmail returns ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a Account) error
}
