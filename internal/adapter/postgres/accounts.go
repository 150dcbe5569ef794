package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"ketotrack/internal/domain"
)

const uniqueViolation = "23505"

// GetByEmail retrieves an account by email.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1",
		strings.ToLower(email),
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account.
func (d *DB) Create(ctx context.Context, a domain.Account) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		a.ID, strings.ToLower(a.Email), a.PasswordHash, createdAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAccountExists
	}
	return err
}
