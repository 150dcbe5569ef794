// Package app holds the application services and business logic.
package app

import (
	"errors"

	"ketotrack/internal/domain"
)

var (
	// ErrInvalidMetric wraps validation failures on a submitted metric.
	ErrInvalidMetric = errors.New("invalid metric")
	// ErrInvalidProfile wraps validation failures on a submitted profile.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail rejects sign-ups without a plausible address.
	ErrInvalidEmail = errors.New("a valid email is required")
	// ErrWeakPassword rejects passwords shorter than minPasswordLen.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrNoData is returned by exports when there is nothing to export.
	ErrNoData = errors.New("no data to export")
	// ErrEnoughData is returned when sample data would overwrite real history.
	ErrEnoughData = errors.New("enough data already logged")
)

// UserMessage turns err into text fit for an end user.
func UserMessage(err error) string {
	var partial *domain.MigrationPartialFailure
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "Storage quota exceeded. Please clear some data or sign in for cloud sync."
	case errors.Is(err, ErrInvalidMetric), errors.Is(err, ErrInvalidProfile),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword), errors.Is(err, ErrNoData),
		errors.Is(err, ErrEnoughData), errors.Is(err, domain.ErrAccountExists):
		return err.Error()
	case errors.As(err, &partial):
		return "Some data could not be synced to the cloud. It will be retried."
	default:
		return "Something went wrong. Please try again."
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
