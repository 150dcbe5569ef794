package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ketotrack/internal/domain"
	"ketotrack/internal/metrics"
)

// Local store keys.
const (
	keyProfile        = "user_profile"
	keyMetrics        = "daily_metrics"
	keyCloudSync      = "use_cloud_sync"
	keyMigratedPrefix = "has_migrated_to_cloud_"
	keyTheme          = "user_theme"
	keyThemeColors    = "custom_theme_colors"
	keySessionUser    = "session_user"
)

// Stores bundles the collaborators shared by the sync components.
type Stores struct {
	Local    domain.LocalStore
	Remote   domain.RemoteStore
	Identity domain.Identity
}

func getJSON(ctx context.Context, local domain.LocalStore, key string, dst any) (bool, error) {
	raw, ok, err := local.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, local domain.LocalStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = local.Set(ctx, key, string(raw))
	metrics.StoreWrites.WithLabelValues("local", metrics.Outcome(err)).Inc()
	return err
}

// callRemote bounds fn by timeout and wraps any failure in a RemoteError.
func callRemote(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	metrics.ObserveRemote(op, start)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	return nil
}

func remoteWrite(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	err := callRemote(ctx, timeout, op, fn)
	metrics.StoreWrites.WithLabelValues("remote", metrics.Outcome(err)).Inc()
	return err
}
