package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"ketotrack/internal/domain"
)

// GetProfile retrieves the profile document for uid.
func (d *DB) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx, "SELECT doc FROM profiles WHERE uid = $1", uid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProfile upserts the profile, merging set fields into the stored document.
func (d *DB) PutProfile(ctx context.Context, uid string, p domain.UserProfile) error {
	doc, err := json.Marshal(profilePatch(p))
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO profiles (uid, doc, updated_at) VALUES ($1, $2::jsonb, $3) "+
			"ON CONFLICT (uid) DO UPDATE SET doc = profiles.doc || EXCLUDED.doc, updated_at = EXCLUDED.updated_at;",
		uid, string(doc), time.Now().UTC(),
	)
	return err
}

// PutMetric overwrites the document for the metric's date.
func (d *DB) PutMetric(ctx context.Context, uid string, m domain.DailyMetric) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO metrics (uid, day, doc, updated_at) VALUES ($1, $2, $3::jsonb, $4) "+
			"ON CONFLICT (uid, day) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at;",
		uid, m.Date, string(doc), time.Now().UTC(),
	)
	return err
}

// ListMetrics returns all metric documents for uid, newest date first.
func (d *DB) ListMetrics(ctx context.Context, uid string) ([]domain.DailyMetric, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT doc FROM metrics WHERE uid = $1 ORDER BY day DESC;", uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.DailyMetric, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var m domain.DailyMetric
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// profilePatch drops zero fields so the JSONB merge keeps stored values.
func profilePatch(p domain.UserProfile) map[string]any {
	patch := make(map[string]any, 4)
	if p.StartDate != "" {
		patch["startDate"] = p.StartDate
	}
	if p.CurrentPhase != 0 {
		patch["currentPhase"] = p.CurrentPhase
	}
	if p.PhaseStartDate != "" {
		patch["phaseStartDate"] = p.PhaseStartDate
	}
	if p.TargetRatio != 0 {
		patch["targetDrBozRatio"] = p.TargetRatio
	}
	return patch
}
