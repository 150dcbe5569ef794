package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ketotrack/internal/domain"
)

func TestProfilePatchOmitsZeroFields(t *testing.T) {
	patch := profilePatch(domain.UserProfile{CurrentPhase: 3, PhaseStartDate: "2026-02-01"})
	assert.Equal(t, map[string]any{"currentPhase": 3, "phaseStartDate": "2026-02-01"}, patch)
}

// openTestDB connects to KETOTRACK_TEST_DATABASE_URL or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	connStr := os.Getenv("KETOTRACK_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("KETOTRACK_TEST_DATABASE_URL not set")
	}
	db, err := Open(context.Background(), connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDocumentsIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uid := "it-" + t.Name()
	_, _ = db.sql.ExecContext(ctx, "DELETE FROM metrics WHERE uid = $1", uid)
	_, _ = db.sql.ExecContext(ctx, "DELETE FROM profiles WHERE uid = $1", uid)

	_, err := db.GetProfile(ctx, uid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.PutProfile(ctx, uid, domain.UserProfile{StartDate: "2026-01-01", CurrentPhase: 1, PhaseStartDate: "2026-01-01", TargetRatio: 80}))
	require.NoError(t, db.PutProfile(ctx, uid, domain.UserProfile{CurrentPhase: 2}))
	p, err := db.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentPhase)
	assert.Equal(t, "2026-01-01", p.StartDate)

	g1, g2 := 5.0, 4.0
	require.NoError(t, db.PutMetric(ctx, uid, domain.DailyMetric{Date: "2026-01-01", Glucose: &g1}))
	require.NoError(t, db.PutMetric(ctx, uid, domain.DailyMetric{Date: "2026-01-02"}))
	require.NoError(t, db.PutMetric(ctx, uid, domain.DailyMetric{Date: "2026-01-01", Glucose: &g2}))

	list, err := db.ListMetrics(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-01-02", list[0].Date)
	assert.Equal(t, 4.0, *list[1].Glucose)
}
