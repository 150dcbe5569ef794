package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ketotrack/internal/domain"
)

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }

func TestRatio(t *testing.T) {
	tests := []struct {
		name             string
		glucose, ketones *float64
		want             *float64
	}{
		{"typical", f(4.5), f(1.5), f(3.0)},
		{"high ratio", f(90), f(1.2), f(75.0)},
		{"rounds to one decimal", f(5.0), f(0.3), f(16.7)},
		{"zero ketones sentinel", f(5.0), f(0), f(999)},
		{"missing glucose", nil, f(1.2), nil},
		{"missing ketones", f(5.1), nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.Ratio(tc.glucose, tc.ketones)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestRatioStatusAndColorAgree(t *testing.T) {
	tests := []struct {
		ratio  *float64
		status string
		color  string
	}{
		{nil, "No data", "#6b7280"},
		{f(30), "Excellent", "#10b981"},
		{f(39.9), "Excellent", "#10b981"},
		{f(40), "Good", "#f59e0b"},
		{f(79.9), "Good", "#f59e0b"},
		{f(80), "Fair", "#ef4444"},
		{f(99.9), "Fair", "#ef4444"},
		{f(100), "Needs work", "#ef4444"},
		{f(999), "Needs work", "#ef4444"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.status, domain.RatioStatus(tc.ratio))
		assert.Equal(t, tc.color, domain.RatioColor(tc.ratio))
	}
}

func TestEndToEndExcellent(t *testing.T) {
	r := domain.Ratio(f(4.5), f(1.5))
	require.NotNil(t, r)
	assert.Equal(t, 3.0, *r)
	assert.Equal(t, "Excellent", domain.RatioStatus(r))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, domain.DailyMetric{Date: "2026-03-01", Glucose: f(4.8), Energy: n(10)}.Validate())
	assert.Error(t, domain.DailyMetric{Date: "03/01/2026"}.Validate())
	assert.Error(t, domain.DailyMetric{Energy: n(0)}.Validate())
	assert.Error(t, domain.DailyMetric{Clarity: n(11)}.Validate())
	assert.Error(t, domain.DailyMetric{Ketones: f(-1)}.Validate())
}

func TestReplaceByDate(t *testing.T) {
	list := []domain.DailyMetric{
		{Date: "2026-03-03", Glucose: f(5)},
		{Date: "2026-03-01", Glucose: f(6)},
	}
	got := domain.ReplaceByDate(list, domain.DailyMetric{Date: "2026-03-01", Glucose: f(4)})
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03-03", got[0].Date)
	assert.Equal(t, 4.0, *got[1].Glucose)

	got = domain.ReplaceByDate(got, domain.DailyMetric{Date: "2026-03-02"})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2026-03-03", "2026-03-02", "2026-03-01"},
		[]string{got[0].Date, got[1].Date, got[2].Date})
	assert.Len(t, list, 2, "input must not be modified")
}

func TestPhaseTable(t *testing.T) {
	for i, p := range domain.Phases {
		assert.Equal(t, i+1, p.Number)
	}
	final, ok := domain.PhaseByNumber(domain.FinalPhase)
	require.True(t, ok)
	assert.Zero(t, final.Duration)
	first, _ := domain.PhaseByNumber(1)
	assert.Equal(t, 7, first.Duration)
	_, ok = domain.PhaseByNumber(13)
	assert.False(t, ok)
}
