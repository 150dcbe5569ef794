package app_test

import (
	"context"
	"testing"
	"time"

	"ketotrack/internal/app"
	"ketotrack/internal/domain"
)

type mockMetricsReader struct {
	recentFn func(ctx context.Context, days int) []domain.DailyMetric
}

func (m *mockMetricsReader) RecentMetrics(ctx context.Context, days int) []domain.DailyMetric {
	if m.recentFn != nil {
		return m.recentFn(ctx, days)
	}
	return nil
}

func TestGetDaily_BadUnit(t *testing.T) {
	svc := app.NewChartsService(&mockMetricsReader{})
	_, err := svc.GetDaily(context.Background(), 7, "stones")
	if err == nil {
		t.Fatal("expected error for bad unit")
	}
}

func TestGetDaily_FillsGaps(t *testing.T) {
	today := domain.Day(time.Now())
	reader := &mockMetricsReader{
		recentFn: func(_ context.Context, days int) []domain.DailyMetric {
			if days != 3 {
				t.Errorf("expected 3 days requested, got %d", days)
			}
			return []domain.DailyMetric{{Date: today, Glucose: f(4.5), Ketones: f(1.5), DrBozRatio: f(3), Weight: f(80)}}
		},
	}

	points, err := app.NewChartsService(reader).GetDaily(context.Background(), 3, domain.Kilograms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for _, p := range points[:2] {
		if p.Ratio != nil || p.Status != "No data" {
			t.Errorf("expected empty point, got %+v", p)
		}
	}
	last := points[2]
	if last.Day != today || last.Status != "Excellent" || last.Color != "#10b981" {
		t.Errorf("unexpected point for today: %+v", last)
	}
	if last.Weight == nil || last.Weight.Value != 80 {
		t.Errorf("expected weight 80, got %v", last.Weight)
	}
}

func TestGetDaily_ConvertUnit(t *testing.T) {
	today := domain.Day(time.Now())
	reader := &mockMetricsReader{
		recentFn: func(context.Context, int) []domain.DailyMetric {
			return []domain.DailyMetric{{Date: today, Weight: f(100)}}
		},
	}

	points, err := app.NewChartsService(reader).GetDaily(context.Background(), 1, domain.Pounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points[0].Weight == nil || points[0].Weight.Value != 220.5 || points[0].Weight.Unit != domain.Pounds {
		t.Errorf("expected 220.5 lb, got %+v", points[0].Weight)
	}
}
