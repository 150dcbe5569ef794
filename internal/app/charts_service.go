package app

import (
	"context"
	"errors"
	"time"

	"ketotrack/internal/domain"
)

// MetricsReader is the read side of Repository used by charts.
type MetricsReader interface {
	RecentMetrics(ctx context.Context, days int) []domain.DailyMetric
}

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	metrics MetricsReader
	now     func() time.Time
}

// NewChartsService creates a ChartsService backed by the given reader.
func NewChartsService(metrics MetricsReader) *ChartsService {
	return &ChartsService{metrics: metrics, now: time.Now}
}

// DayPoint is a single data point returned by GetDaily. Days without an
// entry carry only Day and Status.
type DayPoint struct {
	Day     string       `json:"day"`
	Glucose *float64     `json:"glucose"`
	Ketones *float64     `json:"ketones"`
	Ratio   *float64     `json:"drBozRatio"`
	Status  string       `json:"status"`
	Color   string       `json:"color"`
	Weight  *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a DayPoint.
type WeightPoint struct {
	Value float64           `json:"value"`
	Unit  domain.WeightUnit `json:"unit"`
}

// GetDaily returns one point per day for the last days days, oldest first,
// with weights converted to unit.
func (s *ChartsService) GetDaily(ctx context.Context, days int, unit domain.WeightUnit) ([]DayPoint, error) {
	if unit != domain.Kilograms && unit != domain.Pounds {
		return nil, errors.New("unit must be \"kg\" or \"lb\"")
	}
	if days < 1 {
		days = 1
	}
	if days > 366 {
		days = 366
	}

	byDay := make(map[string]domain.DailyMetric)
	for _, m := range s.metrics.RecentMetrics(ctx, days) {
		byDay[m.Date] = m
	}

	today := s.now()
	points := make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := domain.Day(today.AddDate(0, 0, -i))
		m, ok := byDay[day]
		if !ok {
			points = append(points, DayPoint{Day: day, Status: domain.RatioStatus(nil), Color: domain.RatioColor(nil)})
			continue
		}

		var wp *WeightPoint
		if m.Weight != nil {
			wp = &WeightPoint{Value: round1(domain.FromKilograms(*m.Weight, unit)), Unit: unit}
		}
		points = append(points, DayPoint{
			Day:     day,
			Glucose: m.Glucose,
			Ketones: m.Ketones,
			Ratio:   m.DrBozRatio,
			Status:  domain.RatioStatus(m.DrBozRatio),
			Color:   domain.RatioColor(m.DrBozRatio),
			Weight:  wp,
		})
	}
	return points, nil
}
