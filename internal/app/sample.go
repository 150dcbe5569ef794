package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"ketotrack/internal/domain"
	"ketotrack/internal/metrics"
)

const (
	sampleDays     = 14
	sampleMaxExist = 10
)

// GenerateSampleData fills the last two weeks with plausible readings that
// improve over time. Dates that already have entries are left alone. It
// returns ErrEnoughData when enough real history exists, and the number of
// generated days otherwise.
func (r *Repository) GenerateSampleData(ctx context.Context) (int, error) {
	existing := r.DailyMetrics(ctx)
	if len(existing) >= sampleMaxExist {
		return 0, ErrEnoughData
	}
	taken := make(map[string]bool, len(existing))
	for _, m := range existing {
		taken[m.Date] = true
	}

	today := r.now()
	var generated []domain.DailyMetric
	for i := sampleDays - 1; i >= 0; i-- {
		date := domain.Day(today.AddDate(0, 0, -i))
		if taken[date] {
			continue
		}
		generated = append(generated, sampleMetric(date, i))
	}
	if len(generated) == 0 {
		return 0, nil
	}

	all := existing
	for _, m := range generated {
		all = domain.ReplaceByDate(all, m)
	}
	if err := setJSON(ctx, r.stores.Local, keyMetrics, all); err != nil {
		return 0, fmt.Errorf("save sample metrics: %w", err)
	}

	if r.policy.ShouldUseCloud(ctx) {
		uid, _ := r.stores.Identity.CurrentUser()
		for _, m := range generated {
			err := remoteWrite(ctx, r.timeout, "put_metric", func(ctx context.Context) error {
				return r.stores.Remote.PutMetric(ctx, uid, m)
			})
			if err != nil {
				r.log.Warn().Err(err).Str("date", m.Date).Msg("cloud write of sample metric failed")
				metrics.CloudFallbacks.WithLabelValues("put_metric").Inc()
			}
		}
	}
	r.log.Info().Int("days", len(generated)).Msg("generated sample data")
	return len(generated), nil
}

// sampleMetric builds the entry daysAgo days before today. Older entries
// get worse ratios.
func sampleMetric(date string, daysAgo int) domain.DailyMetric {
	var target float64
	switch {
	case daysAgo >= 10:
		target = 100 + rand.Float64()*20
	case daysAgo >= 6:
		target = 70 + rand.Float64()*20
	case daysAgo >= 2:
		target = 50 + rand.Float64()*20
	default:
		target = 30 + rand.Float64()*20
	}

	glucose := 4.0 + rand.Float64()*1.5
	ketones := glucose / target
	switch {
	case ketones < 0.3:
		ketones = 0.3 + rand.Float64()*0.2
	case ketones > 3.5:
		ketones = 2.5 + rand.Float64()
	}
	glucose = round1(glucose)
	ketones = round1(ketones)

	m := domain.DailyMetric{
		Date:    date,
		Glucose: &glucose,
		Ketones: &ketones,
	}
	m.DrBozRatio = domain.Ratio(m.Glucose, m.Ketones)
	if daysAgo%3 == 0 {
		w := round1(81.6 - float64(daysAgo)*0.1)
		m.Weight = &w
	}
	if daysAgo%2 == 0 {
		energy := 5 + (sampleDays-1-daysAgo)*3/10
		clarity := 6 + (sampleDays-1-daysAgo)/4
		m.Energy = &energy
		m.Clarity = &clarity
	}
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
