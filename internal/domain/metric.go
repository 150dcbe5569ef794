// Package domain contains the core business entities and interfaces.
package domain

import (
	"errors"
	"math"
	"sort"
	"time"
)

// DayLayout is the calendar-day format used for metric and profile dates.
const DayLayout = "2006-01-02"

// RatioSentinel is reported when ketones are exactly zero.
const RatioSentinel = 999.0

// DailyMetric is one day's log entry. Date is the unique key.
type DailyMetric struct {
	Date       string   `json:"date"`
	Glucose    *float64 `json:"glucose"`
	Ketones    *float64 `json:"ketones"`
	DrBozRatio *float64 `json:"drBozRatio"`
	Weight     *float64 `json:"weight"`
	Energy     *int     `json:"energy"`
	Clarity    *int     `json:"clarity"`
}

// Validate checks the optional 1..10 scales and non-negative readings.
func (m DailyMetric) Validate() error {
	if m.Date != "" {
		if _, err := time.Parse(DayLayout, m.Date); err != nil {
			return errors.New("date must be YYYY-MM-DD")
		}
	}
	if m.Glucose != nil && *m.Glucose < 0 {
		return errors.New("glucose must be >= 0")
	}
	if m.Ketones != nil && *m.Ketones < 0 {
		return errors.New("ketones must be >= 0")
	}
	if m.Weight != nil && *m.Weight <= 0 {
		return errors.New("weight must be > 0")
	}
	if m.Energy != nil && (*m.Energy < 1 || *m.Energy > 10) {
		return errors.New("energy must be between 1 and 10")
	}
	if m.Clarity != nil && (*m.Clarity < 1 || *m.Clarity > 10) {
		return errors.New("clarity must be between 1 and 10")
	}
	return nil
}

// Ratio returns glucose/ketones rounded to one decimal. Nil when either
// reading is missing, RatioSentinel when ketones are zero.
func Ratio(glucose, ketones *float64) *float64 {
	if glucose == nil || ketones == nil {
		return nil
	}
	if *ketones == 0 {
		r := RatioSentinel
		return &r
	}
	r := math.Round(*glucose / *ketones * 10) / 10
	return &r
}

// RatioBand classifies a ratio. Status text and color are both derived from
// it so they cannot drift apart.
type RatioBand int

const (
	BandNone RatioBand = iota
	BandExcellent
	BandGood
	BandFair
	BandNeedsWork
)

// BandFor returns the band for ratio; nil maps to BandNone.
func BandFor(ratio *float64) RatioBand {
	switch {
	case ratio == nil:
		return BandNone
	case *ratio < 40:
		return BandExcellent
	case *ratio < 80:
		return BandGood
	case *ratio < 100:
		return BandFair
	default:
		return BandNeedsWork
	}
}

var bandStatus = map[RatioBand]string{
	BandNone:      "No data",
	BandExcellent: "Excellent",
	BandGood:      "Good",
	BandFair:      "Fair",
	BandNeedsWork: "Needs work",
}

var bandColor = map[RatioBand]string{
	BandNone:      "#6b7280",
	BandExcellent: "#10b981",
	BandGood:      "#f59e0b",
	BandFair:      "#ef4444",
	BandNeedsWork: "#ef4444",
}

// RatioStatus returns the human readable status for a ratio.
func RatioStatus(ratio *float64) string {
	return bandStatus[BandFor(ratio)]
}

// RatioColor returns the display color for a ratio.
func RatioColor(ratio *float64) string {
	return bandColor[BandFor(ratio)]
}

// Day formats t as a local calendar day.
func Day(t time.Time) string {
	return t.In(time.Local).Format(DayLayout)
}

// SortByDateDesc orders metrics newest first in place.
func SortByDateDesc(metrics []DailyMetric) {
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Date > metrics[j].Date
	})
}

// ReplaceByDate returns a copy of metrics with any entry for m.Date removed
// and m appended, sorted newest first.
func ReplaceByDate(metrics []DailyMetric, m DailyMetric) []DailyMetric {
	out := make([]DailyMetric, 0, len(metrics)+1)
	for _, existing := range metrics {
		if existing.Date != m.Date {
			out = append(out, existing)
		}
	}
	out = append(out, m)
	SortByDateDesc(out)
	return out
}
