package app

import (
	"context"
	"fmt"
	"time"

	"ketotrack/internal/domain"
	"ketotrack/internal/logging"
)

// ProfileSaver persists a profile. Repository implements it.
type ProfileSaver interface {
	SaveProfile(ctx context.Context, p domain.UserProfile) error
}

// PhaseEngine advances a profile through the phase table.
type PhaseEngine struct {
	profiles ProfileSaver
	now      func() time.Time
}

// NewPhaseEngine creates a PhaseEngine that saves advanced profiles to profiles.
func NewPhaseEngine(profiles ProfileSaver) *PhaseEngine {
	return &PhaseEngine{profiles: profiles, now: time.Now}
}

// SetClock overrides the wall clock used to count days in phase.
func (e *PhaseEngine) SetClock(now func() time.Time) { e.now = now }

// PhaseProgress is the display state of the current phase.
type PhaseProgress struct {
	Phase       domain.Phase `json:"phase"`
	DaysInPhase int          `json:"daysInPhase"`
	// DaysLeft is zero for the open-ended final phase.
	DaysLeft int  `json:"daysLeft"`
	Final    bool `json:"final"`
}

// daysSince counts whole calendar days from day to today.
func daysSince(day string, now time.Time) (int, error) {
	start, err := time.ParseInLocation(domain.DayLayout, day, time.Local)
	if err != nil {
		return 0, fmt.Errorf("parse phase start %q: %w", day, err)
	}
	today, _ := time.ParseInLocation(domain.DayLayout, domain.Day(now), time.Local)
	return int(today.Sub(start).Hours()+12) / 24, nil
}

// CheckAdvancement moves p to the next phase once its duration has elapsed.
// It advances at most one phase per call and saves the result; otherwise p
// is returned unchanged.
func (e *PhaseEngine) CheckAdvancement(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	phase, ok := domain.PhaseByNumber(p.CurrentPhase)
	if !ok {
		return p, fmt.Errorf("%w: unknown phase %d", ErrInvalidProfile, p.CurrentPhase)
	}
	if phase.Duration == 0 {
		return p, nil
	}
	now := e.now()
	days, err := daysSince(p.PhaseStartDate, now)
	if err != nil {
		return p, err
	}
	if days < phase.Duration {
		return p, nil
	}

	next := p
	next.CurrentPhase = min(p.CurrentPhase+1, domain.FinalPhase)
	next.PhaseStartDate = domain.Day(now)
	if err := e.profiles.SaveProfile(ctx, next); err != nil {
		return p, fmt.Errorf("save advanced profile: %w", err)
	}
	log := logging.WithComponent("phase")
	log.Info().
		Int("from", p.CurrentPhase).
		Int("to", next.CurrentPhase).
		Int("days", days).
		Msg("advanced phase")
	return next, nil
}

// Progress reports how far into its current phase p is.
func (e *PhaseEngine) Progress(p domain.UserProfile) (PhaseProgress, error) {
	phase, ok := domain.PhaseByNumber(p.CurrentPhase)
	if !ok {
		return PhaseProgress{}, fmt.Errorf("%w: unknown phase %d", ErrInvalidProfile, p.CurrentPhase)
	}
	days, err := daysSince(p.PhaseStartDate, e.now())
	if err != nil {
		return PhaseProgress{}, err
	}
	progress := PhaseProgress{Phase: phase, DaysInPhase: days, Final: phase.Duration == 0}
	if !progress.Final {
		progress.DaysLeft = max(phase.Duration-days, 0)
	}
	return progress, nil
}
