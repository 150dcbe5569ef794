package domain

import "time"

// DefaultTargetRatio is the ratio goal assigned to new profiles.
const DefaultTargetRatio = 80

// UserProfile tracks where the user is in the phase protocol.
type UserProfile struct {
	StartDate      string  `json:"startDate"`
	CurrentPhase   int     `json:"currentPhase"`
	PhaseStartDate string  `json:"phaseStartDate"`
	TargetRatio    float64 `json:"targetDrBozRatio"`
}

// DefaultProfile returns the profile created on first access.
func DefaultProfile(now time.Time) UserProfile {
	today := Day(now)
	return UserProfile{
		StartDate:      today,
		CurrentPhase:   1,
		PhaseStartDate: today,
		TargetRatio:    DefaultTargetRatio,
	}
}
