package domain

// FinalPhase is the maintenance phase; it never advances.
const FinalPhase = 12

// Phase describes one stage of the fasting protocol. Duration is zero for
// the open-ended final phase.
type Phase struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"`
	Requirements string `json:"requirements"`
}

// Phases is the fixed protocol, indexed by phase number minus one.
var Phases = [FinalPhase]Phase{
	{1, "Foundation Start", "Eat every 2-4 hours, <20g total carbs", 7, "Keep carbs under 20g total. Eat when hungry."},
	{2, "Foundation Extended", "Eat every 6-8 hours, <20g total carbs", 7, "Space meals 6-8 hours apart. Track ketones."},
	{3, "Keto-Adapted", "Accidentally miss meals without hunger", 7, "Natural meal skipping. Sustained ketones >0.5"},
	{4, "Two Meals (2MAD)", "Intentional two meals per day", 7, "Two meals daily. 10-12 hour eating window."},
	{5, "16:8 Fasting", "Restrict calories to 8-hour window", 14, "16 hour fast daily. Eating window: 8 hours."},
	{6, "Clean Morning", "No calories/sweeteners before eating window", 14, "Water, black coffee, salt only outside window."},
	{7, "OMAD (23:1)", "One meal per day", 14, "Single meal daily. Dr. Boz Ratio target: <100"},
	{8, "Advanced OMAD", "Meal during daylight, 12hr pre-sunrise fast", 14, "Meal between 11am-6pm. No food 12hrs before sunrise."},
	{9, "36-Hour Fast", "Extended fast for metabolic stress", 7, "Weekly 36hr fast. Water, salt, electrolytes only."},
	{10, "48-Hour Fast", "Deeper autophagy activation", 7, "Complete 48 hours without food. Monitor closely."},
	{11, "72-Hour Fast", "Maximum autophagy trigger", 7, "Full 72hr fast. Medical supervision recommended."},
	{12, "Autophagy Master", "Regular 72hr fasting cycles", 0, "Repeat 72hr fasts as needed. Maintenance phase."},
}

// PhaseByNumber looks up a phase; ok is false outside 1..12.
func PhaseByNumber(n int) (Phase, bool) {
	if n < 1 || n > FinalPhase {
		return Phase{}, false
	}
	return Phases[n-1], true
}
