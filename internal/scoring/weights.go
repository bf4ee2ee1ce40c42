package scoring

// Scoring point tables. These are fixed product configuration, compiled in
// rather than loaded from config so every deployment scores identically.
const (
	StateExactMatchPoints    = 30.0
	StateCoveragePoints      = 15.0
	NationwideCoveragePoints = 5.0

	SpecializationExactPoints   = 25.0
	SpecializationRelatedPoints = 10.0

	CapacityAvailablePoints = 20.0
	CapacityLimitedPoints   = 5.0

	ExperiencePointsPerYear = 1.5
	ExperienceMaxPoints     = 20.0

	WinRateMultiplier    = 0.3
	SettlementBonus      = 15.0
	SettlementBonusFloor = 100000.0

	SeverityBonus         = 10.0
	SeverityMinExperience = 10.0

	// MinimumThreshold is the total score required for automatic assignment.
	MinimumThreshold = 40
)

// RelatedSpecializations maps an accident type to practice-area keywords that
// count as a related (partial-credit) specialization match.
var RelatedSpecializations = map[string][]string{
	"car":                 {"auto", "vehicle", "traffic", "collision"},
	"truck":               {"commercial", "semi", "18-wheeler", "vehicle"},
	"motorcycle":          {"vehicle", "traffic", "auto"},
	"pedestrian":          {"traffic", "vehicle", "crosswalk"},
	"bicycle":             {"traffic", "vehicle", "pedestrian"},
	"slip_and_fall":       {"premises", "liability", "property", "negligence"},
	"medical_malpractice": {"medical", "negligence", "hospital"},
	"workplace":           {"workers comp", "osha", "employment", "injury"},
}

// severityMarkers flag a high-severity case from free-text intake notes.
var severityMarkers = []string{
	"surgery",
	"hospitalized",
	"pain level: 8",
	"pain level: 9",
	"pain level: 10",
	"disability",
}
