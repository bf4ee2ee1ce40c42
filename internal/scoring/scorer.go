package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/omegaui/leadrouter/internal/store"
)

// Result is the complete scoring output for a single attorney–lead pair.
type Result struct {
	Total     int                  `json:"total"`
	Breakdown map[string]Dimension `json:"breakdown"`
	Threshold int                  `json:"threshold"`
}

// MeetsThreshold reports whether the total clears the auto-assignment bar.
func (r Result) MeetsThreshold() bool {
	return r.Total >= r.Threshold
}

// Score computes the weighted suitability of one attorney for one lead.
// Pure: the same inputs always produce the same Result and nothing is
// mutated. Missing string fields are treated as empty, missing numbers as
// zero, and an empty case history simply scores the outcomes dimension at 0.
//
// The total is the sum of the unrounded dimension contributions, rounded
// once at the end. Per-dimension breakdown points are rounded for display.
func Score(attorney *store.Attorney, lead *store.Lead, history []*store.CaseRecord) Result {
	mc := &matchContext{
		state:          strings.ToLower(lead.State),
		accidentType:   strings.ToLower(lead.AccidentType),
		notes:          strings.ToLower(lead.Notes),
		licensingState: strings.ToLower(attorney.LicensingState),
		coverage:       strings.ToLower(attorney.GeographicCoverage),
		practiceAreas:  strings.ToLower(attorney.PracticeAreas),
		capacity:       string(attorney.CapacityStatus),
		years:          attorney.YearsExperience,
	}

	var total float64
	breakdown := make(map[string]Dimension, 6)

	pts, dim := evalChain(geographicRules, mc, "No geographic match")
	total += pts
	breakdown["geographic"] = dim

	pts, dim = evalChain(specializationRules, mc, "No specialization match")
	total += pts
	breakdown["specialization"] = dim

	pts, dim = evalChain(capacityRules, mc, "At full capacity")
	total += pts
	breakdown["capacity"] = dim

	expPoints := math.Min(mc.years*ExperiencePointsPerYear, ExperienceMaxPoints)
	total += expPoints
	breakdown["experience"] = Dimension{
		Points: int(math.Round(expPoints)),
		Reason: fmt.Sprintf("%g years experience", mc.years),
	}

	outcomePoints, outcomeDim := scoreOutcomes(attorney, history)
	total += outcomePoints
	breakdown["outcomes"] = outcomeDim

	// Severity only contributes (and only appears in the breakdown) when the
	// notes flag a high-severity case and the attorney clears the experience
	// gate.
	if highSeverity(mc.notes) && mc.years >= SeverityMinExperience {
		total += SeverityBonus
		breakdown["severity"] = Dimension{
			Points: int(SeverityBonus),
			Reason: "High severity case + experienced attorney",
		}
	}

	return Result{
		Total:     int(math.Round(total)),
		Breakdown: breakdown,
		Threshold: MinimumThreshold,
	}
}

func scoreOutcomes(attorney *store.Attorney, history []*store.CaseRecord) (float64, Dimension) {
	var own, won int
	var wonValue float64
	for _, c := range history {
		if c.AttorneyID != attorney.ID {
			continue
		}
		own++
		if c.Status == "closed" && c.EstimatedValue != nil && *c.EstimatedValue > 0 {
			won++
			wonValue += *c.EstimatedValue
		}
	}
	if own == 0 {
		return 0, Dimension{Points: 0, Reason: "No case history"}
	}

	winRate := float64(won) / float64(own)
	points := winRate * 100 * WinRateMultiplier

	var avgSettlement float64
	if won > 0 {
		avgSettlement = wonValue / float64(won)
	}
	if avgSettlement > SettlementBonusFloor {
		points += SettlementBonus
		return points, Dimension{
			Points: int(math.Round(points)),
			Reason: fmt.Sprintf("%d%% win rate, high settlements", int(math.Round(winRate*100))),
		}
	}
	return points, Dimension{
		Points: int(math.Round(points)),
		Reason: fmt.Sprintf("%d%% win rate", int(math.Round(winRate*100))),
	}
}
