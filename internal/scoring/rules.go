package scoring

import "strings"

// Dimension is one scored factor's contribution with an operator-readable
// reason, as surfaced in assignment responses.
type Dimension struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// matchContext carries the lowercased inputs a rule predicate sees. Scoring
// never touches the original records.
type matchContext struct {
	state        string
	accidentType string
	notes        string

	licensingState string
	coverage       string
	practiceAreas  string
	capacity       string
	years          float64
}

// rule is one (predicate, points) pair in a first-match-wins chain.
type rule struct {
	points float64
	reason string
	match  func(mc *matchContext) bool
}

var geographicRules = []rule{
	{StateExactMatchPoints, "Exact state license match", func(mc *matchContext) bool {
		return mc.licensingState != "" && mc.licensingState == mc.state
	}},
	{StateCoveragePoints, "State in coverage area", func(mc *matchContext) bool {
		return mc.state != "" && strings.Contains(mc.coverage, mc.state)
	}},
	{NationwideCoveragePoints, "Nationwide coverage", func(mc *matchContext) bool {
		return strings.Contains(mc.coverage, "nationwide") || strings.Contains(mc.coverage, "national")
	}},
}

var specializationRules = []rule{
	{SpecializationExactPoints, "Exact specialization match", func(mc *matchContext) bool {
		return mc.accidentType != "" && strings.Contains(mc.practiceAreas, mc.accidentType)
	}},
	{SpecializationRelatedPoints, "Related specialization", func(mc *matchContext) bool {
		for _, term := range RelatedSpecializations[mc.accidentType] {
			if strings.Contains(mc.practiceAreas, term) {
				return true
			}
		}
		return false
	}},
}

var capacityRules = []rule{
	{CapacityAvailablePoints, "Fully available", func(mc *matchContext) bool {
		return mc.capacity == "available"
	}},
	{CapacityLimitedPoints, "Limited capacity", func(mc *matchContext) bool {
		return mc.capacity == "limited"
	}},
}

// evalChain walks the chain in order and returns the first matching rule's
// contribution, or zero points with the miss reason.
func evalChain(rules []rule, mc *matchContext, missReason string) (float64, Dimension) {
	for _, r := range rules {
		if r.match(mc) {
			return r.points, Dimension{Points: int(r.points), Reason: r.reason}
		}
	}
	return 0, Dimension{Points: 0, Reason: missReason}
}

func highSeverity(notes string) bool {
	for _, marker := range severityMarkers {
		if strings.Contains(notes, marker) {
			return true
		}
	}
	return false
}
