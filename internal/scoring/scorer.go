package scoring

import "time"

// Result captures the complete scoring output for one lead.
type Result struct {
	Total    int              `json:"total"`
	Criteria []CriterionScore `json:"criteria"`
}

// BreakdownMap returns criterion name to points contributed.
func (r Result) BreakdownMap() map[string]int {
	out := make(map[string]int, len(r.Criteria))
	for _, c := range r.Criteria {
		out[c.Name] = c.Points
	}
	return out
}

// Strategy scores a lead. The weighted table Scorer is the default
// implementation; an alternative statistical model may be substituted
// as long as it keeps the total in [0,100] with a named breakdown.
type Strategy interface {
	Score(attrs LeadAttributes) Result
}

// Scorer computes the six-criterion weighted priority score. It is
// pure apart from reading the clock for the timeline criterion, which
// is injectable so tests pin the reference date.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a Scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt creates a Scorer pinned to a fixed reference time, so a
// batch of historical leads scores identically on every run.
func NewScorerAt(at time.Time) *Scorer {
	return &Scorer{now: func() time.Time { return at }}
}

// Score computes the total and ordered per-criterion breakdown.
// It never fails: missing or unrecognized attribute values score
// their documented defaults. Criteria order is fixed: timeline,
// budget, nationality, source, location, convenience.
func (s *Scorer) Score(attrs LeadAttributes) Result {
	now := s.now()
	criteria := []CriterionScore{
		TimelineCriterion(attrs, now),
		BudgetCriterion(attrs),
		NationalityCriterion(attrs),
		SourceCriterion(attrs),
		LocationCriterion(attrs),
		ConvenienceCriterion(attrs),
	}

	var total int
	for _, c := range criteria {
		total += c.Points
	}

	return Result{Total: total, Criteria: criteria}
}
