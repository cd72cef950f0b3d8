package scoring

import (
	"strings"
	"time"

	"github.com/huenthong/spacifychat/internal/catalog"
)

// CriterionScore captures one criterion's contribution to the total score.
type CriterionScore struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
	Reason string `json:"reason"`
}

// LeadAttributes bundles everything known about an inquiry at scoring
// time. It is a value object: built once per inquiry, never mutated.
// Every field may be missing; the criteria degrade to documented
// defaults instead of failing, so partially filled leads still score.
type LeadAttributes struct {
	BudgetBand   string    `json:"budget_band"`
	MoveInDate   time.Time `json:"move_in_date"` // zero means not provided
	Nationality  string    `json:"nationality"`
	Area         string    `json:"area"`
	Source       string    `json:"source"` // empty when the capture layer has no source field
	Occupants    int       `json:"occupants"`
	HasVehicle   bool      `json:"has_vehicle"`
	NeedsParking bool      `json:"needs_parking"`
}

// Criterion maximums. The six criteria cap the total at 100.
const (
	MaxTimeline    = 35
	MaxBudget      = 25
	MaxNationality = 20
	MaxSource      = 10
	MaxLocation    = 6
	MaxConvenience = 4
)

// Defaults applied when an attribute is missing or unrecognized.
const (
	defaultBudgetPoints      = 15
	defaultNationalityPoints = 15
	defaultSourcePoints      = 8
)

var budgetPoints = map[string]int{
	catalog.BudgetBand500To700:  10,
	catalog.BudgetBand700To900:  18,
	catalog.BudgetBand900To1200: 22,
	catalog.BudgetBand1200Plus:  25,
}

// nationalityPoints is keyed lowercase; lookups fold case.
var nationalityPoints = map[string]int{
	"malaysia":  10,
	"china":     18,
	"india":     16,
	"singapore": 20,
	"indonesia": 17,
}

// sourcePoints is keyed lowercase. An uncaptured source scores the
// fixed placeholder constant instead.
var sourcePoints = map[string]int{
	"friends/family": 10,
	"walk-in":        9,
	"social media":   8,
	"advertisement":  7,
	"website":        6,
}

// TimelineCriterion scores urgency from whole days until move-in.
// Unknown dates land in the slowest bracket; past dates count as
// immediate since the tenant needs a room now.
func TimelineCriterion(attrs LeadAttributes, now time.Time) CriterionScore {
	if attrs.MoveInDate.IsZero() {
		return CriterionScore{Name: "timeline", Points: 10, Max: MaxTimeline, Reason: "move-in date not provided"}
	}
	days := daysUntil(now, attrs.MoveInDate)
	switch {
	case days <= 7:
		return CriterionScore{Name: "timeline", Points: 35, Max: MaxTimeline, Reason: "moving within 7 days"}
	case days <= 14:
		return CriterionScore{Name: "timeline", Points: 30, Max: MaxTimeline, Reason: "moving within 14 days"}
	case days <= 30:
		return CriterionScore{Name: "timeline", Points: 20, Max: MaxTimeline, Reason: "moving within 30 days"}
	default:
		return CriterionScore{Name: "timeline", Points: 10, Max: MaxTimeline, Reason: "moving in more than 30 days"}
	}
}

// BudgetCriterion scores the rent band, rising with the band.
func BudgetCriterion(attrs LeadAttributes) CriterionScore {
	band := strings.TrimSpace(attrs.BudgetBand)
	if pts, ok := budgetPoints[band]; ok {
		return CriterionScore{Name: "budget", Points: pts, Max: MaxBudget, Reason: "band " + band}
	}
	return CriterionScore{Name: "budget", Points: defaultBudgetPoints, Max: MaxBudget, Reason: "budget band not provided"}
}

// NationalityCriterion scores rental propensity by nationality.
func NationalityCriterion(attrs LeadAttributes) CriterionScore {
	key := strings.ToLower(strings.TrimSpace(attrs.Nationality))
	if pts, ok := nationalityPoints[key]; ok {
		return CriterionScore{Name: "nationality", Points: pts, Max: MaxNationality, Reason: attrs.Nationality}
	}
	if key == "" {
		return CriterionScore{Name: "nationality", Points: defaultNationalityPoints, Max: MaxNationality, Reason: "nationality not provided"}
	}
	return CriterionScore{Name: "nationality", Points: defaultNationalityPoints, Max: MaxNationality, Reason: "other nationality"}
}

// SourceCriterion scores the capture channel when one was recorded.
// The chat flow records none, so it scores the placeholder constant.
func SourceCriterion(attrs LeadAttributes) CriterionScore {
	key := strings.ToLower(strings.TrimSpace(attrs.Source))
	if pts, ok := sourcePoints[key]; ok {
		return CriterionScore{Name: "source", Points: pts, Max: MaxSource, Reason: attrs.Source}
	}
	return CriterionScore{Name: "source", Points: defaultSourcePoints, Max: MaxSource, Reason: "source not captured"}
}

// LocationCriterion scores serviced neighborhoods over everything else.
func LocationCriterion(attrs LeadAttributes) CriterionScore {
	area, premium := catalog.Normalize(attrs.Area)
	if premium {
		return CriterionScore{Name: "location", Points: 6, Max: MaxLocation, Reason: "serviced area " + area}
	}
	return CriterionScore{Name: "location", Points: 3, Max: MaxLocation, Reason: "outside serviced areas"}
}

// ConvenienceCriterion is a fixed slot. It is intentionally not derived
// from the vehicle/parking fields.
func ConvenienceCriterion(attrs LeadAttributes) CriterionScore {
	return CriterionScore{Name: "convenience", Points: 4, Max: MaxConvenience, Reason: "baseline"}
}

// daysUntil counts whole calendar days from a to b, negative when b is
// in the past. Both stamps are truncated to their calendar date so the
// time of day never shifts a lead across a bracket.
func daysUntil(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
