// Package seed generates synthetic leads for the demo dashboard. The
// attribute distributions are fixed, but scores, temperatures and agent
// assignments always come from the real scorer and router, so seeded
// data obeys the same invariants as live traffic.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/catalog"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
)

// Options control one generation run. The same Seed, Now and Count
// always produce identical leads.
type Options struct {
	Count int
	Seed  int64
	Now   time.Time
}

const defaultCount = 150

var (
	nationalities      = []string{"Malaysia", "China", "India", "Singapore", "Indonesia", "Others"}
	nationalityWeights = []float64{0.40, 0.20, 0.15, 0.10, 0.10, 0.05}

	sources       = []string{"Friends/Family", "Social Media", "Website", "Advertisement", "Walk-in"}
	sourceWeights = []float64{0.30, 0.25, 0.20, 0.15, 0.10}

	// Locals skew to the lower bands, foreigners to the upper ones.
	localBands         = []string{catalog.BudgetBand500To700, catalog.BudgetBand700To900, catalog.BudgetBand900To1200}
	localBandWeights   = []float64{0.4, 0.4, 0.2}
	foreignBands       = []string{catalog.BudgetBand700To900, catalog.BudgetBand900To1200, catalog.BudgetBand1200Plus}
	foreignBandWeights = []float64{0.3, 0.5, 0.2}

	workplaces = []string{"KLCC", "KL Sentral", "Bangsar South", "Mid Valley", "Damansara Heights", "Cyberjaya"}

	// Statuses for responded leads. Unresponded leads stay new, so the
	// tail of the documented mix is renormalized over the other four.
	respondedStatuses      = []store.LeadStatus{store.StatusInProgress, store.StatusQualified, store.StatusClosedWon, store.StatusClosedLost}
	respondedStatusWeights = []float64{1.0 / 3.0, 4.0 / 15.0, 0.2, 0.2}
)

// Generate builds Count synthetic leads as of Options.Now. Callers that
// need reproducible scores should pass scoring.NewScorerAt(opts.Now).
func Generate(opts Options, scorer scoring.Strategy, router *routing.Router) ([]*store.Lead, error) {
	count := opts.Count
	if count <= 0 {
		count = defaultCount
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	areas := catalog.Areas()

	leads := make([]*store.Lead, 0, count)
	for i := 0; i < count; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("generate lead id: %w", err)
		}

		nationality := nationalities[pick(rng, nationalityWeights)]
		var band string
		if nationality == "Malaysia" {
			band = localBands[pick(rng, localBandWeights)]
		} else {
			band = foreignBands[pick(rng, foreignBandWeights)]
		}

		moveDays := int(rng.ExpFloat64()*15) + 1
		if moveDays > 90 {
			moveDays = 90
		}
		moveIn := now.AddDate(0, 0, moveDays)

		area := areas[rng.Intn(len(areas))]
		properties := catalog.Properties(area)
		property := properties[rng.Intn(len(properties))]

		source := sources[pick(rng, sourceWeights)]
		occupants := rng.Intn(3) + 1
		hasVehicle := rng.Float64() < 0.4
		needsParking := hasVehicle && rng.Float64() < 0.7
		tenancy := 12
		if rng.Float64() < 0.4 {
			tenancy = 6
		}
		gender := "Female"
		if rng.Float64() < 0.5 {
			gender = "Male"
		}
		unitTypes := catalog.UnitTypes()
		unitType := unitTypes[rng.Intn(len(unitTypes))]
		workplace := workplaces[rng.Intn(len(workplaces))]

		createdAt := now.AddDate(0, 0, -rng.Intn(30)).Add(-time.Duration(rng.Intn(24*60)) * time.Minute)

		result := scorer.Score(scoring.LeadAttributes{
			BudgetBand:   band,
			MoveInDate:   moveIn,
			Nationality:  nationality,
			Area:         area,
			Source:       source,
			Occupants:    occupants,
			HasVehicle:   hasVehicle,
			NeedsParking: needsParking,
		})
		temperature, err := router.Thresholds().Classify(result.Total)
		if err != nil {
			return nil, fmt.Errorf("classify lead %d: %w", i, err)
		}
		agentID, err := router.Draw(temperature, rng)
		if err != nil {
			return nil, fmt.Errorf("assign lead %d: %w", i, err)
		}
		slaTarget, ok := router.SLAFor(temperature)
		if !ok {
			return nil, fmt.Errorf("no SLA target for %s", temperature)
		}
		slaMinutes := int(slaTarget.Minutes())

		lead := &store.Lead{
			ID:               id,
			BudgetBand:       band,
			MoveInDate:       &moveIn,
			Nationality:      nationality,
			Area:             area,
			Property:         property,
			Source:           source,
			Occupants:        occupants,
			HasVehicle:       hasVehicle,
			NeedsParking:     needsParking,
			TenancyMonths:    tenancy,
			Gender:           gender,
			UnitType:         unitType,
			Workplace:        workplace,
			Score:            result.Total,
			Criteria:         result.Criteria,
			Temperature:      temperature,
			AssignedAgent:    agentID,
			SLATargetMinutes: slaMinutes,
			Status:           store.StatusNew,
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}

		if rng.Float64() < 0.85 {
			minutes := math.Round(rng.ExpFloat64()*0.6*float64(slaMinutes)*100) / 100
			respondedAt := createdAt.Add(time.Duration(minutes * float64(time.Minute)))
			met := minutes <= float64(slaMinutes)
			lead.RespondedAt = &respondedAt
			lead.ResponseMinutes = &minutes
			lead.SLAMet = &met
			lead.Status = respondedStatuses[pick(rng, respondedStatusWeights)]
			lead.UpdatedAt = respondedAt
		} else if now.After(lead.Deadline()) {
			lead.SLABreached = true
		}

		leads = append(leads, lead)
	}
	return leads, nil
}

// pick draws an index from the weight slice, walking in order so a
// seeded rng reproduces the same picks.
func pick(rng *rand.Rand, weights []float64) int {
	x := rng.Float64()
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}
