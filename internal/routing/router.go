// Package routing assigns scored leads to sales agents using per-temperature
// weighted random draws, so hot leads concentrate on top performers while
// every tier keeps a trickle of variety.
package routing

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/huenthong/spacifychat/internal/scoring"
)

// ErrUnknownTemperature is returned when a draw is requested for a
// temperature that has no routing table.
var ErrUnknownTemperature = errors.New("unknown temperature")

// weightSumTolerance is how far a table's weights may drift from 1.0
// before configuration is rejected.
const weightSumTolerance = 0.001

// Weights maps agent id to its share of the draw for one temperature.
type Weights map[string]float64

// Tables holds one weight table per temperature.
type Tables map[scoring.Temperature]Weights

// DefaultTables routes hot leads to the two top performers, warm leads
// across top and senior agents, and cold leads mostly to senior and
// junior agents with a small top-performer share.
func DefaultTables() Tables {
	return Tables{
		scoring.Hot: {
			"sarah": 0.6,
			"john":  0.4,
		},
		scoring.Warm: {
			"sarah": 0.3,
			"john":  0.3,
			"amy":   0.2,
			"david": 0.2,
		},
		scoring.Cold: {
			"amy":   0.25,
			"david": 0.25,
			"lisa":  0.2,
			"mike":  0.2,
			"sarah": 0.05,
			"john":  0.05,
		},
	}
}

// SLATargets maps each temperature to its first-response deadline.
type SLATargets map[scoring.Temperature]time.Duration

func DefaultSLATargets() SLATargets {
	return SLATargets{
		scoring.Hot:  2 * time.Minute,
		scoring.Warm: 5 * time.Minute,
		scoring.Cold: 10 * time.Minute,
	}
}

func (s SLATargets) Validate() error {
	for _, temp := range scoring.Temperatures() {
		d, ok := s[temp]
		if !ok {
			return fmt.Errorf("missing SLA target for %s", temp)
		}
		if d <= 0 {
			return fmt.Errorf("SLA target for %s must be positive, got %s", temp, d)
		}
	}
	return nil
}

// Decision is the outcome of routing one lead.
type Decision struct {
	Temperature scoring.Temperature `json:"temperature"`
	AgentID     string              `json:"agent_id"`
	AgentName   string              `json:"agent_name"`
	SLATarget   time.Duration       `json:"sla_target"`
}

// entry is one agent's slot in a precomputed draw order.
type entry struct {
	agentID string
	weight  float64
}

// Router draws agents for scored leads. Construction validates the full
// configuration up front so a bad weight table can never reach a draw.
type Router struct {
	roster     Roster
	byID       map[string]Agent
	entries    map[scoring.Temperature][]entry
	thresholds scoring.Thresholds
	slas       SLATargets

	mu  sync.Mutex
	rng *rand.Rand
}

func New(roster Roster, tables Tables, thresholds scoring.Thresholds, slas SLATargets) (*Router, error) {
	if err := roster.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	if err := slas.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SLA targets: %w", err)
	}

	byID := make(map[string]Agent, len(roster))
	for _, a := range roster {
		byID[a.ID] = a
	}

	entries := make(map[scoring.Temperature][]entry, len(tables))
	for _, temp := range scoring.Temperatures() {
		weights, ok := tables[temp]
		if !ok || len(weights) == 0 {
			return nil, fmt.Errorf("routing table for %s is empty", temp)
		}
		ids := make([]string, 0, len(weights))
		sum := 0.0
		for id, w := range weights {
			if _, ok := byID[id]; !ok {
				return nil, fmt.Errorf("routing table for %s references unknown agent %q", temp, id)
			}
			if w <= 0 {
				return nil, fmt.Errorf("routing table for %s has non-positive weight %v for agent %q", temp, w, id)
			}
			ids = append(ids, id)
			sum += w
		}
		if math.Abs(sum-1.0) > weightSumTolerance {
			return nil, fmt.Errorf("routing table for %s sums to %v, want 1.0", temp, sum)
		}
		sort.Strings(ids)
		ordered := make([]entry, 0, len(ids))
		for _, id := range ids {
			ordered = append(ordered, entry{agentID: id, weight: weights[id]})
		}
		entries[temp] = ordered
	}

	return &Router{
		roster:     roster,
		byID:       byID,
		entries:    entries,
		thresholds: thresholds,
		slas:       slas,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Draw picks an agent for the temperature using the caller's rng. Entries
// are walked in sorted agent-id order, so a seeded rng reproduces the same
// sequence of picks.
func (r *Router) Draw(temp scoring.Temperature, rng *rand.Rand) (string, error) {
	ordered, ok := r.entries[temp]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemperature, temp)
	}
	x := rng.Float64()
	for _, e := range ordered {
		x -= e.weight
		if x < 0 {
			return e.agentID, nil
		}
	}
	// Float accumulation can leave a sliver above the last boundary.
	return ordered[len(ordered)-1].agentID, nil
}

// Assign draws an agent using the router's own rng. Safe for concurrent use.
func (r *Router) Assign(temp scoring.Temperature) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Draw(temp, r.rng)
}

// Route classifies a score and assigns an agent in one step.
func (r *Router) Route(score int) (Decision, error) {
	temp, err := r.thresholds.Classify(score)
	if err != nil {
		return Decision{}, err
	}
	agentID, err := r.Assign(temp)
	if err != nil {
		return Decision{}, err
	}
	agent := r.byID[agentID]
	return Decision{
		Temperature: temp,
		AgentID:     agent.ID,
		AgentName:   agent.Name,
		SLATarget:   r.slas[temp],
	}, nil
}

// Roster returns the agents this router draws from.
func (r *Router) Roster() Roster {
	return r.roster
}

// Agent looks up a roster member by id.
func (r *Router) Agent(id string) (Agent, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// SLAFor returns the first-response deadline for a temperature.
func (r *Router) SLAFor(temp scoring.Temperature) (time.Duration, bool) {
	d, ok := r.slas[temp]
	return d, ok
}

// Thresholds returns the score boundaries this router classifies with.
func (r *Router) Thresholds() scoring.Thresholds {
	return r.thresholds
}

// Pool returns the agents eligible for a temperature in draw order.
func (r *Router) Pool(temp scoring.Temperature) []Agent {
	ordered, ok := r.entries[temp]
	if !ok {
		return nil
	}
	agents := make([]Agent, 0, len(ordered))
	for _, e := range ordered {
		agents = append(agents, r.byID[e.agentID])
	}
	return agents
}

// WeightFor returns an agent's share of the draw for a temperature,
// or 0 if the agent is not in that pool.
func (r *Router) WeightFor(temp scoring.Temperature, agentID string) float64 {
	for _, e := range r.entries[temp] {
		if e.agentID == agentID {
			return e.weight
		}
	}
	return 0
}
