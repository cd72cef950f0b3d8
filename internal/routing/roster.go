package routing

import "fmt"

// Seniority is the experience band an agent belongs to. It drives which
// temperature pools the agent appears in, not the draw itself.
type Seniority string

const (
	SeniorityTop    Seniority = "top"
	SenioritySenior Seniority = "senior"
	SeniorityJunior Seniority = "junior"
)

type Agent struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Seniority Seniority `json:"seniority" yaml:"seniority"`
}

type Roster []Agent

// DefaultRoster is the agency's current sales team.
func DefaultRoster() Roster {
	return Roster{
		{ID: "sarah", Name: "Sarah Lim", Seniority: SeniorityTop},
		{ID: "john", Name: "John Tan", Seniority: SeniorityTop},
		{ID: "amy", Name: "Amy Wong", Seniority: SenioritySenior},
		{ID: "david", Name: "David Chen", Seniority: SenioritySenior},
		{ID: "lisa", Name: "Lisa Koh", Seniority: SeniorityJunior},
		{ID: "mike", Name: "Mike Raj", Seniority: SeniorityJunior},
	}
}

func (r Roster) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("roster is empty")
	}
	seen := make(map[string]bool, len(r))
	for _, a := range r {
		if a.ID == "" {
			return fmt.Errorf("agent with empty id (name %q)", a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
		switch a.Seniority {
		case SeniorityTop, SenioritySenior, SeniorityJunior:
		default:
			return fmt.Errorf("agent %q has unknown seniority %q", a.ID, a.Seniority)
		}
	}
	return nil
}

func (r Roster) Find(id string) (Agent, bool) {
	for _, a := range r {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// TopIDs returns the ids of the top-seniority agents, in roster order.
func (r Roster) TopIDs() []string {
	var ids []string
	for _, a := range r {
		if a.Seniority == SeniorityTop {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
