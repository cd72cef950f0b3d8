package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/scoring"
)

type LeadStatus string

const (
	StatusNew        LeadStatus = "new"
	StatusInProgress LeadStatus = "in_progress"
	StatusQualified  LeadStatus = "qualified"
	StatusClosedWon  LeadStatus = "closed_won"
	StatusClosedLost LeadStatus = "closed_lost"
)

// Valid reports whether s is one of the known lead statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusQualified, StatusClosedWon, StatusClosedLost:
		return true
	}
	return false
}

type Lead struct {
	ID uuid.UUID `json:"lead_id"`

	// Inquiry attributes
	BudgetBand    string     `json:"budget_band,omitempty"`
	MoveInDate    *time.Time `json:"move_in_date,omitempty"`
	Nationality   string     `json:"nationality,omitempty"`
	Area          string     `json:"area,omitempty"`
	Property      string     `json:"property,omitempty"`
	Source        string     `json:"source,omitempty"`
	Occupants     int        `json:"occupants,omitempty"`
	HasVehicle    bool       `json:"has_vehicle"`
	NeedsParking  bool       `json:"needs_parking"`
	TenancyMonths int        `json:"tenancy_months,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	UnitType      string     `json:"unit_type,omitempty"`
	Workplace     string     `json:"workplace,omitempty"`

	// Scoring
	Score       int                      `json:"score"`
	Criteria    []scoring.CriterionScore `json:"criteria,omitempty"`
	Temperature scoring.Temperature      `json:"temperature"`

	// Routing
	AssignedAgent    string `json:"assigned_agent"`
	SLATargetMinutes int    `json:"sla_target_minutes"`

	// Response tracking
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ResponseMinutes *float64   `json:"response_minutes,omitempty"`
	SLAMet          *bool      `json:"sla_met,omitempty"`
	SLABreached     bool       `json:"sla_breached"`

	// Lifecycle
	Status    LeadStatus `json:"status"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Deadline is the moment the SLA clock runs out for the lead.
func (l *Lead) Deadline() time.Time {
	return l.CreatedAt.Add(time.Duration(l.SLATargetMinutes) * time.Minute)
}

type LeadFilter struct {
	Temperature   *scoring.Temperature
	Status        *LeadStatus
	AssignedAgent string
	Nationality   string
	Area          string
	Since         *time.Time
	Limit         int
}

type LeadStats struct {
	TotalLeads         int            `json:"total_leads"`
	HotLeads           int            `json:"hot_leads"`
	WarmLeads          int            `json:"warm_leads"`
	ColdLeads          int            `json:"cold_leads"`
	AvgScore           float64        `json:"avg_score"`
	RespondedLeads     int            `json:"responded_leads"`
	SLAMetLeads        int            `json:"sla_met_leads"`
	AvgResponseMinutes float64        `json:"avg_response_minutes"`
	StatusCounts       map[string]int `json:"status_counts"`
	HotByAgent         map[string]int `json:"hot_by_agent"`
}

type AgentPerformance struct {
	AgentID            string  `json:"agent_id"`
	AssignedLeads      int     `json:"assigned_leads"`
	HotLeads           int     `json:"hot_leads"`
	WarmLeads          int     `json:"warm_leads"`
	ColdLeads          int     `json:"cold_leads"`
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
	SLAMetRate         float64 `json:"sla_met_rate"`
	ClosedWon          int     `json:"closed_won"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Total int    `json:"total"`
	Hot   int    `json:"hot"`
	Warm  int    `json:"warm"`
	Cold  int    `json:"cold"`
}

type Store interface {
	CreateLead(ctx context.Context, lead *Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	UpdateLead(ctx context.Context, lead *Lead) error

	// MarkResponded records the first agent response. A lead still in
	// status new moves to in_progress.
	MarkResponded(ctx context.Context, id uuid.UUID, respondedAt time.Time, responseMinutes float64, slaMet bool) error

	// MarkSLABreached flags a lead whose response deadline has passed.
	MarkSLABreached(ctx context.Context, id uuid.UUID) error

	// GetOverdueLeads returns unresponded leads past their SLA deadline
	// as of the given time that have not been flagged yet.
	GetOverdueLeads(ctx context.Context, asOf time.Time) ([]*Lead, error)

	GetStats(ctx context.Context) (*LeadStats, error)
	GetAgentPerformance(ctx context.Context) ([]*AgentPerformance, error)
	GetDailyCounts(ctx context.Context, days int) ([]*DailyCount, error)

	Close() error
}
