package events

import "time"

type LeadCreatedEvent struct {
	LeadID      string `json:"lead_id"`
	Area        string `json:"area,omitempty"`
	BudgetBand  string `json:"budget_band,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Source      string `json:"source,omitempty"`
}

type LeadScoredEvent struct {
	LeadID      string         `json:"lead_id"`
	Score       int            `json:"score"`
	Temperature string         `json:"temperature"`
	Criteria    map[string]int `json:"criteria,omitempty"`
}

type LeadAssignedEvent struct {
	LeadID           string `json:"lead_id"`
	AssignedAgent    string `json:"assigned_agent"`
	Temperature      string `json:"temperature"`
	SLATargetMinutes int    `json:"sla_target_minutes"`
}

type LeadRespondedEvent struct {
	LeadID          string  `json:"lead_id"`
	AssignedAgent   string  `json:"assigned_agent"`
	ResponseMinutes float64 `json:"response_minutes"`
	SLAMet          bool    `json:"sla_met"`
}

type LeadSLABreachedEvent struct {
	LeadID        string    `json:"lead_id"`
	AssignedAgent string    `json:"assigned_agent"`
	Temperature   string    `json:"temperature"`
	Deadline      time.Time `json:"deadline"`
}

type LeadStatusEvent struct {
	LeadID    string `json:"lead_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type ChatStartedEvent struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id,omitempty"`
}

type ChatCompletedEvent struct {
	SessionID string `json:"session_id"`
	LeadID    string `json:"lead_id,omitempty"`
}

type StatsSnapshotEvent struct {
	TotalLeads int       `json:"total_leads"`
	HotLeads   int       `json:"hot_leads"`
	WarmLeads  int       `json:"warm_leads"`
	ColdLeads  int       `json:"cold_leads"`
	AvgScore   float64   `json:"avg_score"`
	Timestamp  time.Time `json:"timestamp"`
}
