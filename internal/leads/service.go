package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/catalog"
	"github.com/huenthong/spacifychat/internal/events"
	"github.com/huenthong/spacifychat/internal/notify"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
)

var (
	ErrNotFound         = errors.New("lead not found")
	ErrAlreadyResponded = errors.New("lead already has a recorded response")
	ErrInvalidStatus    = errors.New("invalid lead status")
)

// SubmitRequest carries a prospect's inquiry as collected by the chat
// flow or the public API. Everything is optional; the scorer falls back
// to neutral defaults for whatever is missing.
type SubmitRequest struct {
	BudgetBand    string     `json:"budget_band,omitempty"`
	MoveInDate    *time.Time `json:"move_in_date,omitempty"`
	Nationality   string     `json:"nationality,omitempty"`
	Area          string     `json:"area,omitempty"`
	Property      string     `json:"property,omitempty"`
	Source        string     `json:"source,omitempty"`
	Occupants     int        `json:"occupants,omitempty"`
	HasVehicle    bool       `json:"has_vehicle,omitempty"`
	NeedsParking  bool       `json:"needs_parking,omitempty"`
	TenancyMonths int        `json:"tenancy_months,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	UnitType      string     `json:"unit_type,omitempty"`
	Workplace     string     `json:"workplace,omitempty"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
}

// Service runs the intake pipeline: score, classify, route, persist,
// announce.
type Service struct {
	store    store.Store
	scorer   scoring.Strategy
	router   *routing.Router
	events   events.Client
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(st store.Store, scorer scoring.Strategy, router *routing.Router, ev events.Client, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		scorer:   scorer,
		router:   router,
		events:   ev,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*store.Lead, error) {
	area := req.Area
	if area != "" {
		area, _ = catalog.Normalize(area)
	}

	attrs := scoring.LeadAttributes{
		BudgetBand:   req.BudgetBand,
		Nationality:  req.Nationality,
		Area:         area,
		Source:       req.Source,
		Occupants:    req.Occupants,
		HasVehicle:   req.HasVehicle,
		NeedsParking: req.NeedsParking,
	}
	if req.MoveInDate != nil {
		attrs.MoveInDate = *req.MoveInDate
	}

	result := s.scorer.Score(attrs)
	decision, err := s.router.Route(result.Total)
	if err != nil {
		return nil, fmt.Errorf("route lead: %w", err)
	}

	lead := &store.Lead{
		BudgetBand:       req.BudgetBand,
		MoveInDate:       req.MoveInDate,
		Nationality:      req.Nationality,
		Area:             area,
		Property:         req.Property,
		Source:           req.Source,
		Occupants:        req.Occupants,
		HasVehicle:       req.HasVehicle,
		NeedsParking:     req.NeedsParking,
		TenancyMonths:    req.TenancyMonths,
		Gender:           req.Gender,
		UnitType:         req.UnitType,
		Workplace:        req.Workplace,
		Score:            result.Total,
		Criteria:         result.Criteria,
		Temperature:      decision.Temperature,
		AssignedAgent:    decision.AgentID,
		SLATargetMinutes: int(decision.SLATarget.Minutes()),
		Status:           store.StatusNew,
		SessionID:        req.SessionID,
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	leadID := lead.ID.String()
	s.publish(events.SubjectLeadCreated(leadID), events.LeadCreatedEvent{
		LeadID:      leadID,
		Area:        lead.Area,
		BudgetBand:  lead.BudgetBand,
		Nationality: lead.Nationality,
		Source:      lead.Source,
	})
	s.publish(events.SubjectLeadScored(leadID), events.LeadScoredEvent{
		LeadID:      leadID,
		Score:       result.Total,
		Temperature: string(decision.Temperature),
		Criteria:    result.BreakdownMap(),
	})
	s.publish(events.SubjectLeadAssigned(leadID), events.LeadAssignedEvent{
		LeadID:           leadID,
		AssignedAgent:    decision.AgentID,
		Temperature:      string(decision.Temperature),
		SLATargetMinutes: lead.SLATargetMinutes,
	})

	if lead.Temperature == scoring.Hot && s.notifier != nil {
		notice := notify.HotLeadNotice{
			LeadID:           leadID,
			AgentID:          decision.AgentID,
			AgentName:        decision.AgentName,
			Score:            lead.Score,
			Area:             lead.Area,
			BudgetBand:       lead.BudgetBand,
			SLATargetMinutes: lead.SLATargetMinutes,
			Deadline:         lead.Deadline(),
		}
		if err := s.notifier.HotLead(ctx, notice); err != nil {
			s.logger.Warn("hot lead webhook failed", "lead_id", leadID, "error", err)
		}
	}

	s.logger.Info("lead submitted",
		"lead_id", leadID,
		"score", lead.Score,
		"temperature", lead.Temperature,
		"agent", lead.AssignedAgent,
		"sla_minutes", lead.SLATargetMinutes)

	return lead, nil
}

// RecordResponse captures the first agent response. A second call for
// the same lead returns ErrAlreadyResponded.
func (s *Service) RecordResponse(ctx context.Context, id uuid.UUID, respondedAt time.Time) (*store.Lead, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}
	if lead.RespondedAt != nil {
		return nil, ErrAlreadyResponded
	}

	minutes := respondedAt.Sub(lead.CreatedAt).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	slaMet := !respondedAt.After(lead.Deadline())

	if err := s.store.MarkResponded(ctx, id, respondedAt, minutes, slaMet); err != nil {
		return nil, fmt.Errorf("mark responded: %w", err)
	}

	lead.RespondedAt = &respondedAt
	lead.ResponseMinutes = &minutes
	lead.SLAMet = &slaMet
	if lead.Status == store.StatusNew {
		lead.Status = store.StatusInProgress
	}

	s.publish(events.SubjectLeadResponded(id.String()), events.LeadRespondedEvent{
		LeadID:          id.String(),
		AssignedAgent:   lead.AssignedAgent,
		ResponseMinutes: minutes,
		SLAMet:          slaMet,
	})

	s.logger.Info("lead response recorded",
		"lead_id", id,
		"agent", lead.AssignedAgent,
		"response_minutes", minutes,
		"sla_met", slaMet)

	return lead, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status store.LeadStatus) (*store.Lead, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}

	old := lead.Status
	if old == status {
		return lead, nil
	}
	lead.Status = status
	if err := s.store.UpdateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}

	s.publish(events.SubjectLeadStatus(id.String()), events.LeadStatusEvent{
		LeadID:    id.String(),
		OldStatus: string(old),
		NewStatus: string(status),
	})

	s.logger.Info("lead status updated", "lead_id", id, "from", old, "to", status)

	return lead, nil
}

func (s *Service) publish(subject string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("publish event failed", "subject", subject, "error", err)
	}
}
