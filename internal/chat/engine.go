package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/events"
	"github.com/huenthong/spacifychat/internal/leads"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/store"
)

// Intake creates leads out of completed chat sessions. Satisfied by
// *leads.Service.
type Intake interface {
	Submit(ctx context.Context, req leads.SubmitRequest) (*store.Lead, error)
}

// Engine drives chat sessions through the scripted flow: it loads a
// session, applies the transition, persists the result and creates the
// lead when the form clears the budget gate.
type Engine struct {
	sessions SessionStore
	intake   Intake
	roster   routing.Roster
	events   events.Client
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(sessions SessionStore, intake Intake, roster routing.Roster, ev events.Client, logger *slog.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		intake:   intake,
		roster:   roster,
		events:   ev,
		logger:   logger,
		now:      time.Now,
	}
}

// StartSession opens a new conversation and returns the greeting.
func (e *Engine) StartSession(ctx context.Context) (*Session, []string, error) {
	session, replies := NewSession(uuid.New(), e.now().UTC())
	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	e.publish(events.SubjectChatStarted(session.ID.String()), events.ChatStartedEvent{SessionID: session.ID.String()})
	e.logger.Info("chat session started", "session_id", session.ID)
	return &session, replies, nil
}

// GetSession loads a session, returning ErrNotFound when it is absent
// or expired.
func (e *Engine) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := e.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

// EndSession discards a session before its TTL runs out.
func (e *Engine) EndSession(ctx context.Context, id uuid.UUID) error {
	if err := e.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	e.logger.Info("chat session ended", "session_id", id)
	return nil
}

// HandleText applies a free-form visitor message.
func (e *Engine) HandleText(ctx context.Context, id uuid.UUID, text string) (*Session, []string, error) {
	session, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	next, replies, err := session.Text(text, e.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if err := e.sessions.Put(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return &next, replies, nil
}

// SelectArea applies an area choice.
func (e *Engine) SelectArea(ctx context.Context, id uuid.UUID, area string) (*Session, []string, error) {
	session, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	next, replies, err := session.SelectArea(area, e.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if err := e.sessions.Put(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return &next, replies, nil
}

// SelectProperty applies a property choice.
func (e *Engine) SelectProperty(ctx context.Context, id uuid.UUID, property string) (*Session, []string, error) {
	session, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	next, replies, err := session.SelectProperty(property, e.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if err := e.sessions.Put(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return &next, replies, nil
}

// SubmitInquiry applies the form. Unless the low-budget gate holds the
// session at budget confirmation, the lead is created immediately and
// the session completes.
func (e *Engine) SubmitInquiry(ctx context.Context, id uuid.UUID, inq Inquiry) (*Session, []string, error) {
	session, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	now := e.now().UTC()
	next, replies, err := session.SubmitInquiry(inq, now)
	if err != nil {
		return nil, nil, err
	}
	if next.Stage != StageBudgetConfirm {
		completed, more, err := e.completeSession(ctx, next, now)
		if err != nil {
			return nil, nil, err
		}
		next = completed
		replies = append(replies, more...)
	}
	if err := e.sessions.Put(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return &next, replies, nil
}

// ConfirmBudget resolves the low-budget notice; proceeding creates the
// lead, declining reopens the form.
func (e *Engine) ConfirmBudget(ctx context.Context, id uuid.UUID, proceed bool) (*Session, []string, error) {
	session, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	now := e.now().UTC()
	next, replies, err := session.ConfirmBudget(proceed, now)
	if err != nil {
		return nil, nil, err
	}
	if proceed {
		completed, more, err := e.completeSession(ctx, next, now)
		if err != nil {
			return nil, nil, err
		}
		next = completed
		replies = append(replies, more...)
	}
	if err := e.sessions.Put(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return &next, replies, nil
}

func (e *Engine) completeSession(ctx context.Context, session Session, now time.Time) (Session, []string, error) {
	lead, err := e.intake.Submit(ctx, submitRequest(session))
	if err != nil {
		return session, nil, fmt.Errorf("submit lead: %w", err)
	}
	agentName := lead.AssignedAgent
	if agent, ok := e.roster.Find(lead.AssignedAgent); ok {
		agentName = agent.Name
	}
	next, replies := session.Complete(lead.ID, agentName, lead.SLATargetMinutes, now)
	e.publish(events.SubjectChatCompleted(next.ID.String()), events.ChatCompletedEvent{
		SessionID: next.ID.String(),
		LeadID:    lead.ID.String(),
	})
	e.logger.Info("chat session completed",
		"session_id", next.ID,
		"lead_id", lead.ID,
		"temperature", lead.Temperature,
		"agent", lead.AssignedAgent,
	)
	return next, replies, nil
}

func submitRequest(session Session) leads.SubmitRequest {
	req := leads.SubmitRequest{
		Area:      session.Area,
		Property:  session.Property,
		SessionID: &session.ID,
	}
	if inq := session.Inquiry; inq != nil {
		req.BudgetBand = inq.BudgetBand
		req.MoveInDate = inq.MoveInDate
		req.Nationality = inq.Nationality
		req.Source = inq.Source
		req.Occupants = inq.Occupants
		req.HasVehicle = inq.HasVehicle
		req.NeedsParking = inq.NeedsParking
		req.TenancyMonths = inq.TenancyMonths
		req.Gender = inq.Gender
		req.UnitType = inq.UnitType
		req.Workplace = inq.Workplace
	}
	return req
}

func (e *Engine) publish(subject string, data interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(subject, data); err != nil {
		e.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
