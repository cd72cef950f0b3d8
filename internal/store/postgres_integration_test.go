//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/scoring"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE leads")
		s.Close()
	})

	return s
}

func TestPostgresCreateAndGetLead(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	moveIn := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	lead := &Lead{
		BudgetBand:  "RM 900-1200",
		MoveInDate:  &moveIn,
		Nationality: "Singapore",
		Area:        "Mont Kiara",
		Source:      "Friends/Family",
		Occupants:   1,
		Score:       92,
		Criteria: []scoring.CriterionScore{
			{Name: "budget", Points: 22, Max: 25, Reason: "band RM 900-1200"},
		},
		Temperature:      scoring.Hot,
		AssignedAgent:    "sarah",
		SLATargetMinutes: 2,
		Status:           StatusNew,
	}

	if err := s.CreateLead(ctx, lead); err != nil {
		t.Fatalf("CreateLead failed: %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Fatal("expected non-nil lead ID after create")
	}

	got, err := s.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected lead, got nil")
	}
	if got.Score != 92 || got.Temperature != scoring.Hot {
		t.Errorf("expected 92/hot, got %d/%s", got.Score, got.Temperature)
	}
	if got.MoveInDate == nil || !got.MoveInDate.Equal(moveIn) {
		t.Errorf("expected move-in %v, got %v", moveIn, got.MoveInDate)
	}
	if len(got.Criteria) != 1 || got.Criteria[0].Name != "budget" {
		t.Errorf("unexpected criteria: %+v", got.Criteria)
	}

	missing, err := s.GetLead(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing lead, got %+v", missing)
	}
}

func TestPostgresRespondAndOverdue(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	overdue := &Lead{Temperature: scoring.Hot, Status: StatusNew, SLATargetMinutes: 2, CreatedAt: now.Add(-10 * time.Minute)}
	fresh := &Lead{Temperature: scoring.Warm, Status: StatusNew, SLATargetMinutes: 30, CreatedAt: now.Add(-1 * time.Minute)}
	for _, l := range []*Lead{overdue, fresh} {
		if err := s.CreateLead(ctx, l); err != nil {
			t.Fatalf("CreateLead failed: %v", err)
		}
	}

	got, err := s.GetOverdueLeads(ctx, now)
	if err != nil {
		t.Fatalf("GetOverdueLeads failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != overdue.ID {
		t.Fatalf("expected only the overdue lead, got %d", len(got))
	}

	if err := s.MarkSLABreached(ctx, overdue.ID); err != nil {
		t.Fatalf("MarkSLABreached failed: %v", err)
	}
	got, err = s.GetOverdueLeads(ctx, now)
	if err != nil {
		t.Fatalf("GetOverdueLeads failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no overdue leads after breach flag, got %d", len(got))
	}

	if err := s.MarkResponded(ctx, fresh.ID, now, 1.0, true); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}
	responded, err := s.GetLead(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if responded.Status != StatusInProgress {
		t.Errorf("expected status in_progress, got %s", responded.Status)
	}
	if responded.SLAMet == nil || !*responded.SLAMet {
		t.Errorf("expected sla_met true, got %v", responded.SLAMet)
	}
}

func TestPostgresStatsAndPerformance(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	leads := []*Lead{
		{Temperature: scoring.Hot, Status: StatusClosedWon, Score: 90, AssignedAgent: "sarah",
			RespondedAt: &now, ResponseMinutes: ptrFloat(1.5), SLAMet: ptrBool(true)},
		{Temperature: scoring.Warm, Status: StatusNew, Score: 65, AssignedAgent: "amy"},
		{Temperature: scoring.Cold, Status: StatusNew, Score: 40, AssignedAgent: "lisa"},
	}
	for _, l := range leads {
		if err := s.CreateLead(ctx, l); err != nil {
			t.Fatalf("CreateLead failed: %v", err)
		}
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalLeads != 3 || stats.HotLeads != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HotByAgent["sarah"] != 1 {
		t.Errorf("expected sarah hot count 1, got %v", stats.HotByAgent)
	}

	perf, err := s.GetAgentPerformance(ctx)
	if err != nil {
		t.Fatalf("GetAgentPerformance failed: %v", err)
	}
	if len(perf) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(perf))
	}
	for _, p := range perf {
		if p.AgentID == "sarah" {
			if p.ClosedWon != 1 || p.SLAMetRate != 1.0 {
				t.Errorf("unexpected sarah perf: %+v", p)
			}
		}
	}
}
