package chat

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/catalog"
)

var testTime = time.Date(2025, 4, 7, 9, 30, 0, 0, time.UTC)

func highBudgetInquiry() Inquiry {
	move := testTime.Add(5 * 24 * time.Hour)
	return Inquiry{
		BudgetBand:    catalog.BudgetBand1200Plus,
		MoveInDate:    &move,
		Occupants:     1,
		HasVehicle:    true,
		NeedsParking:  true,
		TenancyMonths: 12,
		Gender:        "Female",
		UnitType:      "Female unit",
		Workplace:     "KLCC",
		Nationality:   "Singapore",
		Source:        "Friends/Family",
	}
}

func lowBudgetInquiry() Inquiry {
	inq := highBudgetInquiry()
	inq.BudgetBand = catalog.BudgetBand500To700
	return inq
}

// sessionAt walks a fresh session up to the requested stage.
func sessionAt(t *testing.T, stage Stage) Session {
	t.Helper()
	s, _ := NewSession(uuid.New(), testTime)
	if stage == StageWelcome {
		return s
	}
	s, _, err := s.Text("hi", testTime)
	if err != nil {
		t.Fatalf("greeting failed: %v", err)
	}
	if stage == StageAreaSelect {
		return s
	}
	s, _, err = s.SelectArea("Cheras", testTime)
	if err != nil {
		t.Fatalf("select area failed: %v", err)
	}
	if stage == StagePropertySelect {
		return s
	}
	s, _, err = s.SelectProperty("Arte Cheras", testTime)
	if err != nil {
		t.Fatalf("select property failed: %v", err)
	}
	if stage == StageInquiryForm {
		return s
	}
	s, _, err = s.SubmitInquiry(lowBudgetInquiry(), testTime)
	if err != nil {
		t.Fatalf("submit inquiry failed: %v", err)
	}
	if stage == StageBudgetConfirm {
		return s
	}
	t.Fatalf("sessionAt cannot build stage %q", stage)
	return s
}

func TestNewSessionGreets(t *testing.T) {
	id := uuid.New()
	s, replies := NewSession(id, testTime)
	if s.ID != id {
		t.Errorf("expected id %s, got %s", id, s.ID)
	}
	if s.Stage != StageWelcome {
		t.Errorf("expected welcome stage, got %s", s.Stage)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "Welcome") {
		t.Errorf("unexpected greeting: %v", replies)
	}
	if len(s.Transcript) != 1 || s.Transcript[0].Role != RoleAssistant {
		t.Errorf("expected greeting in transcript, got %+v", s.Transcript)
	}
}

func TestGreetingGate(t *testing.T) {
	tests := []struct {
		input string
		pass  bool
	}{
		{"hi", true},
		{"Hello there!", true},
		{"HEY, anyone around?", true},
		{"  hi  ", true},
		{"good morning", false},
		{"ok", false},
		{"", false},
	}
	for _, tt := range tests {
		s := sessionAt(t, StageWelcome)
		next, replies, err := s.Text(tt.input, testTime)
		if err != nil {
			t.Fatalf("Text(%q) failed: %v", tt.input, err)
		}
		if tt.pass {
			if next.Stage != StageAreaSelect {
				t.Errorf("Text(%q): expected area_select, got %s", tt.input, next.Stage)
			}
			if len(replies) != 1 || !strings.Contains(replies[0], "area") {
				t.Errorf("Text(%q): unexpected reply %v", tt.input, replies)
			}
		} else {
			if next.Stage != StageWelcome {
				t.Errorf("Text(%q): expected to stay at welcome, got %s", tt.input, next.Stage)
			}
		}
	}
}

func TestSelectArea(t *testing.T) {
	s := sessionAt(t, StageAreaSelect)

	next, replies, err := s.SelectArea("mont kiara", testTime)
	if err != nil {
		t.Fatalf("SelectArea failed: %v", err)
	}
	if next.Area != "Mont Kiara" {
		t.Errorf("expected canonical area, got %q", next.Area)
	}
	if next.Stage != StagePropertySelect {
		t.Errorf("expected property_select, got %s", next.Stage)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "Mont Kiara") {
		t.Errorf("unexpected reply: %v", replies)
	}
}

func TestSelectAreaUnknown(t *testing.T) {
	s := sessionAt(t, StageAreaSelect)
	if _, _, err := s.SelectArea("Atlantis", testTime); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("expected ErrUnknownArea, got %v", err)
	}
}

func TestSelectAreaWrongStage(t *testing.T) {
	s := sessionAt(t, StageWelcome)
	if _, _, err := s.SelectArea("Cheras", testTime); !errors.Is(err, ErrStage) {
		t.Errorf("expected ErrStage, got %v", err)
	}
}

func TestSelectProperty(t *testing.T) {
	s := sessionAt(t, StagePropertySelect)

	next, _, err := s.SelectProperty("arte cheras", testTime)
	if err != nil {
		t.Fatalf("SelectProperty failed: %v", err)
	}
	if next.Property != "Arte Cheras" {
		t.Errorf("expected canonical property, got %q", next.Property)
	}
	if next.Stage != StageInquiryForm {
		t.Errorf("expected inquiry_form, got %s", next.Stage)
	}
}

func TestSelectPropertyOutsideArea(t *testing.T) {
	s := sessionAt(t, StagePropertySelect)
	if _, _, err := s.SelectProperty("Trion KL", testTime); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestSubmitInquiry(t *testing.T) {
	s := sessionAt(t, StageInquiryForm)

	next, replies, err := s.SubmitInquiry(highBudgetInquiry(), testTime)
	if err != nil {
		t.Fatalf("SubmitInquiry failed: %v", err)
	}
	if next.Stage == StageBudgetConfirm {
		t.Error("high budget should not require confirmation")
	}
	if next.Inquiry == nil || next.Inquiry.BudgetBand != catalog.BudgetBand1200Plus {
		t.Errorf("inquiry not stored: %+v", next.Inquiry)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "Form summary") {
		t.Errorf("expected form summary, got %v", replies)
	}
	if !strings.Contains(replies[0], "Cheras - Arte Cheras") {
		t.Errorf("summary missing location: %s", replies[0])
	}
}

func TestSubmitInquiryValidation(t *testing.T) {
	s := sessionAt(t, StageInquiryForm)

	bad := highBudgetInquiry()
	bad.BudgetBand = "RM 50-100"
	if _, _, err := s.SubmitInquiry(bad, testTime); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for bad band, got %v", err)
	}

	bad = highBudgetInquiry()
	bad.Occupants = 0
	if _, _, err := s.SubmitInquiry(bad, testTime); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero occupants, got %v", err)
	}
}

func TestSubmitInquiryLowBudget(t *testing.T) {
	s := sessionAt(t, StageInquiryForm)

	next, replies, err := s.SubmitInquiry(lowBudgetInquiry(), testTime)
	if err != nil {
		t.Fatalf("SubmitInquiry failed: %v", err)
	}
	if next.Stage != StageBudgetConfirm {
		t.Errorf("expected budget_confirm, got %s", next.Stage)
	}
	if len(replies) != 2 || !strings.Contains(replies[1], "budget range") {
		t.Errorf("expected summary plus budget notice, got %v", replies)
	}
}

func TestConfirmBudgetDecline(t *testing.T) {
	s := sessionAt(t, StageBudgetConfirm)

	next, replies, err := s.ConfirmBudget(false, testTime)
	if err != nil {
		t.Fatalf("ConfirmBudget failed: %v", err)
	}
	if next.Stage != StageInquiryForm {
		t.Errorf("expected return to inquiry_form, got %s", next.Stage)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "adjust") {
		t.Errorf("unexpected reply: %v", replies)
	}
}

func TestConfirmBudgetProceed(t *testing.T) {
	s := sessionAt(t, StageBudgetConfirm)

	next, replies, err := s.ConfirmBudget(true, testTime)
	if err != nil {
		t.Fatalf("ConfirmBudget failed: %v", err)
	}
	if len(replies) != 0 {
		t.Errorf("proceed should defer replies to completion, got %v", replies)
	}
	if next.Stage != StageBudgetConfirm {
		t.Errorf("stage should be left for the caller to complete, got %s", next.Stage)
	}
}

func TestConfirmBudgetWrongStage(t *testing.T) {
	s := sessionAt(t, StageInquiryForm)
	if _, _, err := s.ConfirmBudget(true, testTime); !errors.Is(err, ErrStage) {
		t.Errorf("expected ErrStage, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	s := sessionAt(t, StageBudgetConfirm)
	leadID := uuid.New()

	next, replies := s.Complete(leadID, "Sarah Lim", 2, testTime)
	if next.Stage != StageCompleted {
		t.Errorf("expected completed, got %s", next.Stage)
	}
	if next.LeadID == nil || *next.LeadID != leadID {
		t.Errorf("expected lead id %s, got %v", leadID, next.LeadID)
	}
	if len(replies) != 2 {
		t.Fatalf("expected assignment notice and recommendations, got %v", replies)
	}
	if !strings.Contains(replies[0], "Sarah Lim") || !strings.Contains(replies[0], "2 minutes") {
		t.Errorf("unexpected assignment notice: %s", replies[0])
	}
	if !strings.Contains(replies[1], "Room A102") {
		t.Errorf("expected room recommendations, got %s", replies[1])
	}
}

func TestCompletedTextFollowUps(t *testing.T) {
	s := sessionAt(t, StageBudgetConfirm)
	s, _ = s.Complete(uuid.New(), "Sarah Lim", 2, testTime)

	next, replies, err := s.Text("yes please", testTime)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if next.Stage != StageCompleted {
		t.Errorf("completed session should stay completed, got %s", next.Stage)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "Room") {
		t.Errorf("expected recommendations again, got %v", replies)
	}

	_, replies, err = s.Text("no thanks", testTime)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "No problem") {
		t.Errorf("expected goodbye, got %v", replies)
	}

	_, replies, err = s.Text("agent", testTime)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0], "Sarah Lim") || !strings.Contains(replies[0], "+60 12-345-6789") {
		t.Errorf("expected consultant handoff, got %v", replies)
	}
}

func TestLowBudgetRecommendationsUseValueSet(t *testing.T) {
	s := sessionAt(t, StageBudgetConfirm)
	_, replies := s.Complete(uuid.New(), "Amy Wong", 10, testTime)
	if !strings.Contains(replies[1], "RM 650/month") {
		t.Errorf("expected value rooms for a low budget, got %s", replies[1])
	}
}

func TestTranscriptAccumulates(t *testing.T) {
	s := sessionAt(t, StageInquiryForm)
	// greeting, hi, area prompt, area, spaces reply, property, form prompt
	if len(s.Transcript) != 7 {
		t.Fatalf("expected 7 transcript messages, got %d", len(s.Transcript))
	}
	visitors := 0
	for _, m := range s.Transcript {
		if m.Role == RoleVisitor {
			visitors++
		}
	}
	if visitors != 3 {
		t.Errorf("expected 3 visitor messages, got %d", visitors)
	}
}
