package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/events"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
)

// Mock implementations

type mockStore struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]*store.Lead
	stats      *store.LeadStats
	statsErr   error
	overdueErr error
	markErr    error
	statsCalls int
}

func newMockStore() *mockStore {
	return &mockStore{
		leads: make(map[uuid.UUID]*store.Lead),
		stats: &store.LeadStats{},
	}
}

func (m *mockStore) put(l *store.Lead) {
	m.mu.Lock()
	m.leads[l.ID] = l
	m.mu.Unlock()
}

func (m *mockStore) CreateLead(_ context.Context, l *store.Lead) error {
	m.put(l)
	return nil
}

func (m *mockStore) GetLead(_ context.Context, id uuid.UUID) (*store.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id], nil
}

func (m *mockStore) ListLeads(_ context.Context, _ store.LeadFilter) ([]*store.Lead, error) {
	return nil, nil
}

func (m *mockStore) UpdateLead(_ context.Context, l *store.Lead) error {
	m.put(l)
	return nil
}

func (m *mockStore) MarkResponded(_ context.Context, _ uuid.UUID, _ time.Time, _ float64, _ bool) error {
	return nil
}

func (m *mockStore) MarkSLABreached(_ context.Context, id uuid.UUID) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leads[id]; ok {
		l.SLABreached = true
	}
	return nil
}

func (m *mockStore) GetOverdueLeads(_ context.Context, asOf time.Time) ([]*store.Lead, error) {
	if m.overdueErr != nil {
		return nil, m.overdueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Lead
	for _, l := range m.leads {
		if l.RespondedAt == nil && !l.SLABreached && !l.Deadline().After(asOf) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockStore) GetStats(_ context.Context) (*store.LeadStats, error) {
	m.mu.Lock()
	m.statsCalls++
	m.mu.Unlock()
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockStore) GetAgentPerformance(_ context.Context) ([]*store.AgentPerformance, error) {
	return nil, nil
}

func (m *mockStore) GetDailyCounts(_ context.Context, _ int) ([]*store.DailyCount, error) {
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) statsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsCalls
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type mockEvents struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (m *mockEvents) Publish(subject string, data interface{}) error {
	m.mu.Lock()
	m.published = append(m.published, publishedEvent{subject, data})
	m.mu.Unlock()
	return nil
}

func (m *mockEvents) Close() {}

func (m *mockEvents) events() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedEvent, len(m.published))
	copy(out, m.published)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var reportNow = time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC)

func newTestReporter(ms *mockStore, me events.Client) *Reporter {
	r := New(ms, me, time.Minute, time.Minute, discardLogger())
	r.now = func() time.Time { return reportNow }
	return r
}

func TestNewDefaultsIntervals(t *testing.T) {
	r := New(newMockStore(), nil, 0, 0, discardLogger())
	if r.statsInterval != 30*time.Second {
		t.Errorf("expected 30s stats interval, got %s", r.statsInterval)
	}
	if r.slaInterval != 30*time.Second {
		t.Errorf("expected 30s sla interval, got %s", r.slaInterval)
	}
}

func TestPublishStats(t *testing.T) {
	ms := newMockStore()
	ms.stats = &store.LeadStats{
		TotalLeads: 12,
		HotLeads:   3,
		WarmLeads:  4,
		ColdLeads:  5,
		AvgScore:   61.5,
	}
	me := &mockEvents{}
	r := newTestReporter(ms, me)

	r.publishStats(context.Background())

	got := me.events()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].subject != events.SubjectStatsSnapshot {
		t.Errorf("expected subject %s, got %s", events.SubjectStatsSnapshot, got[0].subject)
	}
	evt, ok := got[0].data.(events.StatsSnapshotEvent)
	if !ok {
		t.Fatalf("expected StatsSnapshotEvent, got %T", got[0].data)
	}
	if evt.TotalLeads != 12 || evt.HotLeads != 3 || evt.WarmLeads != 4 || evt.ColdLeads != 5 {
		t.Errorf("unexpected counts: %+v", evt)
	}
	if evt.AvgScore != 61.5 {
		t.Errorf("expected avg score 61.5, got %f", evt.AvgScore)
	}
	if !evt.Timestamp.Equal(reportNow) {
		t.Errorf("expected timestamp %s, got %s", reportNow, evt.Timestamp)
	}
}

func TestPublishStatsStoreError(t *testing.T) {
	ms := newMockStore()
	ms.statsErr = errors.New("db down")
	me := &mockEvents{}
	r := newTestReporter(ms, me)

	r.publishStats(context.Background())

	if got := me.events(); len(got) != 0 {
		t.Errorf("expected no events on store error, got %d", len(got))
	}
}

func TestPublishStatsNilEvents(t *testing.T) {
	r := newTestReporter(newMockStore(), nil)
	r.publishStats(context.Background())
}

func TestCheckDeadlines(t *testing.T) {
	ms := newMockStore()
	me := &mockEvents{}
	r := newTestReporter(ms, me)

	overdue1 := &store.Lead{
		ID:               uuid.New(),
		Temperature:      scoring.Hot,
		AssignedAgent:    "sarah",
		SLATargetMinutes: 2,
		Status:           store.StatusNew,
		CreatedAt:        reportNow.Add(-30 * time.Minute),
	}
	overdue2 := &store.Lead{
		ID:               uuid.New(),
		Temperature:      scoring.Warm,
		AssignedAgent:    "amy",
		SLATargetMinutes: 5,
		Status:           store.StatusNew,
		CreatedAt:        reportNow.Add(-10 * time.Minute),
	}
	fresh := &store.Lead{
		ID:               uuid.New(),
		Temperature:      scoring.Cold,
		AssignedAgent:    "lisa",
		SLATargetMinutes: 10,
		Status:           store.StatusNew,
		CreatedAt:        reportNow.Add(-time.Minute),
	}
	ms.put(overdue1)
	ms.put(overdue2)
	ms.put(fresh)

	r.checkDeadlines(context.Background())

	if !overdue1.SLABreached || !overdue2.SLABreached {
		t.Error("expected overdue leads to be flagged")
	}
	if fresh.SLABreached {
		t.Error("expected fresh lead to stay unflagged")
	}

	got := me.events()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	breached := make(map[string]events.LeadSLABreachedEvent)
	for _, pe := range got {
		evt, ok := pe.data.(events.LeadSLABreachedEvent)
		if !ok {
			t.Fatalf("expected LeadSLABreachedEvent, got %T", pe.data)
		}
		if pe.subject != events.SubjectLeadSLABreached(evt.LeadID) {
			t.Errorf("subject %s does not match lead %s", pe.subject, evt.LeadID)
		}
		breached[evt.LeadID] = evt
	}
	evt, ok := breached[overdue1.ID.String()]
	if !ok {
		t.Fatalf("expected breach event for %s", overdue1.ID)
	}
	if evt.AssignedAgent != "sarah" || evt.Temperature != "hot" {
		t.Errorf("unexpected breach payload: %+v", evt)
	}
	if !evt.Deadline.Equal(overdue1.Deadline()) {
		t.Errorf("expected deadline %s, got %s", overdue1.Deadline(), evt.Deadline)
	}

	// Flagged leads drop out of the overdue set on the next sweep.
	r.checkDeadlines(context.Background())
	if got := me.events(); len(got) != 2 {
		t.Errorf("expected no new events on second sweep, got %d", len(got))
	}
}

func TestCheckDeadlinesSkipsResponded(t *testing.T) {
	ms := newMockStore()
	me := &mockEvents{}
	r := newTestReporter(ms, me)

	responded := reportNow.Add(-20 * time.Minute)
	lead := &store.Lead{
		ID:               uuid.New(),
		Temperature:      scoring.Hot,
		AssignedAgent:    "john",
		SLATargetMinutes: 2,
		Status:           store.StatusInProgress,
		CreatedAt:        reportNow.Add(-30 * time.Minute),
		RespondedAt:      &responded,
	}
	ms.put(lead)

	r.checkDeadlines(context.Background())

	if lead.SLABreached {
		t.Error("expected responded lead to stay unflagged")
	}
	if got := me.events(); len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}

func TestCheckDeadlinesMarkError(t *testing.T) {
	ms := newMockStore()
	ms.markErr = errors.New("db down")
	me := &mockEvents{}
	r := newTestReporter(ms, me)

	ms.put(&store.Lead{
		ID:               uuid.New(),
		Temperature:      scoring.Hot,
		AssignedAgent:    "sarah",
		SLATargetMinutes: 2,
		Status:           store.StatusNew,
		CreatedAt:        reportNow.Add(-30 * time.Minute),
	})

	r.checkDeadlines(context.Background())

	if got := me.events(); len(got) != 0 {
		t.Errorf("expected no events when marking fails, got %d", len(got))
	}
}

func TestReporterStartStop(t *testing.T) {
	ms := newMockStore()
	me := &mockEvents{}
	r := New(ms, me, 5*time.Millisecond, 5*time.Millisecond, discardLogger())

	r.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for ms.statsCallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stats loop never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	r.Stop()
	r.Stop()
}
