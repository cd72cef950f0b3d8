// Package report runs the periodic background work: a stats pulse that
// publishes dashboard snapshots, and an SLA watch that flags leads whose
// response deadline has passed.
package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/huenthong/spacifychat/internal/events"
	"github.com/huenthong/spacifychat/internal/store"
)

type Reporter struct {
	store  store.Store
	events events.Client
	logger *slog.Logger

	statsInterval time.Duration
	slaInterval   time.Duration
	now           func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(st store.Store, ev events.Client, statsInterval, slaInterval time.Duration, logger *slog.Logger) *Reporter {
	if statsInterval <= 0 {
		statsInterval = 30 * time.Second
	}
	if slaInterval <= 0 {
		slaInterval = 30 * time.Second
	}
	return &Reporter{
		store:         st,
		events:        ev,
		logger:        logger,
		statsInterval: statsInterval,
		slaInterval:   slaInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

func (r *Reporter) Start(ctx context.Context) {
	r.wg.Add(2)
	go r.statsLoop(ctx)
	go r.slaLoop(ctx)
}

func (r *Reporter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Reporter) statsLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.publishStats(ctx)
		}
	}
}

func (r *Reporter) slaLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.slaInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkDeadlines(ctx)
		}
	}
}

func (r *Reporter) publishStats(ctx context.Context) {
	stats, err := r.store.GetStats(ctx)
	if err != nil {
		r.logger.Error("failed to get lead stats", "error", err)
		return
	}

	r.logger.Info("stats pulse",
		"total", stats.TotalLeads,
		"hot", stats.HotLeads,
		"warm", stats.WarmLeads,
		"cold", stats.ColdLeads,
		"avg_score", stats.AvgScore)

	if r.events == nil {
		return
	}
	err = r.events.Publish(events.SubjectStatsSnapshot, events.StatsSnapshotEvent{
		TotalLeads: stats.TotalLeads,
		HotLeads:   stats.HotLeads,
		WarmLeads:  stats.WarmLeads,
		ColdLeads:  stats.ColdLeads,
		AvgScore:   stats.AvgScore,
		Timestamp:  r.now().UTC(),
	})
	if err != nil {
		r.logger.Warn("failed to publish stats snapshot", "error", err)
	}
}

func (r *Reporter) checkDeadlines(ctx context.Context) {
	overdue, err := r.store.GetOverdueLeads(ctx, r.now())
	if err != nil {
		r.logger.Error("failed to get overdue leads", "error", err)
		return
	}

	for _, lead := range overdue {
		if err := r.store.MarkSLABreached(ctx, lead.ID); err != nil {
			r.logger.Error("failed to mark sla breach", "lead_id", lead.ID, "error", err)
			continue
		}
		r.logger.Warn("lead sla breached",
			"lead_id", lead.ID,
			"agent", lead.AssignedAgent,
			"temperature", lead.Temperature,
			"deadline", lead.Deadline())
		if r.events != nil {
			_ = r.events.Publish(events.SubjectLeadSLABreached(lead.ID.String()), events.LeadSLABreachedEvent{
				LeadID:        lead.ID.String(),
				AssignedAgent: lead.AssignedAgent,
				Temperature:   string(lead.Temperature),
				Deadline:      lead.Deadline(),
			})
		}
	}
}
