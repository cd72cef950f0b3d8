package analytics

import (
	"math"

	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
)

// FairnessScore measures how evenly hot leads spread across the agents
// that received any: 100 - (stddev/mean * 100), clamped to [0, 100].
// A perfectly even split scores 100.
func FairnessScore(counts map[string]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / float64(len(counts))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(counts))
	score := 100 - (math.Sqrt(variance)/mean)*100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RoutingAccuracy is the share of hot leads handled by top performers,
// as a percentage of all hot leads.
func RoutingAccuracy(perf []*store.AgentPerformance, topIDs []string) float64 {
	top := make(map[string]bool, len(topIDs))
	for _, id := range topIDs {
		top[id] = true
	}
	var totalHot, topHot int
	for _, p := range perf {
		totalHot += p.HotLeads
		if top[p.AgentID] {
			topHot += p.HotLeads
		}
	}
	if totalHot == 0 {
		return 0
	}
	return float64(topHot) / float64(totalHot) * 100
}

func SLACompliance(met, responded int) float64 {
	if responded == 0 {
		return 0
	}
	return float64(met) / float64(responded) * 100
}

func ConversionRate(won, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(won) / float64(total) * 100
}

// TemperatureShare breaks total lead volume into per-temperature
// percentages.
func TemperatureShare(stats *store.LeadStats) map[scoring.Temperature]float64 {
	share := map[scoring.Temperature]float64{
		scoring.Hot:  0,
		scoring.Warm: 0,
		scoring.Cold: 0,
	}
	if stats == nil || stats.TotalLeads == 0 {
		return share
	}
	total := float64(stats.TotalLeads)
	share[scoring.Hot] = float64(stats.HotLeads) / total * 100
	share[scoring.Warm] = float64(stats.WarmLeads) / total * 100
	share[scoring.Cold] = float64(stats.ColdLeads) / total * 100
	return share
}
