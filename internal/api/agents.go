package api

import (
	"net/http"

	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/store"
)

type AgentsHandler struct {
	store  store.Store
	roster routing.Roster
}

func NewAgentsHandler(st store.Store, roster routing.Roster) *AgentsHandler {
	return &AgentsHandler{store: st, roster: roster}
}

// AgentSummary joins the configured roster entry with live workload
// numbers. Performance is nil for agents with no leads yet.
type AgentSummary struct {
	routing.Agent
	Performance *store.AgentPerformance `json:"performance,omitempty"`
}

func (h *AgentsHandler) List(w http.ResponseWriter, r *http.Request) {
	perf, err := h.store.GetAgentPerformance(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	byID := make(map[string]*store.AgentPerformance, len(perf))
	for _, p := range perf {
		byID[p.AgentID] = p
	}

	out := make([]AgentSummary, 0, len(h.roster))
	for _, agent := range h.roster {
		out = append(out, AgentSummary{Agent: agent, Performance: byID[agent.ID]})
	}
	writeJSON(w, http.StatusOK, out)
}
