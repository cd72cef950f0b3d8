package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/leads"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
)

type LeadsHandler struct {
	service *leads.Service
	store   store.Store
	router  *routing.Router
}

func NewLeadsHandler(svc *leads.Service, st store.Store, rt *routing.Router) *LeadsHandler {
	return &LeadsHandler{service: svc, store: st, router: rt}
}

func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leads.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lead, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.LeadFilter{
		AssignedAgent: r.URL.Query().Get("agent"),
		Nationality:   r.URL.Query().Get("nationality"),
		Area:          r.URL.Query().Get("area"),
	}
	if t := r.URL.Query().Get("temperature"); t != "" {
		temp := scoring.Temperature(t)
		if !temp.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid temperature"})
			return
		}
		filter.Temperature = &temp
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := store.LeadStatus(s)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid since timestamp"})
			return
		}
		filter.Since = &since
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	list, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if list == nil {
		list = []*store.Lead{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	lead, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// ExplainResponse shows how a lead earned its score: one entry per
// criterion plus the thresholds the score was classified against.
type ExplainResponse struct {
	LeadID      uuid.UUID                `json:"lead_id"`
	Score       int                      `json:"score"`
	Temperature scoring.Temperature      `json:"temperature"`
	Thresholds  scoring.Thresholds       `json:"thresholds"`
	Criteria    []scoring.CriterionScore `json:"criteria"`
}

func (h *LeadsHandler) Explain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	lead, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}

	resp := ExplainResponse{
		LeadID:      lead.ID,
		Score:       lead.Score,
		Temperature: lead.Temperature,
		Thresholds:  h.router.Thresholds(),
		Criteria:    lead.Criteria,
	}
	if resp.Criteria == nil {
		resp.Criteria = []scoring.CriterionScore{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LeadsHandler) Response(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	// The body is optional; an empty POST records the response as now.
	var body struct {
		RespondedAt *time.Time `json:"responded_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	respondedAt := time.Now().UTC()
	if body.RespondedAt != nil {
		respondedAt = *body.RespondedAt
	}

	lead, err := h.service.RecordResponse(r.Context(), id, respondedAt)
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		case errors.Is(err, leads.ErrAlreadyResponded):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "lead already responded"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lead, err := h.service.UpdateStatus(r.Context(), id, store.LeadStatus(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		case errors.Is(err, leads.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
