package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/catalog"
	"github.com/huenthong/spacifychat/internal/chat"
)

type ChatHandler struct {
	engine *chat.Engine
}

func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// SessionResponse is what every chat endpoint returns: the session
// state, the assistant's latest replies and the quick-reply options
// for the current stage.
type SessionResponse struct {
	SessionID  uuid.UUID      `json:"session_id"`
	Stage      chat.Stage     `json:"stage"`
	Area       string         `json:"area,omitempty"`
	Property   string         `json:"property,omitempty"`
	LeadID     *uuid.UUID     `json:"lead_id,omitempty"`
	Replies    []string       `json:"replies"`
	Options    []string       `json:"options,omitempty"`
	Transcript []chat.Message `json:"transcript,omitempty"`
}

// MessageRequest is the visitor's turn. Type selects which field
// carries the payload.
type MessageRequest struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	Area     string        `json:"area,omitempty"`
	Property string        `json:"property,omitempty"`
	Inquiry  *chat.Inquiry `json:"inquiry,omitempty"`
	Proceed  *bool         `json:"proceed,omitempty"`
}

func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, replies, err := h.engine.StartSession(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(session, replies, false))
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	session, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session, nil, true))
}

func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var (
		session *chat.Session
		replies []string
	)
	switch req.Type {
	case "text":
		session, replies, err = h.engine.HandleText(r.Context(), id, req.Text)
	case "select_area":
		session, replies, err = h.engine.SelectArea(r.Context(), id, req.Area)
	case "select_property":
		session, replies, err = h.engine.SelectProperty(r.Context(), id, req.Property)
	case "inquiry":
		if req.Inquiry == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "inquiry required"})
			return
		}
		session, replies, err = h.engine.SubmitInquiry(r.Context(), id, *req.Inquiry)
	case "confirm_budget":
		if req.Proceed == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "proceed required"})
			return
		}
		session, replies, err = h.engine.ConfirmBudget(r.Context(), id, *req.Proceed)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown message type"})
		return
	}
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session, replies, false))
}

func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	if err := h.engine.EndSession(r.Context(), id); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended", "session_id": id.String()})
}

func sessionResponse(s *chat.Session, replies []string, withTranscript bool) SessionResponse {
	if replies == nil {
		replies = []string{}
	}
	resp := SessionResponse{
		SessionID: s.ID,
		Stage:     s.Stage,
		Area:      s.Area,
		Property:  s.Property,
		LeadID:    s.LeadID,
		Replies:   replies,
		Options:   stageOptions(s),
	}
	if withTranscript {
		resp.Transcript = s.Transcript
	}
	return resp
}

// stageOptions lists the quick replies the widget should offer for the
// session's current stage.
func stageOptions(s *chat.Session) []string {
	switch s.Stage {
	case chat.StageAreaSelect:
		return catalog.Areas()
	case chat.StagePropertySelect:
		return catalog.Properties(s.Area)
	case chat.StageInquiryForm:
		return catalog.BudgetBands()
	case chat.StageBudgetConfirm:
		return []string{"yes", "no"}
	}
	return nil
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, chat.ErrStage):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, chat.ErrUnknownArea), errors.Is(err, chat.ErrUnknownProperty), errors.Is(err, chat.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
