package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HotLeadNotice is pushed to the configured webhook the moment a hot
// lead is assigned, so the agent's channel pings before the SLA clock
// gets anywhere.
type HotLeadNotice struct {
	LeadID           string    `json:"lead_id"`
	AgentID          string    `json:"agent_id"`
	AgentName        string    `json:"agent_name"`
	Score            int       `json:"score"`
	Area             string    `json:"area,omitempty"`
	BudgetBand       string    `json:"budget_band,omitempty"`
	SLATargetMinutes int       `json:"sla_target_minutes"`
	Deadline         time.Time `json:"deadline"`
}

type Notifier interface {
	HotLead(ctx context.Context, notice HotLeadNotice) error
}

type WebhookNotifier struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewWebhookNotifier(url, token string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) HotLead(ctx context.Context, notice HotLeadNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook POST %s: %d %s", n.url, resp.StatusCode, string(body))
	}
	return nil
}
