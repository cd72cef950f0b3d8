package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS leads (
	lead_id UUID PRIMARY KEY,
	budget_band TEXT NOT NULL DEFAULT '',
	move_in_date TIMESTAMPTZ,
	nationality TEXT NOT NULL DEFAULT '',
	area TEXT NOT NULL DEFAULT '',
	property TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	occupants INTEGER NOT NULL DEFAULT 0,
	has_vehicle BOOLEAN NOT NULL DEFAULT FALSE,
	needs_parking BOOLEAN NOT NULL DEFAULT FALSE,
	tenancy_months INTEGER NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	unit_type TEXT NOT NULL DEFAULT '',
	workplace TEXT NOT NULL DEFAULT '',
	score INTEGER NOT NULL DEFAULT 0,
	criteria JSONB,
	temperature TEXT NOT NULL,
	assigned_agent TEXT NOT NULL DEFAULT '',
	sla_target_minutes INTEGER NOT NULL DEFAULT 0,
	responded_at TIMESTAMPTZ,
	response_minutes DOUBLE PRECISION,
	sla_met BOOLEAN,
	sla_breached BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL DEFAULT 'new',
	session_id UUID,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_temperature ON leads (temperature);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status);
CREATE INDEX IF NOT EXISTS idx_leads_assigned_agent ON leads (assigned_agent);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const leadColumns = `lead_id,
	budget_band, move_in_date, nationality, area, property, source,
	occupants, has_vehicle, needs_parking, tenancy_months, gender, unit_type, workplace,
	score, criteria, temperature,
	assigned_agent, sla_target_minutes,
	responded_at, response_minutes, sla_met, sla_breached,
	status, session_id, created_at, updated_at`

func (s *PostgresStore) CreateLead(ctx context.Context, lead *Lead) error {
	prepareLead(lead)
	criteriaJSON, _ := json.Marshal(lead.Criteria)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		lead.ID,
		lead.BudgetBand, lead.MoveInDate, lead.Nationality, lead.Area, lead.Property, lead.Source,
		lead.Occupants, lead.HasVehicle, lead.NeedsParking, lead.TenancyMonths, lead.Gender, lead.UnitType, lead.Workplace,
		lead.Score, criteriaJSON, lead.Temperature,
		lead.AssignedAgent, lead.SLATargetMinutes,
		lead.RespondedAt, lead.ResponseMinutes, lead.SLAMet, lead.SLABreached,
		lead.Status, lead.SessionID, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	l := &Lead{}
	var criteriaJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE lead_id = $1`, id,
	).Scan(
		&l.ID,
		&l.BudgetBand, &l.MoveInDate, &l.Nationality, &l.Area, &l.Property, &l.Source,
		&l.Occupants, &l.HasVehicle, &l.NeedsParking, &l.TenancyMonths, &l.Gender, &l.UnitType, &l.Workplace,
		&l.Score, &criteriaJSON, &l.Temperature,
		&l.AssignedAgent, &l.SLATargetMinutes,
		&l.RespondedAt, &l.ResponseMinutes, &l.SLAMet, &l.SLABreached,
		&l.Status, &l.SessionID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if criteriaJSON != nil {
		_ = json.Unmarshal(criteriaJSON, &l.Criteria)
	}
	return l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Temperature != nil {
		n++
		query += fmt.Sprintf(" AND temperature = $%d", n)
		args = append(args, string(*filter.Temperature))
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.AssignedAgent != "" {
		n++
		query += fmt.Sprintf(" AND assigned_agent = $%d", n)
		args = append(args, filter.AssignedAgent)
	}
	if filter.Nationality != "" {
		n++
		query += fmt.Sprintf(" AND nationality = $%d", n)
		args = append(args, filter.Nationality)
	}
	if filter.Area != "" {
		n++
		query += fmt.Sprintf(" AND area = $%d", n)
		args = append(args, filter.Area)
	}
	if filter.Since != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *filter.Since)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead *Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	criteriaJSON, _ := json.Marshal(lead.Criteria)

	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET
			budget_band = $2, move_in_date = $3, nationality = $4, area = $5, property = $6, source = $7,
			occupants = $8, has_vehicle = $9, needs_parking = $10, tenancy_months = $11,
			gender = $12, unit_type = $13, workplace = $14,
			score = $15, criteria = $16, temperature = $17,
			assigned_agent = $18, sla_target_minutes = $19,
			responded_at = $20, response_minutes = $21, sla_met = $22, sla_breached = $23,
			status = $24, session_id = $25, updated_at = $26
		WHERE lead_id = $1`,
		lead.ID,
		lead.BudgetBand, lead.MoveInDate, lead.Nationality, lead.Area, lead.Property, lead.Source,
		lead.Occupants, lead.HasVehicle, lead.NeedsParking, lead.TenancyMonths,
		lead.Gender, lead.UnitType, lead.Workplace,
		lead.Score, criteriaJSON, lead.Temperature,
		lead.AssignedAgent, lead.SLATargetMinutes,
		lead.RespondedAt, lead.ResponseMinutes, lead.SLAMet, lead.SLABreached,
		lead.Status, lead.SessionID, lead.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) MarkResponded(ctx context.Context, id uuid.UUID, respondedAt time.Time, responseMinutes float64, slaMet bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET
			responded_at = $2, response_minutes = $3, sla_met = $4,
			status = CASE WHEN status = 'new' THEN 'in_progress' ELSE status END,
			updated_at = $5
		WHERE lead_id = $1`,
		id, respondedAt, responseMinutes, slaMet, time.Now().UTC(),
	)
	return err
}

func (s *PostgresStore) MarkSLABreached(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET sla_breached = TRUE, updated_at = $2
		WHERE lead_id = $1`,
		id, time.Now().UTC(),
	)
	return err
}

func (s *PostgresStore) GetOverdueLeads(ctx context.Context, asOf time.Time) ([]*Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE responded_at IS NULL
		  AND sla_breached = FALSE
		  AND created_at + sla_target_minutes * interval '1 minute' <= $1
		ORDER BY created_at ASC`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*LeadStats, error) {
	stats := &LeadStats{
		StatusCounts: map[string]int{},
		HotByAgent:   map[string]int{},
	}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE temperature = 'hot'),
			COUNT(*) FILTER (WHERE temperature = 'warm'),
			COUNT(*) FILTER (WHERE temperature = 'cold'),
			COALESCE(AVG(score), 0),
			COUNT(responded_at),
			COALESCE(SUM(CASE WHEN sla_met THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(response_minutes), 0)
		FROM leads`,
	).Scan(&stats.TotalLeads, &stats.HotLeads, &stats.WarmLeads, &stats.ColdLeads,
		&stats.AvgScore, &stats.RespondedLeads, &stats.SLAMetLeads, &stats.AvgResponseMinutes)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT assigned_agent, COUNT(*)
		FROM leads WHERE temperature = 'hot' AND assigned_agent <> ''
		GROUP BY assigned_agent`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var agent string
		var count int
		if err := rows.Scan(&agent, &count); err != nil {
			return nil, err
		}
		stats.HotByAgent[agent] = count
	}
	return stats, rows.Err()
}

func (s *PostgresStore) GetAgentPerformance(ctx context.Context) ([]*AgentPerformance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT assigned_agent,
			COUNT(*),
			COUNT(*) FILTER (WHERE temperature = 'hot'),
			COUNT(*) FILTER (WHERE temperature = 'warm'),
			COUNT(*) FILTER (WHERE temperature = 'cold'),
			COALESCE(AVG(response_minutes), 0),
			COALESCE(AVG(CASE WHEN sla_met THEN 1.0 ELSE 0.0 END) FILTER (WHERE responded_at IS NOT NULL), 0),
			COUNT(*) FILTER (WHERE status = 'closed_won')
		FROM leads WHERE assigned_agent <> ''
		GROUP BY assigned_agent
		ORDER BY assigned_agent ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []*AgentPerformance
	for rows.Next() {
		p := &AgentPerformance{}
		if err := rows.Scan(&p.AgentID, &p.AssignedLeads, &p.HotLeads, &p.WarmLeads, &p.ColdLeads,
			&p.AvgResponseMinutes, &p.SLAMetRate, &p.ClosedWon); err != nil {
			return nil, err
		}
		perf = append(perf, p)
	}
	return perf, rows.Err()
}

func (s *PostgresStore) GetDailyCounts(ctx context.Context, days int) ([]*DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE temperature = 'hot'),
			COUNT(*) FILTER (WHERE temperature = 'warm'),
			COUNT(*) FILTER (WHERE temperature = 'cold')
		FROM leads WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1 ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*DailyCount
	for rows.Next() {
		c := &DailyCount{}
		if err := rows.Scan(&c.Day, &c.Total, &c.Hot, &c.Warm, &c.Cold); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanLeads(rows pgx.Rows) ([]*Lead, error) {
	var leads []*Lead
	for rows.Next() {
		l := &Lead{}
		var criteriaJSON []byte
		if err := rows.Scan(
			&l.ID,
			&l.BudgetBand, &l.MoveInDate, &l.Nationality, &l.Area, &l.Property, &l.Source,
			&l.Occupants, &l.HasVehicle, &l.NeedsParking, &l.TenancyMonths, &l.Gender, &l.UnitType, &l.Workplace,
			&l.Score, &criteriaJSON, &l.Temperature,
			&l.AssignedAgent, &l.SLATargetMinutes,
			&l.RespondedAt, &l.ResponseMinutes, &l.SLAMet, &l.SLABreached,
			&l.Status, &l.SessionID, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if criteriaJSON != nil {
			_ = json.Unmarshal(criteriaJSON, &l.Criteria)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// prepareLead fills identity and timestamps left unset by the caller.
// Callers backfilling historical leads keep whatever they set.
func prepareLead(lead *Lead) {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.UpdatedAt.IsZero() {
		lead.UpdatedAt = lead.CreatedAt
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
}
