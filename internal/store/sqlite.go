package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
	lead_id TEXT PRIMARY KEY,
	budget_band TEXT NOT NULL DEFAULT '',
	move_in_date TIMESTAMP,
	nationality TEXT NOT NULL DEFAULT '',
	area TEXT NOT NULL DEFAULT '',
	property TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	occupants INTEGER NOT NULL DEFAULT 0,
	has_vehicle INTEGER NOT NULL DEFAULT 0,
	needs_parking INTEGER NOT NULL DEFAULT 0,
	tenancy_months INTEGER NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	unit_type TEXT NOT NULL DEFAULT '',
	workplace TEXT NOT NULL DEFAULT '',
	score INTEGER NOT NULL DEFAULT 0,
	criteria TEXT,
	temperature TEXT NOT NULL,
	assigned_agent TEXT NOT NULL DEFAULT '',
	sla_target_minutes INTEGER NOT NULL DEFAULT 0,
	responded_at TIMESTAMP,
	response_minutes REAL,
	sla_met INTEGER,
	sla_breached INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'new',
	session_id TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_temperature ON leads (temperature);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status);
CREATE INDEX IF NOT EXISTS idx_leads_assigned_agent ON leads (assigned_agent);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at);
`

// SQLiteStore is the embedded backend, used for the demo and for local
// development. modernc.org/sqlite is pure Go, so no CGO is required.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *Lead) error {
	prepareLead(lead)
	criteriaJSON, _ := json.Marshal(lead.Criteria)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID,
		lead.BudgetBand, lead.MoveInDate, lead.Nationality, lead.Area, lead.Property, lead.Source,
		lead.Occupants, lead.HasVehicle, lead.NeedsParking, lead.TenancyMonths, lead.Gender, lead.UnitType, lead.Workplace,
		lead.Score, criteriaJSON, string(lead.Temperature),
		lead.AssignedAgent, lead.SLATargetMinutes,
		lead.RespondedAt, lead.ResponseMinutes, lead.SLAMet, lead.SLABreached,
		string(lead.Status), lead.SessionID, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE lead_id = ?`, id)
	lead, err := scanSQLiteLead(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return lead, err
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}

	if filter.Temperature != nil {
		query += " AND temperature = ?"
		args = append(args, string(*filter.Temperature))
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.AssignedAgent != "" {
		query += " AND assigned_agent = ?"
		args = append(args, filter.AssignedAgent)
	}
	if filter.Nationality != "" {
		query += " AND nationality = ?"
		args = append(args, filter.Nationality)
	}
	if filter.Area != "" {
		query += " AND area = ?"
		args = append(args, filter.Area)
	}
	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.Since)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteLeads(rows)
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, lead *Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	criteriaJSON, _ := json.Marshal(lead.Criteria)

	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET
			budget_band = ?, move_in_date = ?, nationality = ?, area = ?, property = ?, source = ?,
			occupants = ?, has_vehicle = ?, needs_parking = ?, tenancy_months = ?,
			gender = ?, unit_type = ?, workplace = ?,
			score = ?, criteria = ?, temperature = ?,
			assigned_agent = ?, sla_target_minutes = ?,
			responded_at = ?, response_minutes = ?, sla_met = ?, sla_breached = ?,
			status = ?, session_id = ?, updated_at = ?
		WHERE lead_id = ?`,
		lead.BudgetBand, lead.MoveInDate, lead.Nationality, lead.Area, lead.Property, lead.Source,
		lead.Occupants, lead.HasVehicle, lead.NeedsParking, lead.TenancyMonths,
		lead.Gender, lead.UnitType, lead.Workplace,
		lead.Score, criteriaJSON, string(lead.Temperature),
		lead.AssignedAgent, lead.SLATargetMinutes,
		lead.RespondedAt, lead.ResponseMinutes, lead.SLAMet, lead.SLABreached,
		string(lead.Status), lead.SessionID, lead.UpdatedAt,
		lead.ID,
	)
	return err
}

func (s *SQLiteStore) MarkResponded(ctx context.Context, id uuid.UUID, respondedAt time.Time, responseMinutes float64, slaMet bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET
			responded_at = ?, response_minutes = ?, sla_met = ?,
			status = CASE WHEN status = 'new' THEN 'in_progress' ELSE status END,
			updated_at = ?
		WHERE lead_id = ?`,
		respondedAt, responseMinutes, slaMet, time.Now().UTC(), id,
	)
	return err
}

func (s *SQLiteStore) MarkSLABreached(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET sla_breached = 1, updated_at = ?
		WHERE lead_id = ?`,
		time.Now().UTC(), id,
	)
	return err
}

func (s *SQLiteStore) GetOverdueLeads(ctx context.Context, asOf time.Time) ([]*Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE responded_at IS NULL
		  AND sla_breached = 0
		  AND datetime(created_at, '+' || sla_target_minutes || ' minutes') <= datetime(?)
		ORDER BY created_at ASC`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteLeads(rows)
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*LeadStats, error) {
	stats := &LeadStats{
		StatusCounts: map[string]int{},
		HotByAgent:   map[string]int{},
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN temperature = 'hot' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN temperature = 'warm' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN temperature = 'cold' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(score), 0),
			COUNT(responded_at),
			COALESCE(SUM(CASE WHEN sla_met = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(response_minutes), 0)
		FROM leads`,
	).Scan(&stats.TotalLeads, &stats.HotLeads, &stats.WarmLeads, &stats.ColdLeads,
		&stats.AvgScore, &stats.RespondedLeads, &stats.SLAMetLeads, &stats.AvgResponseMinutes)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
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

	rows, err = s.db.QueryContext(ctx, `
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

func (s *SQLiteStore) GetAgentPerformance(ctx context.Context) ([]*AgentPerformance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assigned_agent,
			COUNT(*),
			SUM(CASE WHEN temperature = 'hot' THEN 1 ELSE 0 END),
			SUM(CASE WHEN temperature = 'warm' THEN 1 ELSE 0 END),
			SUM(CASE WHEN temperature = 'cold' THEN 1 ELSE 0 END),
			COALESCE(AVG(response_minutes), 0),
			COALESCE(AVG(CASE WHEN responded_at IS NOT NULL THEN CASE WHEN sla_met = 1 THEN 1.0 ELSE 0.0 END END), 0),
			SUM(CASE WHEN status = 'closed_won' THEN 1 ELSE 0 END)
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

func (s *SQLiteStore) GetDailyCounts(ctx context.Context, days int) ([]*DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at) AS day,
			COUNT(*),
			SUM(CASE WHEN temperature = 'hot' THEN 1 ELSE 0 END),
			SUM(CASE WHEN temperature = 'warm' THEN 1 ELSE 0 END),
			SUM(CASE WHEN temperature = 'cold' THEN 1 ELSE 0 END)
		FROM leads WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC`, since)
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

func scanSQLiteLeads(rows *sql.Rows) ([]*Lead, error) {
	var leads []*Lead
	for rows.Next() {
		l, err := scanSQLiteLead(rows.Scan)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// scanSQLiteLead reads one row in leadColumns order. database/sql has no
// NULL-aware pointer scanning, so nullable columns go through sql.Null*.
func scanSQLiteLead(scan func(dest ...interface{}) error) (*Lead, error) {
	l := &Lead{}
	var (
		criteriaJSON    []byte
		moveIn          sql.NullTime
		respondedAt     sql.NullTime
		responseMinutes sql.NullFloat64
		slaMet          sql.NullBool
		sessionID       sql.NullString
	)
	err := scan(
		&l.ID,
		&l.BudgetBand, &moveIn, &l.Nationality, &l.Area, &l.Property, &l.Source,
		&l.Occupants, &l.HasVehicle, &l.NeedsParking, &l.TenancyMonths, &l.Gender, &l.UnitType, &l.Workplace,
		&l.Score, &criteriaJSON, &l.Temperature,
		&l.AssignedAgent, &l.SLATargetMinutes,
		&respondedAt, &responseMinutes, &slaMet, &l.SLABreached,
		&l.Status, &sessionID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if moveIn.Valid {
		t := moveIn.Time
		l.MoveInDate = &t
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		l.RespondedAt = &t
	}
	if responseMinutes.Valid {
		v := responseMinutes.Float64
		l.ResponseMinutes = &v
	}
	if slaMet.Valid {
		b := slaMet.Bool
		l.SLAMet = &b
	}
	if sessionID.Valid {
		if id, err := uuid.Parse(sessionID.String); err == nil {
			l.SessionID = &id
		}
	}
	if criteriaJSON != nil {
		_ = json.Unmarshal(criteriaJSON, &l.Criteria)
	}
	return l, nil
}
