package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const leadColumns = `id, full_name, phone, state, accident_type, notes, status, created_at, updated_at`

func (s *PostgresStore) CreateLead(ctx context.Context, lead *Lead) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO leads (full_name, phone, state, accident_type, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		lead.FullName, lead.Phone, lead.State, lead.AccidentType, lead.Notes, lead.Status,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (s *PostgresStore) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	l := &Lead{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1`, id,
	).Scan(&l.ID, &l.FullName, &l.Phone, &l.State, &l.AccidentType, &l.Notes, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.State != "" {
		n++
		query += fmt.Sprintf(" AND lower(state) = lower($%d)", n)
		args = append(args, filter.State)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead *Lead) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET
			full_name = $2, phone = $3, state = $4, accident_type = $5,
			notes = $6, status = $7, updated_at = now()
		WHERE id = $1`,
		lead.ID, lead.FullName, lead.Phone, lead.State, lead.AccidentType,
		lead.Notes, lead.Status,
	)
	return err
}

const attorneyColumns = `id, firm_name, licensing_state, geographic_coverage, practice_areas,
	capacity_status, years_experience, created_at, updated_at`

func (s *PostgresStore) CreateAttorney(ctx context.Context, a *Attorney) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO attorneys (firm_name, licensing_state, geographic_coverage,
			practice_areas, capacity_status, years_experience)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		a.FirmName, a.LicensingState, a.GeographicCoverage,
		a.PracticeAreas, a.CapacityStatus, a.YearsExperience,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *PostgresStore) GetAttorney(ctx context.Context, id uuid.UUID) (*Attorney, error) {
	a := &Attorney{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+attorneyColumns+`
		FROM attorneys WHERE id = $1`, id,
	).Scan(&a.ID, &a.FirmName, &a.LicensingState, &a.GeographicCoverage, &a.PracticeAreas,
		&a.CapacityStatus, &a.YearsExperience, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStore) ListAttorneys(ctx context.Context, filter AttorneyFilter) ([]*Attorney, error) {
	query := `SELECT ` + attorneyColumns + ` FROM attorneys WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Capacity != nil {
		n++
		query += fmt.Sprintf(" AND capacity_status = $%d", n)
		args = append(args, string(*filter.Capacity))
	}
	if filter.State != "" {
		n++
		query += fmt.Sprintf(" AND lower(licensing_state) = lower($%d)", n)
		args = append(args, filter.State)
	}

	query += " ORDER BY firm_name ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attorneys []*Attorney
	for rows.Next() {
		a := &Attorney{}
		if err := rows.Scan(&a.ID, &a.FirmName, &a.LicensingState, &a.GeographicCoverage,
			&a.PracticeAreas, &a.CapacityStatus, &a.YearsExperience, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		attorneys = append(attorneys, a)
	}
	return attorneys, rows.Err()
}

func (s *PostgresStore) UpdateAttorney(ctx context.Context, a *Attorney) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE attorneys SET
			firm_name = $2, licensing_state = $3, geographic_coverage = $4,
			practice_areas = $5, capacity_status = $6, years_experience = $7,
			updated_at = now()
		WHERE id = $1`,
		a.ID, a.FirmName, a.LicensingState, a.GeographicCoverage,
		a.PracticeAreas, a.CapacityStatus, a.YearsExperience,
	)
	return err
}

func (s *PostgresStore) CreateCaseRecord(ctx context.Context, c *CaseRecord) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO case_records (attorney_id, status, estimated_value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.AttorneyID, c.Status, c.EstimatedValue,
	).Scan(&c.ID, &c.CreatedAt)
}

func (s *PostgresStore) ListCaseRecords(ctx context.Context) ([]*CaseRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, attorney_id, status, estimated_value, created_at
		FROM case_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*CaseRecord
	for rows.Next() {
		c := &CaseRecord{}
		if err := rows.Scan(&c.ID, &c.AttorneyID, &c.Status, &c.EstimatedValue, &c.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

func (s *PostgresStore) CreateOverflowEntry(ctx context.Context, e *OverflowEntry) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO overflow_pool (lead_id, reason, escalate_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		e.LeadID, e.Reason, e.EscalateAt,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *PostgresStore) ListOverflowEntries(ctx context.Context, limit int) ([]*OverflowEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, lead_id, reason, created_at, escalate_at, escalated_at
		FROM overflow_pool ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOverflowEntries(rows)
}

func (s *PostgresStore) GetDueOverflowEntries(ctx context.Context, now time.Time) ([]*OverflowEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lead_id, reason, created_at, escalate_at, escalated_at
		FROM overflow_pool
		WHERE escalated_at IS NULL AND escalate_at <= $1
		ORDER BY escalate_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOverflowEntries(rows)
}

func (s *PostgresStore) MarkOverflowEscalated(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE overflow_pool SET escalated_at = $2 WHERE id = $1 AND escalated_at IS NULL`, id, at)
	return err
}

func (s *PostgresStore) GetStats(ctx context.Context) (*RouterStats, error) {
	stats := &RouterStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM leads WHERE status = 'new'),
			(SELECT COUNT(*) FROM leads WHERE status = 'assigned'),
			(SELECT COUNT(*) FROM overflow_pool),
			(SELECT COUNT(*) FROM overflow_pool WHERE escalated_at IS NOT NULL),
			(SELECT COUNT(*) FROM attorneys)`,
	).Scan(&stats.TotalLeads, &stats.TotalUnassigned, &stats.TotalAssigned,
		&stats.TotalOverflow, &stats.TotalEscalated, &stats.TotalAttorneys)
	return stats, err
}

func scanLeads(rows pgx.Rows) ([]*Lead, error) {
	var leads []*Lead
	for rows.Next() {
		l := &Lead{}
		if err := rows.Scan(&l.ID, &l.FullName, &l.Phone, &l.State, &l.AccidentType,
			&l.Notes, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func scanOverflowEntries(rows pgx.Rows) ([]*OverflowEntry, error) {
	var entries []*OverflowEntry
	for rows.Next() {
		e := &OverflowEntry{}
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Reason, &e.CreatedAt, &e.EscalateAt, &e.EscalatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
