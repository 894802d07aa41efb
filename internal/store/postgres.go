package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) SaveDraft(ctx context.Context, id, status string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, status, doc)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, doc=EXCLUDED.doc, updated_at=NOW()
	`, id, status, string(doc))
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDraft(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM drafts WHERE id=$1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) SaveProject(ctx context.Context, project Project, doc []byte) error {
	styles, err := json.Marshal(orEmpty(project.Styles))
	if err != nil {
		return fmt.Errorf("marshal project styles: %w", err)
	}
	moods, err := json.Marshal(orEmpty(project.Moods))
	if err != nil {
		return fmt.Errorf("marshal project moods: %w", err)
	}
	rooms, err := json.Marshal(orEmpty(project.Rooms))
	if err != nil {
		return fmt.Errorf("marshal project rooms: %w", err)
	}
	contradictions, err := json.Marshal(orEmpty(project.Contradictions))
	if err != nil {
		return fmt.Errorf("marshal project contradictions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, draft_id, title, city, property_type, total_m2, styles, moods, palette, budget_min, budget_max, rooms, contradictions, doc, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb, $15)
		ON CONFLICT (draft_id) DO UPDATE SET
			title=EXCLUDED.title, city=EXCLUDED.city, property_type=EXCLUDED.property_type,
			total_m2=EXCLUDED.total_m2, styles=EXCLUDED.styles, moods=EXCLUDED.moods,
			palette=EXCLUDED.palette, budget_min=EXCLUDED.budget_min, budget_max=EXCLUDED.budget_max,
			rooms=EXCLUDED.rooms, contradictions=EXCLUDED.contradictions, doc=EXCLUDED.doc,
			submitted_at=EXCLUDED.submitted_at
	`, project.ID, project.DraftID, project.Title, project.City, project.PropertyType, project.TotalM2,
		string(styles), string(moods), project.Palette, project.BudgetMin, project.BudgetMax,
		string(rooms), string(contradictions), string(doc), project.SubmittedAt)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (Project, []byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, draft_id, title, city, property_type, total_m2, styles, moods, palette, budget_min, budget_max, rooms, contradictions, doc, submitted_at
		FROM projects
		WHERE id=$1 OR draft_id=$1
	`, id)
	return scanProject(row)
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, draft_id, title, city, property_type, total_m2, styles, moods, palette, budget_min, budget_max, rooms, contradictions, submitted_at
		FROM projects
		ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		item, err := scanProjectSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

// SearchProjects is the fallback when the search index is unavailable:
// a case-insensitive substring match over the denormalized columns.
func (s *PostgresStore) SearchProjects(ctx context.Context, query string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, draft_id, title, city, property_type, total_m2, styles, moods, palette, budget_min, budget_max, rooms, contradictions, submitted_at
		FROM projects
		WHERE title ILIKE '%' || $1 || '%'
		   OR city ILIKE '%' || $1 || '%'
		   OR property_type ILIKE '%' || $1 || '%'
		   OR styles::text ILIKE '%' || $1 || '%'
		ORDER BY submitted_at DESC
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		item, err := scanProjectSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project search: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead Lead) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (email, draft_id, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (email, source) DO NOTHING
	`, lead.Email, lead.DraftID, lead.Source)
	if err != nil {
		return fmt.Errorf("save lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, COALESCE(draft_id, ''), source, created_at
		FROM leads
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		var item Lead
		if err := rows.Scan(&item.Email, &item.DraftID, &item.Source, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return items, nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, []byte, error) {
	var item Project
	var styles, moods, rooms, contradictions, doc []byte
	var submittedAt time.Time
	err := row.Scan(&item.ID, &item.DraftID, &item.Title, &item.City, &item.PropertyType, &item.TotalM2,
		&styles, &moods, &item.Palette, &item.BudgetMin, &item.BudgetMax, &rooms, &contradictions, &doc, &submittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, nil, ErrNotFound
	}
	if err != nil {
		return Project{}, nil, fmt.Errorf("scan project: %w", err)
	}
	item.SubmittedAt = submittedAt
	decodeLists(&item, styles, moods, rooms, contradictions)
	return item, doc, nil
}

func scanProjectSummary(row rowScanner) (Project, error) {
	var item Project
	var styles, moods, rooms, contradictions []byte
	err := row.Scan(&item.ID, &item.DraftID, &item.Title, &item.City, &item.PropertyType, &item.TotalM2,
		&styles, &moods, &item.Palette, &item.BudgetMin, &item.BudgetMax, &rooms, &contradictions, &item.SubmittedAt)
	if err != nil {
		return Project{}, fmt.Errorf("scan project summary: %w", err)
	}
	decodeLists(&item, styles, moods, rooms, contradictions)
	return item, nil
}

func decodeLists(item *Project, styles, moods, rooms, contradictions []byte) {
	_ = json.Unmarshal(styles, &item.Styles)
	_ = json.Unmarshal(moods, &item.Moods)
	_ = json.Unmarshal(rooms, &item.Rooms)
	_ = json.Unmarshal(contradictions, &item.Contradictions)
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
