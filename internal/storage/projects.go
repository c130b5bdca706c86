package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

const projectColumns = `id, owner_id, created_by, name, description, budget_cents, status, start_date, end_date, created_at`

func (s *Store) CreateProject(ctx context.Context, p *core.Project) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (owner_id, created_by, name, description, budget_cents, status, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.CreatedBy, p.Name, p.Description, p.Budget.Cents, p.Status,
		nullTime(p.StartDate), nullTime(p.EndDate),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("project id: %w", err)
	}
	p.ID = id
	return nil
}

func (s *Store) GetProject(ctx context.Context, id, ownerID int64) (*core.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanProject(row)
}

func (s *Store) UpdateProject(ctx context.Context, p *core.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, budget_cents = ?, status = ?, start_date = ?, end_date = ?
		 WHERE id = ? AND owner_id = ?`,
		p.Name, p.Description, p.Budget.Cents, p.Status, nullTime(p.StartDate), nullTime(p.EndDate),
		p.ID, p.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteProjectCascade removes a project and every record attached to it in
// one transaction; a project owns its records exclusively.
func (s *Store) DeleteProjectCascade(ctx context.Context, id, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context, ownerID int64, status string, limit, offset int) ([]core.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return s.queryProjects(ctx, query, args...)
}

func (s *Store) CountProjects(ctx context.Context, ownerID int64, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM projects WHERE owner_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return total, nil
}

// ListProjectsTouchedBy returns projects the user owns or created on behalf
// of another owner.
func (s *Store) ListProjectsTouchedBy(ctx context.Context, userID int64) ([]core.Project, error) {
	return s.queryProjects(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? OR created_by = ? ORDER BY name ASC, id ASC`,
		userID, userID)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]core.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(row rowScanner) (*core.Project, error) {
	var p core.Project
	var start, end sql.NullTime
	err := row.Scan(&p.ID, &p.OwnerID, &p.CreatedBy, &p.Name, &p.Description,
		&p.Budget.Cents, &p.Status, &start, &end, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if start.Valid {
		t := start.Time
		p.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		p.EndDate = &t
	}
	return &p, nil
}
