package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

const budgetColumns = `id, owner_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, is_active`

func (s *Store) CreateBudget(ctx context.Context, b *core.Budget) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (owner_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.OwnerID, nullID(b.CategoryID), b.Name, b.Amount.Cents, string(b.Period),
		b.StartDate.UTC(), nullTime(b.EndDate), b.Threshold(), b.Active,
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("budget id: %w", err)
	}
	b.ID = id
	return nil
}

func (s *Store) GetBudget(ctx context.Context, id, ownerID int64) (*core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanBudget(row)
}

func (s *Store) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, name = ?, amount_cents = ?, period = ?,
		        start_date = ?, end_date = ?, alert_threshold = ?, is_active = ?
		 WHERE id = ? AND owner_id = ?`,
		nullID(b.CategoryID), b.Name, b.Amount.Cents, string(b.Period),
		b.StartDate.UTC(), nullTime(b.EndDate), b.Threshold(), b.Active,
		b.ID, b.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, ownerID int64, limit, offset int) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = ? ORDER BY id DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return s.queryBudgets(ctx, query, args...)
}

func (s *Store) CountBudgets(ctx context.Context, ownerID int64) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return total, nil
}

func (s *Store) ListActiveBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE owner_id = ? AND is_active = 1 ORDER BY id ASC`, ownerID)
}

// ListBudgetOwners returns the distinct owners that have at least one active
// budget; the alert worker iterates these.
func (s *Store) ListBudgetOwners(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT owner_id FROM budgets WHERE is_active = 1 ORDER BY owner_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budget owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (s *Store) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func scanBudget(row rowScanner) (*core.Budget, error) {
	var b core.Budget
	var category sql.NullInt64
	var end sql.NullTime
	err := row.Scan(&b.ID, &b.OwnerID, &category, &b.Name, &b.Amount.Cents,
		&b.Period, &b.StartDate, &end, &b.AlertThreshold, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	if category.Valid {
		c := category.Int64
		b.CategoryID = &c
	}
	if end.Valid {
		t := end.Time
		b.EndDate = &t
	}
	return &b, nil
}
