package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

const categoryColumns = `id, name, kind, level, parent_id, owner_id, is_system, icon, color, sort_order, is_active`

func (s *Store) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, kind, level, parent_id, owner_id, is_system, icon, color, sort_order, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, string(c.Kind), string(c.Level), nullID(c.ParentID), ownerValue(c),
		c.System, c.Icon, c.Color, c.SortOrder, c.Active,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	c.ID = id
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (s *Store) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ?, sort_order = ? WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.SortOrder, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeactivateCategoryCascade soft-deletes a category and, when it is primary,
// every secondary child, inside one transaction. Returns the number of
// categories deactivated.
func (s *Store) DeactivateCategoryCascade(ctx context.Context, id, ownerID int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin deactivate: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE categories SET is_active = 0
		 WHERE id = ? AND owner_id = ? AND is_system = 0 AND is_active = 1`,
		id, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate category rows: %w", err)
	}
	if n == 0 {
		return 0, core.ErrNotFound
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE categories SET is_active = 0 WHERE parent_id = ? AND is_active = 1`, id)
	if err != nil {
		return 0, fmt.Errorf("deactivate children: %w", err)
	}
	children, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate children rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit deactivate: %w", err)
	}
	return n + children, nil
}

func (s *Store) ListCategories(ctx context.Context, q core.CategoryQuery) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE 1=1`
	var args []any

	if q.System {
		query += ` AND is_system = 1`
	} else {
		query += ` AND owner_id = ?`
		args = append(args, q.OwnerID)
	}
	if q.Level != "" {
		query += ` AND level = ?`
		args = append(args, string(q.Level))
	}
	if q.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(q.Kind))
	}
	if q.ParentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *q.ParentID)
	}
	if q.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// CategoryNameTaken checks the duplicate-name scope: same owner, level and
// parent, counting only active categories.
func (s *Store) CategoryNameTaken(ctx context.Context, ownerID int64, level core.CategoryLevel, parentID *int64, name string, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM categories
		 WHERE name = ? AND owner_id = ? AND level = ? AND is_active = 1 AND id != ?`
	args := []any{name, ownerID, string(level), excludeID}
	if parentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	}

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return true, nil
}

func scanCategory(row rowScanner) (*core.Category, error) {
	var c core.Category
	var parent, owner sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.Level, &parent, &owner,
		&c.System, &c.Icon, &c.Color, &c.SortOrder, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	if parent.Valid {
		p := parent.Int64
		c.ParentID = &p
	}
	if owner.Valid {
		c.OwnerID = owner.Int64
	}
	return &c, nil
}

func ownerValue(c *core.Category) sql.NullInt64 {
	if c.System {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: c.OwnerID, Valid: true}
}
