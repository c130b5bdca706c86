package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

const recordColumns = `id, owner_id, category_id, amount_cents, kind, description, date, payer_count, is_split, per_share_cents, project_id, created_at`

func (s *Store) CreateRecord(ctx context.Context, r *core.Record) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (owner_id, category_id, amount_cents, kind, description, date, payer_count, is_split, per_share_cents, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OwnerID, r.CategoryID, r.Amount.Cents, string(r.Kind), r.Description,
		r.Date.UTC(), r.PayerCount, r.Split, r.PerShare.Cents, nullID(r.ProjectID),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id, ownerID int64) (*core.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanRecord(row)
}

func (s *Store) UpdateRecord(ctx context.Context, r *core.Record) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET category_id = ?, amount_cents = ?, kind = ?, description = ?,
		        date = ?, payer_count = ?, is_split = ?, per_share_cents = ?, project_id = ?
		 WHERE id = ? AND owner_id = ?`,
		r.CategoryID, r.Amount.Cents, string(r.Kind), r.Description, r.Date.UTC(),
		r.PayerCount, r.Split, r.PerShare.Cents, nullID(r.ProjectID),
		r.ID, r.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, q core.RecordQuery) ([]core.Record, error) {
	query, args := buildRecordQuery(`SELECT `+recordColumns+` FROM records`, q)
	query += ` ORDER BY date DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var recs []core.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, rows.Err()
}

func (s *Store) CountRecords(ctx context.Context, q core.RecordQuery) (int64, error) {
	query, args := buildRecordQuery(`SELECT COUNT(*) FROM records`, q)
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func buildRecordQuery(prefix string, q core.RecordQuery) (string, []any) {
	query := prefix + ` WHERE owner_id = ?`
	args := []any{q.OwnerID}

	if q.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(q.Kind))
	}
	if q.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *q.CategoryID)
	}
	if q.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *q.ProjectID)
	}
	if q.From != nil {
		query += ` AND date >= ?`
		args = append(args, q.From.UTC())
	}
	if q.To != nil {
		query += ` AND date <= ?`
		args = append(args, q.To.UTC())
	}
	return query, args
}

// ListProjectRecords returns every record attached to a project regardless
// of record ownership; project-level statistics join at the project, not the
// transaction.
func (s *Store) ListProjectRecords(ctx context.Context, projectID int64) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE project_id = ? ORDER BY date DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project records: %w", err)
	}
	defer rows.Close()

	var recs []core.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, rows.Err()
}

func scanRecord(row rowScanner) (*core.Record, error) {
	var r core.Record
	var project sql.NullInt64
	err := row.Scan(&r.ID, &r.OwnerID, &r.CategoryID, &r.Amount.Cents, &r.Kind,
		&r.Description, &r.Date, &r.PayerCount, &r.Split, &r.PerShare.Cents,
		&project, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	if project.Valid {
		p := project.Int64
		r.ProjectID = &p
	}
	return &r, nil
}
