package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
)

func (s *Store) CreateInvitation(ctx context.Context, inv *core.Invitation) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (code, issued_by, max_uses, used_count, is_active, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.Code, inv.IssuedBy, inv.MaxUses, inv.UsedCount, inv.Active, nullTime(inv.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("invitation id: %w", err)
	}
	inv.ID = id
	return nil
}

func (s *Store) GetInvitationByCode(ctx context.Context, code string) (*core.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, issued_by, max_uses, used_count, is_active, expires_at, created_at
		 FROM invitations WHERE code = ?`, code)
	return scanInvitation(row)
}

// CodeExists reports whether a code is already taken, active or not.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM invitations WHERE code = ?`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return true, nil
}

// ConsumeInvitation performs the atomic compare-and-increment: the capacity,
// active and expiry guards are evaluated by the store at commit time, so two
// racing consumers cannot both take the last slot. Returns false when no row
// satisfied the guards.
func (s *Store) ConsumeInvitation(ctx context.Context, code string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET used_count = used_count + 1
		 WHERE code = ?
		   AND is_active = 1
		   AND used_count < max_uses
		   AND (expires_at IS NULL OR expires_at > ?)`,
		code, now.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("consume invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume invitation rows: %w", err)
	}
	return n > 0, nil
}

func (s *Store) DeactivateInvitation(ctx context.Context, issuedBy int64, code string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET is_active = 0 WHERE code = ? AND issued_by = ?`,
		code, issuedBy,
	)
	if err != nil {
		return fmt.Errorf("deactivate invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate invitation rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListInvitationsByIssuer(ctx context.Context, issuedBy int64) ([]core.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, issued_by, max_uses, used_count, is_active, expires_at, created_at
		 FROM invitations WHERE issued_by = ? ORDER BY created_at DESC, id DESC`, issuedBy)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invs []core.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (*core.Invitation, error) {
	var inv core.Invitation
	var expires sql.NullTime
	err := row.Scan(&inv.ID, &inv.Code, &inv.IssuedBy, &inv.MaxUses, &inv.UsedCount,
		&inv.Active, &expires, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	if expires.Valid {
		t := expires.Time
		inv.ExpiresAt = &t
	}
	return &inv, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
