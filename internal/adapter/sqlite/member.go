package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.MemberRepository = (*MemberRepository)(nil)

// MemberRepository implements domain.MemberRepository using SQLite.
type MemberRepository struct {
	db *sql.DB
}

const memberColumns = `id, name, phone, email, relationship, owner, approved, flat_id, user_id, created_at, updated_at`

func (r *MemberRepository) Create(ctx context.Context, m domain.FlatMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flat_members (`+memberColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Phone, m.Email, m.Relationship, m.Owner, m.Approved,
		m.FlatID, m.UserID, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting flat member: %w", err)
	}
	return nil
}

// CreateFirst claims first-member status for a flat. The insert is guarded on
// the flat having no members yet, in one statement, so of two concurrent
// claims exactly one lands; the loser sees Conflict and is created as a
// regular pending member instead.
func (r *MemberRepository) CreateFirst(ctx context.Context, m domain.FlatMember) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO flat_members (`+memberColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM flat_members WHERE flat_id = ?)`,
		m.ID, m.Name, m.Phone, m.Email, m.Relationship, m.Owner, m.Approved,
		m.FlatID, m.UserID, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
		m.FlatID,
	)
	if err != nil {
		return fmt.Errorf("inserting first flat member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.ConflictError{Resource: "flat member", ID: m.FlatID}
	}
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (domain.FlatMember, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM flat_members WHERE id = ?`, id,
	)
	m, err := scanMember(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.FlatMember{}, &domain.NotFoundError{Resource: "flat member", ID: id}
		}
		return domain.FlatMember{}, fmt.Errorf("scanning flat member: %w", err)
	}
	return m, nil
}

func (r *MemberRepository) ListByFlat(ctx context.Context, flatID string) ([]domain.FlatMember, error) {
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM flat_members WHERE flat_id = ? ORDER BY created_at`, flatID,
	)
}

func (r *MemberRepository) ListOwnersByFlat(ctx context.Context, flatID string) ([]domain.FlatMember, error) {
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM flat_members WHERE flat_id = ? AND owner = 1 ORDER BY created_at`, flatID,
	)
}

func (r *MemberRepository) ListByUser(ctx context.Context, userID string) ([]domain.FlatMember, error) {
	return r.list(ctx,
		`SELECT `+memberColumns+` FROM flat_members WHERE user_id = ? ORDER BY created_at`, userID,
	)
}

func (r *MemberRepository) ListPendingBySociety(ctx context.Context, societyID string) ([]domain.FlatMember, error) {
	return r.list(ctx,
		`SELECT m.id, m.name, m.phone, m.email, m.relationship, m.owner, m.approved,
		        m.flat_id, m.user_id, m.created_at, m.updated_at
		 FROM flat_members m
		 JOIN flats f ON f.id = m.flat_id
		 JOIN buildings b ON b.id = f.building_id
		 WHERE b.society_id = ? AND m.approved = 0
		 ORDER BY m.created_at`, societyID,
	)
}

// Approve is a guarded commit: it only touches a currently unapproved row,
// so exactly one of two concurrent approvers wins.
func (r *MemberRepository) Approve(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flat_members SET approved = 1, updated_at = ?
		 WHERE id = ? AND approved = 0`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("approving flat member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "flat member", ID: id}
	}
	return nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flat_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting flat member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "flat member", ID: id}
	}
	return nil
}

func (r *MemberRepository) list(ctx context.Context, query string, args ...any) ([]domain.FlatMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing flat members: %w", err)
	}
	defer rows.Close()

	var out []domain.FlatMember
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning flat member row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMember(scan func(dest ...any) error) (domain.FlatMember, error) {
	var m domain.FlatMember
	var createdAt, updatedAt string
	err := scan(&m.ID, &m.Name, &m.Phone, &m.Email, &m.Relationship, &m.Owner, &m.Approved,
		&m.FlatID, &m.UserID, &createdAt, &updatedAt)
	if err != nil {
		return domain.FlatMember{}, err
	}
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}
