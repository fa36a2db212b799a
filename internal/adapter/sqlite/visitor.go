package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.VisitorRepository = (*VisitorRepository)(nil)

// VisitorRepository implements domain.VisitorRepository using SQLite.
type VisitorRepository struct {
	db *sql.DB
}

const visitorColumns = `id, name, phone, purpose, flat_id, logged_by_id, entry_time, exit_time, approved, approval_time, approved_by_id, created_at`

func (r *VisitorRepository) Create(ctx context.Context, v domain.Visitor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visitors (`+visitorColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Phone, v.Purpose, v.FlatID, v.LoggedByID,
		formatTime(v.EntryTime), formatNullTime(v.ExitTime),
		v.Approved, formatNullTime(v.ApprovalTime), v.ApprovedByID,
		formatTime(v.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting visitor: %w", err)
	}
	return nil
}

func (r *VisitorRepository) GetByID(ctx context.Context, id string) (domain.Visitor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, id,
	)
	v, err := scanVisitor(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Visitor{}, &domain.NotFoundError{Resource: "visitor", ID: id}
		}
		return domain.Visitor{}, fmt.Errorf("scanning visitor: %w", err)
	}
	return v, nil
}

const visitorSocietyQuery = `SELECT v.id, v.name, v.phone, v.purpose, v.flat_id, v.logged_by_id,
	        v.entry_time, v.exit_time, v.approved, v.approval_time, v.approved_by_id, v.created_at
	 FROM visitors v
	 JOIN flats f ON f.id = v.flat_id
	 JOIN buildings b ON b.id = f.building_id
	 WHERE b.society_id = ?`

func (r *VisitorRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.Visitor, error) {
	return r.list(ctx, visitorSocietyQuery+` ORDER BY v.entry_time DESC`, societyID)
}

func (r *VisitorRepository) ListActiveBySociety(ctx context.Context, societyID string) ([]domain.Visitor, error) {
	return r.list(ctx, visitorSocietyQuery+` AND v.exit_time IS NULL ORDER BY v.entry_time DESC`, societyID)
}

func (r *VisitorRepository) ListPendingBySociety(ctx context.Context, societyID string) ([]domain.Visitor, error) {
	return r.list(ctx, visitorSocietyQuery+` AND v.approved = 0 ORDER BY v.entry_time DESC`, societyID)
}

// Approve sets the approval axis once; a second approval loses the guard.
func (r *VisitorRepository) Approve(ctx context.Context, id, approvedByID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE visitors SET approved = 1, approval_time = ?, approved_by_id = ?
		 WHERE id = ? AND approved = 0`,
		formatTime(at), approvedByID, id,
	)
	if err != nil {
		return fmt.Errorf("approving visitor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "visitor", ID: id}
	}
	return nil
}

// RecordExit sets the exit axis once, leaving approval untouched.
func (r *VisitorRepository) RecordExit(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE visitors SET exit_time = ?
		 WHERE id = ? AND exit_time IS NULL`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("recording visitor exit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "visitor", ID: id}
	}
	return nil
}

func (r *VisitorRepository) list(ctx context.Context, query string, args ...any) ([]domain.Visitor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visitors: %w", err)
	}
	defer rows.Close()

	var out []domain.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning visitor row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVisitor(scan func(dest ...any) error) (domain.Visitor, error) {
	var v domain.Visitor
	var entryTime, createdAt string
	var exitTime, approvalTime sql.NullString
	err := scan(&v.ID, &v.Name, &v.Phone, &v.Purpose, &v.FlatID, &v.LoggedByID,
		&entryTime, &exitTime, &v.Approved, &approvalTime, &v.ApprovedByID, &createdAt)
	if err != nil {
		return domain.Visitor{}, err
	}
	v.EntryTime = parseTime(entryTime)
	v.ExitTime = parseNullTime(exitTime)
	v.ApprovalTime = parseNullTime(approvalTime)
	v.CreatedAt = parseTime(createdAt)
	return v, nil
}
