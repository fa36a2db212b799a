package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.AllocationRepository = (*AllocationRepository)(nil)

// AllocationRepository implements domain.AllocationRepository using SQLite.
type AllocationRepository struct {
	db *sql.DB
}

const allocationColumns = `id, flat_id, user_id, status, resident_type, occupation, family_members, created_at, updated_at`

func (r *AllocationRepository) Create(ctx context.Context, a domain.FlatAllocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flat_allocations (`+allocationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FlatID, a.UserID, string(a.Status), a.ResidentType, a.Occupation,
		a.FamilyMembers, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting allocation: %w", err)
	}
	return nil
}

func (r *AllocationRepository) GetByID(ctx context.Context, id string) (domain.FlatAllocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM flat_allocations WHERE id = ?`, id,
	)
	a, err := scanAllocation(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.FlatAllocation{}, &domain.NotFoundError{Resource: "allocation", ID: id}
		}
		return domain.FlatAllocation{}, fmt.Errorf("scanning allocation: %w", err)
	}
	return a, nil
}

func (r *AllocationRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.FlatAllocation, error) {
	return r.list(ctx,
		`SELECT a.id, a.flat_id, a.user_id, a.status, a.resident_type, a.occupation,
		        a.family_members, a.created_at, a.updated_at
		 FROM flat_allocations a
		 JOIN flats f ON f.id = a.flat_id
		 JOIN buildings b ON b.id = f.building_id
		 WHERE b.society_id = ?
		 ORDER BY a.created_at DESC`, societyID,
	)
}

func (r *AllocationRepository) ListByUser(ctx context.Context, userID string) ([]domain.FlatAllocation, error) {
	return r.list(ctx,
		`SELECT `+allocationColumns+` FROM flat_allocations
		 WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
}

// UpdateStatusIfPending is the single-writer commit for the allocation state
// machine: the UPDATE only matches a still-pending row. Zero rows affected
// means either the record is gone (NotFound) or a concurrent transition
// already won (Conflict).
func (r *AllocationRepository) UpdateStatusIfPending(ctx context.Context, id string, status domain.AllocationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flat_allocations SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), formatTime(time.Now()), id, string(domain.AllocationPending),
	)
	if err != nil {
		return fmt.Errorf("updating allocation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "allocation", ID: id}
	}
	return nil
}

// ApproveIfPending commits the approval and the flat's occupancy flip in one
// transaction, keeping the pending-only CAS as the guard. Any failure rolls
// the whole approval back, so the caller never sees an APPROVED allocation
// next to a VACANT flat.
func (r *AllocationRepository) ApproveIfPending(ctx context.Context, id, flatID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning approval transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE flat_allocations SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(domain.AllocationApproved), formatTime(time.Now()), id, string(domain.AllocationPending),
	)
	if err != nil {
		return fmt.Errorf("updating allocation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM flat_allocations WHERE id = ?`, id,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking allocation: %w", err)
		}
		if count == 0 {
			return &domain.NotFoundError{Resource: "allocation", ID: id}
		}
		return &domain.ConflictError{Resource: "allocation", ID: id}
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE flats SET occupied_status = ?, updated_at = ? WHERE id = ?`,
		string(domain.OccupiedStatusOccupied), formatTime(time.Now()), flatID,
	)
	if err != nil {
		return fmt.Errorf("marking flat occupied: %w", err)
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "flat", ID: flatID}
	}

	return tx.Commit()
}

func (r *AllocationRepository) list(ctx context.Context, query string, args ...any) ([]domain.FlatAllocation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.FlatAllocation
	for rows.Next() {
		a, err := scanAllocation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning allocation row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAllocation(scan func(dest ...any) error) (domain.FlatAllocation, error) {
	var a domain.FlatAllocation
	var status, createdAt, updatedAt string
	err := scan(&a.ID, &a.FlatID, &a.UserID, &status, &a.ResidentType, &a.Occupation,
		&a.FamilyMembers, &createdAt, &updatedAt)
	if err != nil {
		return domain.FlatAllocation{}, err
	}
	a.Status = domain.AllocationStatus(status)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}
