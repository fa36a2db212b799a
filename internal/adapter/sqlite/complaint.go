package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.ComplaintRepository = (*ComplaintRepository)(nil)

// ComplaintRepository implements domain.ComplaintRepository using SQLite.
type ComplaintRepository struct {
	db *sql.DB
}

const complaintColumns = `id, title, description, status, flat_id, raised_by_id, resolution, resolved_at, created_at, updated_at`

func (r *ComplaintRepository) Create(ctx context.Context, c domain.Complaint) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO complaints (`+complaintColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, string(c.Status), c.FlatID, c.RaisedByID,
		c.Resolution, formatNullTime(c.ResolvedAt),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting complaint: %w", err)
	}
	return nil
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (domain.Complaint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id,
	)
	c, err := scanComplaint(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Complaint{}, &domain.NotFoundError{Resource: "complaint", ID: id}
		}
		return domain.Complaint{}, fmt.Errorf("scanning complaint: %w", err)
	}
	return c, nil
}

func (r *ComplaintRepository) ListByFlat(ctx context.Context, flatID string) ([]domain.Complaint, error) {
	return r.list(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE flat_id = ? ORDER BY created_at DESC`, flatID,
	)
}

func (r *ComplaintRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.Complaint, error) {
	return r.list(ctx, complaintSocietyQuery+` ORDER BY c.created_at DESC`, societyID)
}

func (r *ComplaintRepository) ListBySocietyAndStatus(ctx context.Context, societyID string, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	return r.list(ctx, complaintSocietyQuery+` AND c.status = ? ORDER BY c.created_at DESC`,
		societyID, string(status))
}

const complaintSocietyQuery = `SELECT c.id, c.title, c.description, c.status, c.flat_id, c.raised_by_id,
	        c.resolution, c.resolved_at, c.created_at, c.updated_at
	 FROM complaints c
	 JOIN flats f ON f.id = c.flat_id
	 JOIN buildings b ON b.id = f.building_id
	 WHERE b.society_id = ?`

// UpdateStatus is guarded on the expected current status so a concurrent
// transition cannot be silently overwritten.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ComplaintStatus, resolution string, resolvedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE complaints SET status = ?, resolution = ?, resolved_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(to), resolution, formatNullTime(resolvedAt), formatTime(time.Now()),
		id, string(from),
	)
	if err != nil {
		return fmt.Errorf("updating complaint status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "complaint", ID: id}
	}
	return nil
}

func (r *ComplaintRepository) list(ctx context.Context, query string, args ...any) ([]domain.Complaint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing complaints: %w", err)
	}
	defer rows.Close()

	var out []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning complaint row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComplaint(scan func(dest ...any) error) (domain.Complaint, error) {
	var c domain.Complaint
	var status, createdAt, updatedAt string
	var resolvedAt sql.NullString
	err := scan(&c.ID, &c.Title, &c.Description, &status, &c.FlatID, &c.RaisedByID,
		&c.Resolution, &resolvedAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Complaint{}, err
	}
	c.Status = domain.ComplaintStatus(status)
	c.ResolvedAt = parseNullTime(resolvedAt)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}
