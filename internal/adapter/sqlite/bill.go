package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.BillRepository = (*BillRepository)(nil)

// BillRepository implements domain.BillRepository using SQLite.
type BillRepository struct {
	db *sql.DB
}

const billColumns = `id, bill_number, bill_date, due_date, amount, description, flat_id, paid, payment_date, payment_reference, created_at, updated_at`

func (r *BillRepository) Create(ctx context.Context, b domain.MaintenanceBill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.BillNumber, formatTime(b.BillDate), formatTime(b.DueDate),
		b.Amount, b.Description, b.FlatID, b.Paid,
		formatNullTime(b.PaymentDate), b.PaymentReference,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AlreadyExistsError{Resource: "bill", Key: b.BillNumber}
		}
		return fmt.Errorf("inserting bill: %w", err)
	}
	return nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (domain.MaintenanceBill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM maintenance_bills WHERE id = ?`, id,
	)
	b, err := scanBill(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.MaintenanceBill{}, &domain.NotFoundError{Resource: "bill", ID: id}
		}
		return domain.MaintenanceBill{}, fmt.Errorf("scanning bill: %w", err)
	}
	return b, nil
}

func (r *BillRepository) ListByFlat(ctx context.Context, flatID string) ([]domain.MaintenanceBill, error) {
	return r.list(ctx,
		`SELECT `+billColumns+` FROM maintenance_bills
		 WHERE flat_id = ? ORDER BY bill_date DESC`, flatID,
	)
}

const billSocietyQuery = `SELECT mb.id, mb.bill_number, mb.bill_date, mb.due_date, mb.amount, mb.description,
	        mb.flat_id, mb.paid, mb.payment_date, mb.payment_reference, mb.created_at, mb.updated_at
	 FROM maintenance_bills mb
	 JOIN flats f ON f.id = mb.flat_id
	 JOIN buildings b ON b.id = f.building_id
	 WHERE b.society_id = ?`

func (r *BillRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.MaintenanceBill, error) {
	return r.list(ctx, billSocietyQuery+` ORDER BY mb.bill_date DESC`, societyID)
}

func (r *BillRepository) ListPendingBySociety(ctx context.Context, societyID string) ([]domain.MaintenanceBill, error) {
	return r.list(ctx, billSocietyQuery+` AND mb.paid = 0 ORDER BY mb.due_date`, societyID)
}

func (r *BillRepository) ListOverdue(ctx context.Context, before time.Time) ([]domain.MaintenanceBill, error) {
	return r.list(ctx,
		`SELECT `+billColumns+` FROM maintenance_bills
		 WHERE paid = 0 AND due_date < ? ORDER BY due_date`, formatTime(before),
	)
}

// MarkPaid is a guarded commit against an unpaid row; paying twice observes
// Conflict.
func (r *BillRepository) MarkPaid(ctx context.Context, id, reference string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_bills SET paid = 1, payment_date = ?, payment_reference = ?, updated_at = ?
		 WHERE id = ? AND paid = 0`,
		formatTime(at), reference, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("marking bill paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Resource: "bill", ID: id}
	}
	return nil
}

func (r *BillRepository) list(ctx context.Context, query string, args ...any) ([]domain.MaintenanceBill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer rows.Close()

	var out []domain.MaintenanceBill
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning bill row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBill(scan func(dest ...any) error) (domain.MaintenanceBill, error) {
	var b domain.MaintenanceBill
	var billDate, dueDate, createdAt, updatedAt string
	var paymentDate sql.NullString
	err := scan(&b.ID, &b.BillNumber, &billDate, &dueDate, &b.Amount, &b.Description,
		&b.FlatID, &b.Paid, &paymentDate, &b.PaymentReference, &createdAt, &updatedAt)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}
	b.BillDate = parseTime(billDate)
	b.DueDate = parseTime(dueDate)
	b.PaymentDate = parseNullTime(paymentDate)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}
