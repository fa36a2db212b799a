package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.NoticeRepository = (*NoticeRepository)(nil)

// NoticeRepository implements domain.NoticeRepository using SQLite.
type NoticeRepository struct {
	db *sql.DB
}

const noticeColumns = `id, title, content, society_id, created_by_id, active, expires_at, created_at, updated_at`

func (r *NoticeRepository) Create(ctx context.Context, n domain.Notice) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notices (`+noticeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, n.SocietyID, n.CreatedByID, n.Active,
		formatNullTime(n.ExpiresAt), formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting notice: %w", err)
	}
	return nil
}

func (r *NoticeRepository) GetByID(ctx context.Context, id string) (domain.Notice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noticeColumns+` FROM notices WHERE id = ?`, id,
	)
	n, err := scanNotice(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Notice{}, &domain.NotFoundError{Resource: "notice", ID: id}
		}
		return domain.Notice{}, fmt.Errorf("scanning notice: %w", err)
	}
	return n, nil
}

func (r *NoticeRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.Notice, error) {
	return r.list(ctx,
		`SELECT `+noticeColumns+` FROM notices
		 WHERE society_id = ? ORDER BY created_at DESC`, societyID,
	)
}

func (r *NoticeRepository) ListActiveBySociety(ctx context.Context, societyID string) ([]domain.Notice, error) {
	return r.list(ctx,
		`SELECT `+noticeColumns+` FROM notices
		 WHERE society_id = ? AND active = 1 ORDER BY created_at DESC`, societyID,
	)
}

func (r *NoticeRepository) Update(ctx context.Context, n domain.Notice) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notices SET title = ?, content = ?, active = ?, expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		n.Title, n.Content, n.Active, formatNullTime(n.ExpiresAt),
		formatTime(time.Now()), n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating notice: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "notice", ID: n.ID}
	}
	return nil
}

func (r *NoticeRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notices SET active = 0, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("deactivating notice: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "notice", ID: id}
	}
	return nil
}

// DeactivateExpired retires every active notice whose expiry has passed.
// Racing a manual Deactivate is harmless: both write the same terminal state.
func (r *NoticeRepository) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notices SET active = 0, updated_at = ?
		 WHERE active = 1 AND expires_at IS NOT NULL AND expires_at < ?`,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("deactivating expired notices: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(rows), nil
}

func (r *NoticeRepository) list(ctx context.Context, query string, args ...any) ([]domain.Notice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notices: %w", err)
	}
	defer rows.Close()

	var out []domain.Notice
	for rows.Next() {
		n, err := scanNotice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning notice row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotice(scan func(dest ...any) error) (domain.Notice, error) {
	var n domain.Notice
	var createdAt, updatedAt string
	var expiresAt sql.NullString
	err := scan(&n.ID, &n.Title, &n.Content, &n.SocietyID, &n.CreatedByID, &n.Active,
		&expiresAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Notice{}, err
	}
	n.ExpiresAt = parseNullTime(expiresAt)
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return n, nil
}
