package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/societyq/societyq/internal/domain"
)

var _ domain.UserRepository = (*UserRepository)(nil)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

const userColumns = `id, name, email, password_hash, phone, role, society_id, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, string(u.Role), u.SocietyID,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AlreadyExistsError{Resource: "user", Key: u.Email}
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, &domain.NotFoundError{Resource: "user", ID: id}
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	)
	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, &domain.NotFoundError{Resource: "user", ID: email}
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE society_id = ? ORDER BY name`, societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	var role, createdAt, updatedAt string
	err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &role, &u.SocietyID,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}
