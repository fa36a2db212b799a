package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/societyq/societyq/internal/domain"
)

// Compile-time checks against the domain ports.
var (
	_ domain.SocietyRepository  = (*SocietyRepository)(nil)
	_ domain.BuildingRepository = (*BuildingRepository)(nil)
	_ domain.FlatRepository     = (*FlatRepository)(nil)
)

// SocietyRepository implements domain.SocietyRepository using SQLite.
type SocietyRepository struct {
	db *sql.DB
}

func (r *SocietyRepository) Create(ctx context.Context, s domain.Society) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO societies (id, name, address, city, pincode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Address, s.City, s.Pincode,
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AlreadyExistsError{Resource: "society", Key: s.Name}
		}
		return fmt.Errorf("inserting society: %w", err)
	}
	return nil
}

func (r *SocietyRepository) GetByID(ctx context.Context, id string) (domain.Society, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, city, pincode, created_at, updated_at
		 FROM societies WHERE id = ?`, id,
	)

	var s domain.Society
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.Pincode, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Society{}, &domain.NotFoundError{Resource: "society", ID: id}
		}
		return domain.Society{}, fmt.Errorf("scanning society: %w", err)
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return s, nil
}

func (r *SocietyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM societies WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking society: %w", err)
	}
	return true, nil
}

func (r *SocietyRepository) List(ctx context.Context) ([]domain.Society, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, city, pincode, created_at, updated_at
		 FROM societies ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing societies: %w", err)
	}
	defer rows.Close()

	var out []domain.Society
	for rows.Next() {
		var s domain.Society
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.Pincode, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning society row: %w", err)
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// BuildingRepository implements domain.BuildingRepository using SQLite.
type BuildingRepository struct {
	db *sql.DB
}

func (r *BuildingRepository) Create(ctx context.Context, b domain.Building) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO buildings (id, name, total_floors, society_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.TotalFloors, b.SocietyID,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting building: %w", err)
	}
	return nil
}

func (r *BuildingRepository) GetByID(ctx context.Context, id string) (domain.Building, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, total_floors, society_id, created_at, updated_at
		 FROM buildings WHERE id = ?`, id,
	)

	var b domain.Building
	var createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.Name, &b.TotalFloors, &b.SocietyID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Building{}, &domain.NotFoundError{Resource: "building", ID: id}
		}
		return domain.Building{}, fmt.Errorf("scanning building: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

func (r *BuildingRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.Building, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_floors, society_id, created_at, updated_at
		 FROM buildings WHERE society_id = ? ORDER BY name`, societyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	defer rows.Close()

	var out []domain.Building
	for rows.Next() {
		var b domain.Building
		var createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.Name, &b.TotalFloors, &b.SocietyID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning building row: %w", err)
		}
		b.CreatedAt = parseTime(createdAt)
		b.UpdatedAt = parseTime(updatedAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

// FlatRepository implements domain.FlatRepository using SQLite. Every read
// joins through buildings so the flat comes back with its society resolved.
type FlatRepository struct {
	db *sql.DB
}

const flatColumns = `f.id, f.number, f.floor, f.area, f.building_id, b.society_id,
	 f.occupied_status, f.created_at, f.updated_at`

func (r *FlatRepository) Create(ctx context.Context, f domain.Flat) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flats (id, number, floor, area, building_id, occupied_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Number, f.Floor, f.Area, f.BuildingID, string(f.OccupiedStatus),
		formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AlreadyExistsError{Resource: "flat", Key: f.Number}
		}
		return fmt.Errorf("inserting flat: %w", err)
	}
	return nil
}

func (r *FlatRepository) GetByID(ctx context.Context, id string) (domain.Flat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+flatColumns+`
		 FROM flats f JOIN buildings b ON b.id = f.building_id
		 WHERE f.id = ?`, id,
	)
	f, err := scanFlat(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Flat{}, &domain.NotFoundError{Resource: "flat", ID: id}
		}
		return domain.Flat{}, fmt.Errorf("scanning flat: %w", err)
	}
	return f, nil
}

func (r *FlatRepository) ListByBuilding(ctx context.Context, buildingID string) ([]domain.Flat, error) {
	return r.list(ctx,
		`SELECT `+flatColumns+`
		 FROM flats f JOIN buildings b ON b.id = f.building_id
		 WHERE f.building_id = ? ORDER BY f.number`, buildingID,
	)
}

func (r *FlatRepository) ListBySociety(ctx context.Context, societyID string) ([]domain.Flat, error) {
	return r.list(ctx,
		`SELECT `+flatColumns+`
		 FROM flats f JOIN buildings b ON b.id = f.building_id
		 WHERE b.society_id = ? ORDER BY f.number`, societyID,
	)
}

func (r *FlatRepository) list(ctx context.Context, query string, args ...any) ([]domain.Flat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing flats: %w", err)
	}
	defer rows.Close()

	var out []domain.Flat
	for rows.Next() {
		f, err := scanFlat(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning flat row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFlat(scan func(dest ...any) error) (domain.Flat, error) {
	var f domain.Flat
	var status, createdAt, updatedAt string
	err := scan(&f.ID, &f.Number, &f.Floor, &f.Area, &f.BuildingID, &f.SocietyID,
		&status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Flat{}, err
	}
	f.OccupiedStatus = domain.OccupiedStatus(status)
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return f, nil
}
