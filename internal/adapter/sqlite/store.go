package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the database connection shared by the per-entity repositories.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database, runs migrations, and returns a ready store.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Configure(db); err != nil {
		return nil, err
	}

	return OpenDB(db)
}

// Configure applies the connection settings every societyq database handle
// needs, however it was opened. One connection keeps in-memory databases
// coherent and avoids SQLITE_BUSY when the river job queue shares the file;
// WAL improves concurrent reads; foreign keys are off by default in SQLite.
func Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	return nil
}

// OpenDB wraps an existing database connection, runs migrations, and returns
// a ready store. Use this when the *sql.DB has been pre-configured (e.g.,
// with otelsql instrumentation).
func OpenDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Repository constructors. Each repository shares the store's connection.

func (s *Store) Societies() *SocietyRepository       { return &SocietyRepository{db: s.db} }
func (s *Store) Buildings() *BuildingRepository      { return &BuildingRepository{db: s.db} }
func (s *Store) Flats() *FlatRepository              { return &FlatRepository{db: s.db} }
func (s *Store) Users() *UserRepository              { return &UserRepository{db: s.db} }
func (s *Store) Members() *MemberRepository          { return &MemberRepository{db: s.db} }
func (s *Store) Allocations() *AllocationRepository  { return &AllocationRepository{db: s.db} }
func (s *Store) Complaints() *ComplaintRepository    { return &ComplaintRepository{db: s.db} }
func (s *Store) Visitors() *VisitorRepository        { return &VisitorRepository{db: s.db} }
func (s *Store) Bills() *BillRepository              { return &BillRepository{db: s.db} }
func (s *Store) Notices() *NoticeRepository          { return &NoticeRepository{db: s.db} }

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// formatTime serializes a timestamp in the store's canonical format.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// formatNullTime serializes an optional timestamp, NULL when absent.
func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

// parseTime deserializes a timestamp, tolerating the zero value.
func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// parseNullTime deserializes an optional timestamp column.
func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
