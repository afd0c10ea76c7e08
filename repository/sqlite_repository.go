package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ammiranda/category_service/migrations"

	"github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	sqlStore
	db     *sql.DB
	dbPath string
}

// NewSQLiteRepository creates a SQLite repository backed by the file at
// dbPath. An empty path defaults to categories.db in ~/.category_service.
// ":memory:" opens a private in-memory database.
func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	if dbPath == "" {
		dbPath = DefaultSQLitePath()
	}
	return &SQLiteRepository{
		sqlStore: sqlStore{isUnique: isSQLiteUniqueViolation},
		dbPath:   dbPath,
	}
}

// DefaultSQLitePath is where the SQLite store lives when no path is configured
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := filepath.Join(homeDir, ".category_service")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// Fallback to current directory if home directory is not accessible
		dataDir = "."
	}
	return filepath.Join(dataDir, "categories.db")
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// OpenSQLite opens the database file at dbPath with foreign keys enforced
func OpenSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return db, nil
}

// Initialize opens the database file and applies pending migrations
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	db, err := OpenSQLite(ctx, r.dbPath)
	if err != nil {
		return err
	}

	if err := migrations.Up(db, migrations.SQLite); err != nil {
		db.Close()
		return fmt.Errorf("error running migrations: %w", err)
	}

	r.db = db
	r.q = db
	return nil
}

// Cleanup closes the database connection
func (r *SQLiteRepository) Cleanup(ctx context.Context) error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx runs fn inside a SQLite transaction
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	return withinTx(ctx, r.db, r.sqlStore, fn)
}
