package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteUpDown(t *testing.T) {
	db := openSQLite(t)

	version, dirty, err := Version(db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, Up(db, SQLite))
	// a second run is a no-op
	require.NoError(t, Up(db, SQLite))

	version, dirty, err = Version(db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	_, err = db.Exec(`INSERT INTO categories (name, depth, sort_order, is_active) VALUES ('Clothing', 0, 1, 1)`)
	require.NoError(t, err)

	require.NoError(t, Down(db, SQLite))
	version, _, err = Version(db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestSQLiteActiveSiblingNamesAreUnique(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Up(db, SQLite))

	_, err := db.Exec(`INSERT INTO categories (name, depth, sort_order, is_active) VALUES ('Clothing', 0, 1, 1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO categories (name, depth, sort_order, is_active) VALUES ('Clothing', 0, 2, 1)`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO categories (name, depth, sort_order, is_active) VALUES ('Clothing', 0, 3, 0)`)
	assert.NoError(t, err)
}

func TestUnsupportedDriver(t *testing.T) {
	db := openSQLite(t)
	_, err := New(db, Driver("mysql"))
	assert.Error(t, err)
}
