package testsupport

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteNamedMemoryDB opens an in-memory database private to the given
// name, so parallel tests do not share tables.
func NewSQLiteNamedMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
}

// NewBunSQLiteDB returns a bun handle over a private in-memory database named
// after the running test. The database is closed when the test ends.
func NewBunSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteNamedMemoryDB(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
