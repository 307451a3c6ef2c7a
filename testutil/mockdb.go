package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the story index
// table and the given rows (feature, id, haystack).
func CreateInMemoryDB(t *testing.T, rows ...[3]string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS stories (
		feature TEXT NOT NULL,
		id TEXT NOT NULL,
		haystack TEXT NOT NULL,
		PRIMARY KEY (feature, id)
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create stories table: %v", err)
	}

	for _, row := range rows {
		if _, err := db.Exec("INSERT INTO stories (feature, id, haystack) VALUES (?, ?, ?)", row[0], row[1], row[2]); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}
	return db
}
