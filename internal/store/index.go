package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Key identifies a story by feature and id.
type Key struct {
	Feature string
	ID      string
}

// Index is an in-memory SQLite table of story haystacks used for search.
// It is rebuilt from the documents whenever a Store is opened.
type Index struct {
	db *sql.DB
}

// OpenIndex creates an empty in-memory index
func OpenIndex() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	// every pooled connection would otherwise get its own empty :memory: db
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS stories (
		feature TEXT NOT NULL,
		id TEXT NOT NULL,
		haystack TEXT NOT NULL,
		PRIMARY KEY (feature, id)
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index table: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the index
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert stores the haystack for a story
func (ix *Index) Upsert(s *Story) error {
	_, err := ix.db.Exec(
		"INSERT OR REPLACE INTO stories (feature, id, haystack) VALUES (?, ?, ?)",
		FeatureKey(s.Feature), s.ID, s.Haystack(),
	)
	if err != nil {
		return fmt.Errorf("index upsert failed: %w", err)
	}
	return nil
}

// Remove drops a single story
func (ix *Index) Remove(feature, id string) error {
	if _, err := ix.db.Exec("DELETE FROM stories WHERE feature = ? AND id = ?", FeatureKey(feature), id); err != nil {
		return fmt.Errorf("index remove failed: %w", err)
	}
	return nil
}

// RemoveFeature drops every story of a feature
func (ix *Index) RemoveFeature(feature string) error {
	if _, err := ix.db.Exec("DELETE FROM stories WHERE feature = ?", FeatureKey(feature)); err != nil {
		return fmt.Errorf("index remove failed: %w", err)
	}
	return nil
}

// Reset empties the index
func (ix *Index) Reset() error {
	if _, err := ix.db.Exec("DELETE FROM stories"); err != nil {
		return fmt.Errorf("index reset failed: %w", err)
	}
	return nil
}

// Count returns the number of indexed stories
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM stories").Scan(&n); err != nil {
		return 0, fmt.Errorf("index count failed: %w", err)
	}
	return n, nil
}

// Search returns the keys of stories whose haystack contains query,
// case-insensitively, ordered by feature then id.
func (ix *Index) Search(query string) ([]Key, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	rows, err := ix.db.Query(
		"SELECT feature, id FROM stories WHERE instr(haystack, ?) > 0 ORDER BY feature, id",
		needle,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Feature, &k.ID); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
