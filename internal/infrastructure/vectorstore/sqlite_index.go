// Package vectorstore keeps issue embeddings in SQLite and answers
// nearest-neighbour queries by brute-force cosine similarity.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// SQLiteIndex implements ports.SimilarityIndex.
type SQLiteIndex struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteIndex creates (or opens) the index database at path.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	db.SetMaxOpenConns(1)
	idx := &SQLiteIndex{db: db, path: path}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vectors (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		vec TEXT NOT NULL,
		PRIMARY KEY (namespace, id)
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init index db: %w", err)
	}
	return idx, nil
}

// Upsert inserts or replaces vectors in one transaction.
func (s *SQLiteIndex) Upsert(ctx context.Context, namespace string, vectors []domain.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (namespace, id, vec) VALUES (?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET vec = excluded.vec`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, v := range vectors {
		raw, err := json.Marshal(v.Values)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, namespace, v.ID, string(raw)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s/%s: %w", namespace, v.ID, err)
		}
	}
	return tx.Commit()
}

// Query returns the topK vectors closest to vector, best first. The index
// marker is never returned.
func (s *SQLiteIndex) Query(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, vec FROM vectors WHERE namespace = ? AND id != ?", namespace, domain.IndexMarkerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var values []float64
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", namespace, id, err)
		}
		matches = append(matches, domain.Match{ID: id, Score: domain.Cosine(vector, values)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Fetch returns one stored vector.
func (s *SQLiteIndex) Fetch(ctx context.Context, namespace, id string) (domain.Vector, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT vec FROM vectors WHERE namespace = ? AND id = ?", namespace, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.Vector{}, false, nil
	}
	if err != nil {
		return domain.Vector{}, false, err
	}
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return domain.Vector{}, false, err
	}
	return domain.Vector{ID: id, Values: values}, true, nil
}

// Close releases the database handle.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

var _ ports.SimilarityIndex = (*SQLiteIndex)(nil)
