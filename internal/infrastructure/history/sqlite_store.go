package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// timeFormat sorts lexically in UTC.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists executed commands in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		timestamp TEXT,
		intent TEXT,
		command TEXT,
		verdict TEXT,
		state TEXT,
		exit_code INTEGER,
		duration_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(ctx context.Context, record domain.HistoryRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO commands
		(run_id, timestamp, intent, command, verdict, state, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Timestamp.UTC().Format(timeFormat),
		record.Intent,
		record.Command,
		string(record.Verdict),
		string(record.State),
		record.ExitCode,
		record.DurationMS,
	)
	return err
}

// Records returns history entries newest first (limit/search optional).
func (s *SQLiteStore) Records(ctx context.Context, limit int, search string) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT run_id, timestamp, intent, command, verdict, state, exit_code, duration_ms FROM commands")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE intent LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY timestamp DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, verdict, state string
		if err := rows.Scan(&rec.RunID, &ts, &rec.Intent, &rec.Command, &verdict, &state, &rec.ExitCode, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeFormat, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Verdict = domain.Verdict(verdict)
		rec.State = domain.CommandState(state)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes entries older than the given number of days.
func (s *SQLiteStore) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays).UTC().Format(timeFormat)
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM commands WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM commands")
	return err
}

// ExportJSON writes every record as one JSON object per line.
func (s *SQLiteStore) ExportJSON(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.Records(ctx, 0, "")
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
