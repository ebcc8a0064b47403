package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/pkg/filesystem"
	"github.com/doeshing/promptline/internal/ports"
)

// timestampLayout has fixed width so timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists patch runs in a SQLite database. When the database
// cannot be opened it degrades to a FileStore next to it.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) path, or ~/.promptline/history/patches.db when empty.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.StateDir(), "history", "patches.db")
	}
	fallback := NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	store := &SQLiteStore{db: db, path: path, fallback: fallback}
	if err := store.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, fallback: fallback}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS patch_runs (
		run_id TEXT PRIMARY KEY,
		timestamp TEXT,
		root TEXT,
		target TEXT,
		dry_run INTEGER,
		status TEXT,
		steps TEXT
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.PatchRecord) error {
	if s.db == nil {
		return s.fallback.Save(record)
	}
	steps, err := json.Marshal(record.Steps)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO patch_runs
		(run_id, timestamp, root, target, dry_run, status, steps)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Timestamp.UTC().Format(timestampLayout),
		record.Root,
		record.Target,
		boolToInt(record.DryRun),
		string(record.Status),
		string(steps),
	)
	return err
}

// Records returns up to limit runs, newest first (all when limit <= 0).
func (s *SQLiteStore) Records(limit int) ([]domain.PatchRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit)
	}
	query := "SELECT run_id, timestamp, root, target, dry_run, status, steps FROM patch_runs ORDER BY timestamp DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.PatchRecord
	for rows.Next() {
		var (
			rec    domain.PatchRecord
			ts     string
			dryRun int
			status string
			steps  string
		)
		if err := rows.Scan(&rec.RunID, &ts, &rec.Root, &rec.Target, &dryRun, &status, &steps); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.DryRun = dryRun == 1
		rec.Status = domain.PatchStatus(status)
		_ = json.Unmarshal([]byte(steps), &rec.Steps)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all runs.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	_, err := s.db.Exec("DELETE FROM patch_runs")
	return err
}

// Path returns the database path, or the fallback file when degraded.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

var _ ports.PatchHistoryRepository = (*SQLiteStore)(nil)
