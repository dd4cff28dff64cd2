package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"imagesearch/logging"
	"imagesearch/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase opens the SQLite database at dbPath and creates the
// fingerprints table if it doesn't exist
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fingerprints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filepath TEXT NOT NULL,
		filename TEXT NOT NULL,
		average_brightness REAL NOT NULL,
		histogram TEXT NOT NULL,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_filepath ON fingerprints(filepath);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}

	// Check if created_at column exists, add it if it doesn't
	var hasCreatedAt bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('fingerprints') WHERE name='created_at'").Scan(&hasCreatedAt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking for created_at column: %w", err)
	}
	if !hasCreatedAt {
		if _, err = db.Exec("ALTER TABLE fingerprints ADD COLUMN created_at TEXT;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding created_at column: %w", err)
		}
		logging.DebugLog("Added 'created_at' column to existing database schema")
	}

	return db, nil
}

// SQLiteStore keeps the corpus in a SQLite table, one row per fingerprint.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := InitDatabase(path)
	if err != nil {
		return nil, readError(path, err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db, path: path}, nil
}

// ReadAll returns every stored fingerprint in insertion order.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]types.Fingerprint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filepath, filename, average_brightness, histogram FROM fingerprints ORDER BY id`)
	if err != nil {
		return nil, readError(s.path, err)
	}
	defer rows.Close()

	corpus := []types.Fingerprint{}
	for rows.Next() {
		fp, err := scanFingerprint(rows)
		if err != nil {
			return nil, readError(s.path, err)
		}
		corpus = append(corpus, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(s.path, err)
	}
	return corpus, nil
}

// Append adds fp unless an identical row for the same filepath exists.
func (s *SQLiteStore) Append(ctx context.Context, fp types.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histogram, err := json.Marshal(fp.Histograms)
	if err != nil {
		return false, writeError(s.path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, writeError(s.path, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT filepath, filename, average_brightness, histogram FROM fingerprints WHERE filepath = ?`, fp.Filepath)
	if err != nil {
		return false, readError(s.path, err)
	}
	for rows.Next() {
		existing, err := scanFingerprint(rows)
		if err != nil {
			rows.Close()
			return false, readError(s.path, err)
		}
		if existing.Equal(fp) {
			rows.Close()
			return false, nil
		}
	}
	if err := rows.Close(); err != nil {
		return false, readError(s.path, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fingerprints (filepath, filename, average_brightness, histogram, created_at) VALUES (?, ?, ?, ?, ?)`,
		fp.Filepath, fp.Filename, float64(fp.AverageBrightness), string(histogram), time.Now().Format(time.RFC3339))
	if err != nil {
		return false, writeError(s.path, fmt.Errorf("cannot insert data for %s: %w", fp.Filepath, err))
	}
	if err := tx.Commit(); err != nil {
		return false, writeError(s.path, err)
	}
	return true, nil
}

// ContainsPath reports whether any row was stored for path.
func (s *SQLiteStore) ContainsPath(ctx context.Context, path string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fingerprints WHERE filepath = ?", path).Scan(&count)
	if err != nil {
		return false, readError(s.path, fmt.Errorf("database error for %s: %w", path, err))
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanFingerprint(rows *sql.Rows) (types.Fingerprint, error) {
	var (
		fp         types.Fingerprint
		brightness float64
		histogram  string
	)
	if err := rows.Scan(&fp.Filepath, &fp.Filename, &brightness, &histogram); err != nil {
		return types.Fingerprint{}, err
	}
	if err := json.Unmarshal([]byte(histogram), &fp.Histograms); err != nil {
		return types.Fingerprint{}, fmt.Errorf("histogram of %s: %w", fp.Filepath, err)
	}
	fp.AverageBrightness = float32(brightness)
	return fp, nil
}
