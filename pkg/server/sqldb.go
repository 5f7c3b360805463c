package server

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLStore manages the SQLite connection that holds scrollback.
type SQLStore struct {
	db      *sql.DB
	mu      sync.Mutex
	path    string
	timeout time.Duration
}

// OpenSQLStore opens a SQLite3 database, sets WAL mode and busy timeout.
func OpenSQLStore(path string, timeoutSec int) (*SQLStore, error) {
	if timeoutSec <= 0 {
		timeoutSec = 5
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", timeoutSec*1000)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	return &SQLStore{
		db:      db,
		path:    path,
		timeout: time.Duration(timeoutSec) * time.Second,
	}, nil
}

// Close closes the SQLite3 database connection.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the filesystem path of the SQLite database.
func (s *SQLStore) Path() string { return s.path }

// Checkpoint forces a WAL checkpoint to flush all writes to the main database file.
func (s *SQLStore) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("sqlite store closed")
	}
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// exec runs a statement under the store lock and timeout.
func (s *SQLStore) exec(query string, args ...any) (sql.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("sqlite store closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.db.ExecContext(ctx, query, args...)
}
