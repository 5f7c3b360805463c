package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/crystal-mush/gosoul/pkg/soul"
)

const scrollbackSchema = `
CREATE TABLE IF NOT EXISTS scrollback (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	observer INTEGER NOT NULL,
	source   INTEGER NOT NULL,
	room     TEXT NOT NULL,
	kind     TEXT NOT NULL,
	verb     TEXT NOT NULL,
	text     TEXT NOT NULL,
	created  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS scrollback_observer ON scrollback (observer, id);
`

// ScrollbackEntry is one stored line of an observer's history.
type ScrollbackEntry struct {
	Source soul.EntityID
	Room   string
	Kind   string
	Verb   string
	Text   string
	Time   time.Time
}

// InitScrollbackTables creates the scrollback table if needed.
func (s *SQLStore) InitScrollbackTables() error {
	if _, err := s.exec(scrollbackSchema); err != nil {
		return fmt.Errorf("creating scrollback table: %w", err)
	}
	return nil
}

// InsertScrollback stores a delivered event for its observer.
func (s *SQLStore) InsertScrollback(ev events.Event, at time.Time) error {
	_, err := s.exec(
		"INSERT INTO scrollback (observer, source, room, kind, verb, text, created) VALUES (?, ?, ?, ?, ?, ?, ?)",
		int64(ev.Observer), int64(ev.Source), ev.Room, ev.Type.String(), ev.Verb, ev.Text, at.UnixNano())
	return err
}

// History returns the last limit entries of an observer, oldest first.
func (s *SQLStore) History(observer soul.EntityID, limit int) ([]ScrollbackEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("sqlite store closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, room, kind, verb, text, created FROM scrollback WHERE observer = ? ORDER BY id DESC LIMIT ?",
		int64(observer), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScrollbackEntry
	for rows.Next() {
		var (
			e       ScrollbackEntry
			source  int64
			created int64
		)
		if err := rows.Scan(&source, &e.Room, &e.Kind, &e.Verb, &e.Text, &created); err != nil {
			return nil, err
		}
		e.Source = soul.EntityID(source)
		e.Time = time.Unix(0, created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// PurgeOldScrollback deletes entries older than retention.
func (s *SQLStore) PurgeOldScrollback(retention time.Duration, now time.Time) (int64, error) {
	res, err := s.exec("DELETE FROM scrollback WHERE created < ?", now.Add(-retention).UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ScrollbackWriter is a global event bus subscriber that writes what each
// observer was shown to SQLite for /history.
type ScrollbackWriter struct {
	sqldb  *SQLStore
	now    func() time.Time
	mu     sync.Mutex
	closed bool
}

// NewScrollbackWriter creates a scrollback writer and registers it as a
// global subscriber on the event bus.
func NewScrollbackWriter(sqldb *SQLStore, bus *events.Bus) (*ScrollbackWriter, error) {
	if err := sqldb.InitScrollbackTables(); err != nil {
		return nil, err
	}
	sw := &ScrollbackWriter{sqldb: sqldb, now: time.Now}
	bus.SubscribeGlobal(sw)
	log.Printf("scrollback: writer registered on event bus")
	return sw, nil
}

// Receive implements events.Subscriber. Room-wide copies without an
// observer are skipped; every observer's own copy is stored.
func (sw *ScrollbackWriter) Receive(ev events.Event) {
	if ev.Observer == soul.NoEntity || ev.Text == "" {
		return
	}
	if err := sw.sqldb.InsertScrollback(ev, sw.now()); err != nil {
		log.Printf("scrollback: insert error: %v", err)
	}
}

// Closed implements events.Subscriber.
func (sw *ScrollbackWriter) Closed() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.closed
}

// Close marks the writer as closed so the bus stops delivering events.
func (sw *ScrollbackWriter) Close() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.closed = true
}

// StartRetentionCleanup purges old scrollback every hour until ctx ends.
func StartRetentionCleanup(ctx context.Context, sqldb *SQLStore, retention time.Duration) {
	if sqldb == nil || retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				purged, err := sqldb.PurgeOldScrollback(retention, now)
				if err != nil {
					log.Printf("scrollback cleanup error: %v", err)
					continue
				}
				if purged > 0 {
					log.Printf("scrollback: purged %d old entries", purged)
				}
			}
		}
	}()
}
