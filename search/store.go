// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: search/store.go
// Summary: Persistent SQLite-backed full-text search over scrollback.

package search

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// storeSchemaVersion tracks the on-disk schema. Bump when the table
// layout changes; migrate handles the upgrade.
const storeSchemaVersion = 2

// Result is one matching scrollback line from the persistent store.
type Result struct {
	Line      int64
	Timestamp time.Time
	Content   string
	IsCommand bool
}

// StoreConfig controls batching and placement of the SQLite database.
type StoreConfig struct {
	DBPath        string
	BatchSize     int
	BatchTimeout  time.Duration
	ChannelBuffer int
}

// DefaultStoreConfig returns the standard batching parameters with the
// database placed under dir.
func DefaultStoreConfig(dir string) StoreConfig {
	return StoreConfig{
		DBPath:        filepath.Join(dir, "search.db"),
		BatchSize:     100,
		BatchTimeout:  5 * time.Second,
		ChannelBuffer: 1000,
	}
}

type pendingLine struct {
	line      int64
	timestamp time.Time
	isCommand bool
	content   string
}

// Store is the persistent search index. Output lines are queued and
// written by a background batcher; command lines are written
// synchronously so prompt history is never lost on crash.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	cfg StoreConfig

	batchChan chan pendingLine
	flushCh   chan chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS lines (
	id INTEGER PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	is_command INTEGER NOT NULL DEFAULT 0,
	content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_timestamp ON lines(timestamp);
`

const storeFTSSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS lines_fts USING fts5(
	content,
	content='lines',
	content_rowid='id',
	tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS lines_ai AFTER INSERT ON lines BEGIN
	INSERT INTO lines_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS lines_au AFTER UPDATE ON lines BEGIN
	INSERT INTO lines_fts(lines_fts, rowid, content) VALUES ('delete', old.id, old.content);
	INSERT INTO lines_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS lines_ad AFTER DELETE ON lines BEGIN
	INSERT INTO lines_fts(lines_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;
`

// NewStore opens (or creates) the database named by cfg and starts the
// background batcher.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 5 * time.Second
	}
	if cfg.ChannelBuffer <= 0 {
		cfg.ChannelBuffer = 1000
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating search dir: %w", err)
		}
	}

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-8000)&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening search db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging search db: %w", err)
	}

	s := &Store{
		db:        db,
		cfg:       cfg,
		batchChan: make(chan pendingLine, cfg.ChannelBuffer),
		flushCh:   make(chan chan struct{}),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	go s.batchIndexer()
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(storeSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		version = 0
	} else if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if version < storeSchemaVersion {
		if version > 0 {
			log.Printf("[SEARCH] Migrating schema v%d -> v%d", version, storeSchemaVersion)
			if _, err := s.db.Exec(`DROP TABLE IF EXISTS lines_fts`); err != nil {
				return fmt.Errorf("dropping stale fts table: %w", err)
			}
		}
		if _, err := s.db.Exec(storeFTSSchema); err != nil {
			return fmt.Errorf("creating fts schema: %w", err)
		}
		if _, err := s.db.Exec(`DELETE FROM schema_version`); err != nil {
			return fmt.Errorf("clearing schema version: %w", err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, storeSchemaVersion); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}
	} else {
		if _, err := s.db.Exec(storeFTSSchema); err != nil {
			return fmt.Errorf("ensuring fts schema: %w", err)
		}
	}
	return nil
}

// batchIndexer drains the queue into the database, flushing when the
// batch fills or the timeout expires.
func (s *Store) batchIndexer() {
	defer close(s.doneCh)

	batch := make([]pendingLine, 0, s.cfg.BatchSize)
	timer := time.NewTimer(s.cfg.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.flushBatch(batch); err != nil {
			log.Printf("[SEARCH] Batch flush failed: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case p := <-s.batchChan:
			batch = append(batch, p)
			if len(batch) >= s.cfg.BatchSize {
				flush()
				timer.Reset(s.cfg.BatchTimeout)
			}
		case <-timer.C:
			flush()
			timer.Reset(s.cfg.BatchTimeout)
		case done := <-s.flushCh:
			for {
				select {
				case p := <-s.batchChan:
					batch = append(batch, p)
					continue
				default:
				}
				break
			}
			flush()
			close(done)
		case <-s.stopCh:
			for {
				select {
				case p := <-s.batchChan:
					batch = append(batch, p)
					continue
				default:
				}
				break
			}
			flush()
			return
		}
	}
}

func (s *Store) flushBatch(batch []pendingLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO lines (id, timestamp, is_command, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range batch {
		if _, err := stmt.Exec(p.line, p.timestamp.UnixNano(), p.isCommand, p.content); err != nil {
			return fmt.Errorf("inserting line %d: %w", p.line, err)
		}
	}
	return tx.Commit()
}

// IndexLine records one scrollback line. Commands are written
// synchronously; output is queued and dropped if the queue is full,
// since a stalled indexer must never block the terminal.
func (s *Store) IndexLine(line int64, timestamp time.Time, isCommand bool, content string) error {
	if isCommand {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO lines (id, timestamp, is_command, content) VALUES (?, ?, ?, ?)`,
			line, timestamp.UnixNano(), isCommand, content)
		if err != nil {
			return fmt.Errorf("indexing command line: %w", err)
		}
		return nil
	}

	select {
	case s.batchChan <- pendingLine{line: line, timestamp: timestamp, isCommand: isCommand, content: content}:
	default:
		log.Printf("[SEARCH] Queue full, dropping line %d", line)
	}
	return nil
}

// quoteFTS makes query safe as a single FTS5 string token.
func quoteFTS(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

// Search returns the newest limit lines matching query. Queries under
// three bytes fall back to LIKE since the trigram tokenizer cannot
// match them.
func (s *Store) Search(query string, limit int) ([]Result, error) {
	return s.SearchInRange(query, time.Time{}, time.Time{}, limit)
}

// SearchInRange is Search restricted to [from, to]. Zero times leave
// that bound open.
func (s *Store) SearchInRange(query string, from, to time.Time, limit int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var (
		where []string
		args  []any
	)
	if len(query) < 3 {
		escaped := strings.ReplaceAll(query, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `%`, `\%`)
		escaped = strings.ReplaceAll(escaped, `_`, `\_`)
		where = append(where, `l.content LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escaped+"%")
	} else {
		where = append(where, `l.id IN (SELECT rowid FROM lines_fts WHERE lines_fts MATCH ?)`)
		args = append(args, quoteFTS(query))
	}
	if !from.IsZero() {
		where = append(where, `l.timestamp >= ?`)
		args = append(args, from.UnixNano())
	}
	if !to.IsZero() {
		where = append(where, `l.timestamp <= ?`)
		args = append(args, to.UnixNano())
	}
	args = append(args, limit)

	q := `SELECT l.id, l.timestamp, l.is_command, l.content FROM lines l WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY l.timestamp DESC LIMIT ?`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying search store: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r  Result
			ts int64
		)
		if err := rows.Scan(&r.Line, &ts, &r.IsCommand, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.Timestamp = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LineAt returns the stored line with the given number, if present.
func (s *Store) LineAt(line int64) (Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r  Result
		ts int64
	)
	err := s.db.QueryRow(
		`SELECT id, timestamp, is_command, content FROM lines WHERE id = ?`, line).
		Scan(&r.Line, &ts, &r.IsCommand, &r.Content)
	if err == sql.ErrNoRows {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("looking up line %d: %w", line, err)
	}
	r.Timestamp = time.Unix(0, ts)
	return r, true, nil
}

// LineCount returns the number of stored lines.
func (s *Store) LineCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM lines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lines: %w", err)
	}
	return n, nil
}

// Flush forces any queued lines to disk and waits for them.
func (s *Store) Flush() error {
	done := make(chan struct{})
	select {
	case s.flushCh <- done:
		<-done
		return nil
	case <-s.doneCh:
		return fmt.Errorf("search store is closed")
	}
}

// Close flushes the queue, stops the batcher and closes the database.
func (s *Store) Close() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.doneCh
	return s.db.Close()
}
