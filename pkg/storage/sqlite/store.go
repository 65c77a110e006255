package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
)

// ErrPageNotFound is returned by Load for pages that were never saved.
var ErrPageNotFound = errors.New("sqlite: page not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	page_id   TEXT PRIMARY KEY,
	revision  TEXT NOT NULL,
	payload   TEXT NOT NULL,
	saved_at  INTEGER NOT NULL
);
`

// PageInfo describes one stored page.
type PageInfo struct {
	PageID   string
	Revision string
	Sections int
	SavedAt  time.Time
}

// Store is a SQLite-backed page store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ editor.Saver = (*Store)(nil)

// Open opens (or creates) the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements editor.Saver. Only the latest payload of a page is kept;
// the revision column records which save produced it.
func (s *Store) Save(ctx context.Context, payload editor.Payload) error {
	if strings.TrimSpace(payload.PageID) == "" {
		return errors.New("sqlite: payload page id is required")
	}
	if payload.Revision == "" {
		return errors.New("sqlite: payload revision is required")
	}
	if payload.SavedAt.IsZero() {
		payload.SavedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sqlite: encode payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO pages (page_id, revision, payload, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			revision=excluded.revision,
			payload=excluded.payload,
			saved_at=excluded.saved_at`,
		payload.PageID, payload.Revision, string(raw), payload.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: save page %q: %w", payload.PageID, err)
	}
	return nil
}

// Load returns the saved payload of pageID.
func (s *Store) Load(ctx context.Context, pageID string) (editor.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM pages WHERE page_id = ?`, pageID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return editor.Payload{}, fmt.Errorf("%w: %q", ErrPageNotFound, pageID)
	}
	if err != nil {
		return editor.Payload{}, fmt.Errorf("sqlite: load %q: %w", pageID, err)
	}
	var payload editor.Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return editor.Payload{}, fmt.Errorf("sqlite: decode payload %q: %w", pageID, err)
	}
	return payload, nil
}

// Pages lists stored pages, most recently saved first.
func (s *Store) Pages(ctx context.Context) ([]PageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT page_id, revision, payload, saved_at FROM pages ORDER BY saved_at DESC, page_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var out []PageInfo
	for rows.Next() {
		var (
			info    PageInfo
			raw     string
			savedAt int64
		)
		if err := rows.Scan(&info.PageID, &info.Revision, &raw, &savedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		var payload struct {
			Order []json.RawMessage `json:"order"`
		}
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			info.Sections = len(payload.Order)
		}
		info.SavedAt = time.UnixMilli(savedAt).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}
