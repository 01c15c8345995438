// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists final citation sets in a SQLite library with
// full-text search. The research engine itself persists only through its
// cache; the store is the CLI surface the drafting pipeline uses to keep
// and query compiled bibliographies.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Store manages the citation library SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the citation library at path, creating the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, maxResults: 20}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS citations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			year INTEGER,
			source_type TEXT,
			venue TEXT,
			publisher TEXT,
			volume TEXT,
			issue TEXT,
			pages TEXT,
			doi TEXT,
			url TEXT,
			secondary_id TEXT,
			abstract TEXT,
			citation_count INTEGER,
			provider TEXT,
			confidence REAL,
			recalled INTEGER NOT NULL DEFAULT 0,
			added_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_year ON citations(year)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_doi ON citations(doi)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='citations_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE citations_fts USING fts5(title, abstract, content=citations, content_rowid=rowid)`,
			`CREATE TRIGGER citations_ai AFTER INSERT ON citations BEGIN
				INSERT INTO citations_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER citations_ad AFTER DELETE ON citations BEGIN
				INSERT INTO citations_fts(citations_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER citations_au AFTER UPDATE ON citations BEGIN
				INSERT INTO citations_fts(citations_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO citations_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// ImportSummary holds counts from a citation import run.
type ImportSummary struct {
	Added   int
	Updated int
	Skipped int
}

// Total returns the number of citations processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Updated + s.Skipped
}

// Import upserts citations into the library. Records without an ID get one
// assigned from the citation key; records without a title are skipped.
func (s *Store) Import(ctx context.Context, citations []types.Citation) (ImportSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO citations (id, title, authors, year, source_type, venue, publisher,
			volume, issue, pages, doi, url, secondary_id, abstract, citation_count,
			provider, confidence, recalled, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, year=excluded.year,
			source_type=excluded.source_type, venue=excluded.venue,
			publisher=excluded.publisher, volume=excluded.volume,
			issue=excluded.issue, pages=excluded.pages, doi=excluded.doi,
			url=excluded.url, secondary_id=excluded.secondary_id,
			abstract=excluded.abstract, citation_count=excluded.citation_count,
			provider=excluded.provider, confidence=excluded.confidence,
			recalled=excluded.recalled`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary ImportSummary
	now := time.Now().UTC().Format(time.RFC3339)

	for _, c := range citations {
		if c.Title == "" {
			summary.Skipped++
			continue
		}
		id := c.ID
		if id == "" {
			id = c.CiteKey()
		}

		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM citations WHERE id = ?`, id,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking citation %s: %w", id, err)
		}

		authorsJSON, _ := json.Marshal(c.Authors)
		recalled := 0
		if c.Provenance.Recalled {
			recalled = 1
		}
		_, err := stmt.ExecContext(ctx,
			id, c.Title, string(authorsJSON), c.Year, string(c.SourceType),
			c.Venue, c.Publisher, c.Volume, c.Issue, c.Pages, c.DOI, c.URL,
			c.SecondaryID, c.Abstract, c.CitationCount,
			c.Provenance.Provider, c.Provenance.Confidence, recalled, now,
		)
		if err != nil {
			return summary, fmt.Errorf("inserting citation %s: %w", id, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Added++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// List returns all citations ordered by year descending, then key.
func (s *Store) List(ctx context.Context) ([]types.Citation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, year, source_type, venue, publisher, volume,
			issue, pages, doi, url, secondary_id, abstract, citation_count,
			provider, confidence, recalled
		 FROM citations ORDER BY year DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}
	defer rows.Close()
	return scanCitations(rows)
}

// Search runs an FTS5 full-text query over titles and abstracts, ranked by
// relevance.
func (s *Store) Search(ctx context.Context, query string) ([]types.Citation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.authors, c.year, c.source_type, c.venue,
			c.publisher, c.volume, c.issue, c.pages, c.doi, c.url,
			c.secondary_id, c.abstract, c.citation_count,
			c.provider, c.confidence, c.recalled
		 FROM citations_fts f
		 JOIN citations c ON c.rowid = f.rowid
		 WHERE citations_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching citations: %w", err)
	}
	defer rows.Close()
	return scanCitations(rows)
}

func scanCitations(rows *sql.Rows) ([]types.Citation, error) {
	var out []types.Citation
	for rows.Next() {
		var c types.Citation
		var authorsJSON string
		var recalled int
		err := rows.Scan(&c.ID, &c.Title, &authorsJSON, &c.Year, &c.SourceType,
			&c.Venue, &c.Publisher, &c.Volume, &c.Issue, &c.Pages, &c.DOI,
			&c.URL, &c.SecondaryID, &c.Abstract, &c.CitationCount,
			&c.Provenance.Provider, &c.Provenance.Confidence, &recalled)
		if err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &c.Authors); err != nil {
			c.Authors = nil
		}
		c.Provenance.Recalled = recalled != 0
		out = append(out, c)
	}
	return out, rows.Err()
}
