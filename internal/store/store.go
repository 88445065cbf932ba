// Package store persists papers and relationship graphs in SQLite and
// JSONL formats. SQLite serves as the cross-run cache of resolved
// papers; JSONL and JSON files are the export formats.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/paper"
)

// Store wraps a SQLite database holding cached papers and graph edges.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite does not support concurrent writers.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			year TEXT NOT NULL,
			abstract TEXT,
			venue TEXT,
			url TEXT,
			external_id TEXT,
			citation_count INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_papers_external
			ON papers(external_id) WHERE external_id IS NOT NULL AND external_id != '';

		CREATE TABLE IF NOT EXISTS edges (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			relationship TEXT NOT NULL,
			strength REAL NOT NULL,
			evidence TEXT,
			description TEXT,
			PRIMARY KEY (source, target)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// SavePaper inserts or replaces one paper. Citation occurrences are
// run-local evidence and are not persisted.
func (s *Store) SavePaper(p paper.Paper) error {
	authors, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	var count sql.NullInt64
	if p.CitationCount != nil {
		count = sql.NullInt64{Int64: int64(*p.CitationCount), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO papers
			(id, title, authors_json, year, abstract, venue, url, external_id, citation_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, string(authors), p.Year, p.Abstract, p.Venue, p.URL,
		p.ExternalID, count)
	if err != nil {
		return fmt.Errorf("saving paper %s: %w", p.ID, err)
	}
	return nil
}

// GetPaper fetches one paper by id. Returns (nil, nil) when absent.
func (s *Store) GetPaper(id string) (*paper.Paper, error) {
	row := s.db.QueryRow(`
		SELECT id, title, authors_json, year, abstract, venue, url, external_id, citation_count
		FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading paper %s: %w", id, err)
	}
	return p, nil
}

// ListPapers returns all cached papers ordered by id.
func (s *Store) ListPapers() ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT id, title, authors_json, year, abstract, venue, url, external_id, citation_count
		FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*paper.Paper, error) {
	var p paper.Paper
	var authorsJSON string
	var abstract, venue, url, externalID sql.NullString
	var count sql.NullInt64

	err := row.Scan(&p.ID, &p.Title, &authorsJSON, &p.Year,
		&abstract, &venue, &url, &externalID, &count)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors: %w", err)
	}
	p.Abstract = abstract.String
	p.Venue = venue.String
	p.URL = url.String
	p.ExternalID = externalID.String
	if count.Valid {
		n := int(count.Int64)
		p.CitationCount = &n
	}
	return &p, nil
}

// SaveGraph replaces the stored edge set with the graph's edges and
// upserts its nodes as papers.
func (s *Store) SaveGraph(g *graph.Graph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM edges"); err != nil {
		return fmt.Errorf("clearing edges: %w", err)
	}
	for _, e := range g.Edges {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO edges
				(source, target, relationship, strength, evidence, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Source, e.Target, e.Relationship, e.Strength, e.Evidence, e.Description)
		if err != nil {
			return fmt.Errorf("saving edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing graph: %w", err)
	}

	for _, n := range g.Nodes {
		p := paper.Paper{
			ID: n.ID, Title: n.Title, Authors: n.Authors, Year: n.Year,
			Venue: n.Venue, URL: n.URL, CitationCount: n.CitationCount,
		}
		if err := s.SavePaper(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadEdges returns all stored edges.
func (s *Store) LoadEdges() ([]graph.Edge, error) {
	rows, err := s.db.Query(`
		SELECT source, target, relationship, strength, evidence, description
		FROM edges ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var evidence, description sql.NullString
		if err := rows.Scan(&e.Source, &e.Target, &e.Relationship,
			&e.Strength, &evidence, &description); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Evidence = evidence.String
		e.Description = description.String
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
