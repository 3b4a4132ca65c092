// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists merged papers and their chunks in SQLite and
// serves lexical retrieval over chunk text via FTS5.
// Implements: prd017-store (R1-R5);
//
//	docs/ARCHITECTURE § Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/paperdex/pkg/types"
)

const dbFile = "paperdex.db"

// ErrNotFound is returned when a requested paper is absent.
var ErrNotFound = errors.New("store: paper not found")

// Store manages the paper database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the SQLite database at dataDir/paperdex.db,
// creating the schema when missing.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			doi TEXT,
			abstract TEXT,
			year INTEGER,
			venue TEXT,
			url TEXT,
			pdf_url TEXT,
			is_oa INTEGER,
			primary_source TEXT,
			authors TEXT,
			provenance TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
		`CREATE TABLE IF NOT EXISTS paper_sources (
			paper_id TEXT NOT NULL REFERENCES papers(id),
			source TEXT NOT NULL,
			record_id TEXT,
			PRIMARY KEY (paper_id, source)
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			section_title TEXT,
			order_in_section INTEGER,
			content TEXT NOT NULL,
			citations TEXT,
			token_count INTEGER,
			tei_id TEXT,
			tei_xpath TEXT,
			start_char INTEGER,
			end_char INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_paper_id ON chunks(paper_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chunks_fts USING fts5(content, content=chunks, content_rowid=rowid)`,
			`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
				INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER chunks_au AFTER UPDATE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
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

// SavePaper upserts a merged paper and its per-source records. A paper
// without an identifier gets a random one assigned, which is also
// written back to the input.
func (s *Store) SavePaper(ctx context.Context, paper *types.MergedPaper) error {
	if paper.PaperID == "" {
		paper.PaperID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, _ := json.Marshal(paper.Authors)
	provenanceJSON, _ := json.Marshal(paper.Provenance)

	var isOA any
	if paper.IsOA != nil {
		isOA = *paper.IsOA
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, doi, abstract, year, venue, url, pdf_url, is_oa, primary_source, authors, provenance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, doi=excluded.doi, abstract=excluded.abstract,
			year=excluded.year, venue=excluded.venue, url=excluded.url,
			pdf_url=excluded.pdf_url, is_oa=excluded.is_oa,
			primary_source=excluded.primary_source, authors=excluded.authors,
			provenance=excluded.provenance`,
		paper.PaperID, paper.Title, paper.DOI, paper.Abstract, paper.Year,
		paper.Venue, paper.URL, paper.PDFURL, isOA, paper.PrimarySource,
		string(authorsJSON), string(provenanceJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM paper_sources WHERE paper_id = ?`, paper.PaperID); err != nil {
		return fmt.Errorf("clearing paper sources: %w", err)
	}
	for _, source := range paper.Provenance.Sources {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO paper_sources (paper_id, source, record_id) VALUES (?, ?, ?)`,
			paper.PaperID, source, paper.Provenance.SourceRecords[source],
		)
		if err != nil {
			return fmt.Errorf("inserting paper source %s: %w", source, err)
		}
	}

	return tx.Commit()
}

// GetPaper loads one merged paper by id.
func (s *Store) GetPaper(ctx context.Context, paperID string) (*types.MergedPaper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, doi, abstract, year, venue, url, pdf_url, is_oa, primary_source, authors, provenance
		 FROM papers WHERE id = ?`, paperID)

	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, paperID)
	}
	return paper, err
}

// GetPaperByDOI loads one merged paper by canonical DOI.
func (s *Store) GetPaperByDOI(ctx context.Context, doi string) (*types.MergedPaper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, doi, abstract, year, venue, url, pdf_url, is_oa, primary_source, authors, provenance
		 FROM papers WHERE doi = ?`, doi)

	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: doi %s", ErrNotFound, doi)
	}
	return paper, err
}

// ListPapers returns every stored paper ordered by id.
func (s *Store) ListPapers(ctx context.Context) ([]types.MergedPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, doi, abstract, year, venue, url, pdf_url, is_oa, primary_source, authors, provenance
		 FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []types.MergedPaper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *paper)
	}
	return papers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*types.MergedPaper, error) {
	var (
		paper          types.MergedPaper
		isOA           sql.NullBool
		authorsJSON    sql.NullString
		provenanceJSON sql.NullString
	)
	err := row.Scan(&paper.PaperID, &paper.Title, &paper.DOI, &paper.Abstract,
		&paper.Year, &paper.Venue, &paper.URL, &paper.PDFURL, &isOA,
		&paper.PrimarySource, &authorsJSON, &provenanceJSON)
	if err != nil {
		return nil, err
	}

	if isOA.Valid {
		value := isOA.Bool
		paper.IsOA = &value
	}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &paper.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors: %w", err)
		}
	}
	if provenanceJSON.Valid && provenanceJSON.String != "" {
		if err := json.Unmarshal([]byte(provenanceJSON.String), &paper.Provenance); err != nil {
			return nil, fmt.Errorf("parsing provenance: %w", err)
		}
	}
	paper.Source = paper.PrimarySource
	return &paper, nil
}

// SaveChunks replaces the stored chunk sequence for one paper. Chunks
// are deleted and reinserted atomically so a re-ingested paper can never
// hold a mix of old and new chunks.
func (s *Store) SaveChunks(ctx context.Context, paperID string, chunks []types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE paper_id = ?`, paperID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (chunk_id, paper_id, kind, position, section_title, order_in_section,
			content, citations, token_count, tei_id, tei_xpath, start_char, end_char)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		citationsJSON, _ := json.Marshal(chunk.Citations)
		teiID, teiXPath := "", ""
		if chunk.TEI != nil {
			teiID, teiXPath = chunk.TEI.TEIID, chunk.TEI.XPath
		}
		_, err := stmt.ExecContext(ctx,
			chunk.ChunkID, paperID, string(chunk.Kind), chunk.Position,
			chunk.SectionTitle, chunk.OrderInSection, chunk.Text,
			string(citationsJSON), chunk.TokenCount, teiID, teiXPath,
			chunk.CharRange.Start, chunk.CharRange.End,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ChunkID, err)
		}
	}

	return tx.Commit()
}

// GetChunks loads a paper's chunks in position order.
func (s *Store) GetChunks(ctx context.Context, paperID string) ([]types.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, paper_id, kind, position, section_title, order_in_section,
			content, citations, token_count, tei_id, tei_xpath, start_char, end_char
		 FROM chunks WHERE paper_id = ? ORDER BY position`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func scanChunk(row rowScanner) (types.Chunk, error) {
	var (
		chunk         types.Chunk
		kind          string
		citationsJSON sql.NullString
		teiID         sql.NullString
		teiXPath      sql.NullString
	)
	err := row.Scan(&chunk.ChunkID, &chunk.PaperID, &kind, &chunk.Position,
		&chunk.SectionTitle, &chunk.OrderInSection, &chunk.Text,
		&citationsJSON, &chunk.TokenCount, &teiID, &teiXPath,
		&chunk.CharRange.Start, &chunk.CharRange.End)
	if err != nil {
		return chunk, err
	}

	chunk.Kind = types.ChunkKind(kind)
	if citationsJSON.Valid && citationsJSON.String != "" {
		if err := json.Unmarshal([]byte(citationsJSON.String), &chunk.Citations); err != nil {
			return chunk, fmt.Errorf("parsing citations: %w", err)
		}
	}
	if teiID.String != "" || teiXPath.String != "" {
		chunk.TEI = &types.TEIAnchor{TEIID: teiID.String, XPath: teiXPath.String}
	}
	return chunk, nil
}

// ChunkHit is one lexical search result with its paper context.
type ChunkHit struct {
	types.Chunk
	PaperTitle string  `json:"paper_title" yaml:"paper_title"`
	Score      float64 `json:"score" yaml:"score"`
}

// SearchChunks runs an FTS5 match over chunk text. Results come back
// best-rank first; limit zero uses the store default.
func (s *Store) SearchChunks(ctx context.Context, query string, limit int) ([]ChunkHit, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.chunk_id, c.paper_id, c.kind, c.position, c.section_title, c.order_in_section,
			c.content, c.citations, c.token_count, c.tei_id, c.tei_xpath, c.start_char, c.end_char,
			COALESCE(p.title, ''), chunks_fts.rank
		 FROM chunks_fts
		 JOIN chunks c ON c.rowid = chunks_fts.rowid
		 LEFT JOIN papers p ON c.paper_id = p.id
		 WHERE chunks_fts MATCH ?
		 ORDER BY chunks_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var hits []ChunkHit
	for rows.Next() {
		var (
			hit           ChunkHit
			kind          string
			citationsJSON sql.NullString
			teiID         sql.NullString
			teiXPath      sql.NullString
			rank          float64
		)
		err := rows.Scan(&hit.ChunkID, &hit.PaperID, &kind, &hit.Position,
			&hit.SectionTitle, &hit.OrderInSection, &hit.Text,
			&citationsJSON, &hit.TokenCount, &teiID, &teiXPath,
			&hit.CharRange.Start, &hit.CharRange.End, &hit.PaperTitle, &rank)
		if err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}

		hit.Kind = types.ChunkKind(kind)
		if citationsJSON.Valid && citationsJSON.String != "" {
			if err := json.Unmarshal([]byte(citationsJSON.String), &hit.Citations); err != nil {
				return nil, fmt.Errorf("parsing citations: %w", err)
			}
		}
		if teiID.String != "" || teiXPath.String != "" {
			hit.TEI = &types.TEIAnchor{TEIID: teiID.String, XPath: teiXPath.String}
		}
		// FTS5 rank is more negative for better matches; flip it so
		// larger scores are better for downstream fusion.
		hit.Score = -rank
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
