package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// SQLiteIndex matches with an in-memory SQLite FTS5 table ranked by bm25().
type SQLiteIndex struct {
	docStore
	db *sql.DB
}

var _ Index = (*SQLiteIndex)(nil)

// NewSQLiteIndex creates an empty in-memory FTS5 index.
func NewSQLiteIndex() (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	schema := `
	CREATE VIRTUAL TABLE docs USING fts5(
		ord UNINDEXED,
		title,
		tags,
		description,
		body,
		tokenize='unicode61'
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteIndex{docStore: newDocStore(), db: db}, nil
}

// AddDocument implements Index. Field text is stored pre-tokenized so
// FTS5 sees the same terms as the query.
func (s *SQLiteIndex) AddDocument(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc = normalize(doc)
	ord, err := s.reserve(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO docs(ord, title, tags, description, body) VALUES (?, ?, ?, ?, ?)`,
		ord,
		prepare(doc.Title),
		prepare(strings.Join(doc.Tags, " ")),
		prepare(doc.Description),
		prepare(doc.Body),
	)
	if err != nil {
		return folioerrors.New(folioerrors.ErrCodeIndexFailed,
			fmt.Sprintf("failed to index document %s", doc.Ref), err).
			WithDetail("ref", doc.Ref)
	}

	s.commit(doc)
	return nil
}

func prepare(text string) string {
	return strings.Join(Tokenize(text), " ")
}

// matchExpr builds an FTS5 query matching any term as a prefix.
func matchExpr(terms []string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(parts, " OR ")
}

// Search implements Index.
func (s *SQLiteIndex) Search(ctx context.Context, queryStr string, w Weights) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrIndexClosed
	}

	terms := QueryTerms(queryStr)
	if len(terms) == 0 || len(s.docs) == 0 {
		return []Hit{}, nil
	}

	// bm25() is lower-is-better; the first weight is for ord.
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(ord AS INTEGER), bm25(docs, 0.0, ?, ?, ?, ?) AS score
		FROM docs
		WHERE docs MATCH ?
		ORDER BY score, CAST(ord AS INTEGER)`,
		w.Title, w.Tags, w.Description, w.Body, matchExpr(terms))
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeSearchFailed, "search failed", err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var (
			ord   int
			score float64
		)
		if err := rows.Scan(&ord, &score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if ord < 0 || ord >= len(s.docs) {
			continue
		}
		// A term found only in zero-weight fields still matches; drop it.
		if score == 0 {
			continue
		}
		hits = append(hits, s.hit(ord, -score))
	}
	if err := rows.Err(); err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeSearchFailed, "search failed", err)
	}
	return hits, nil
}

// Serialize implements Index.
func (s *SQLiteIndex) Serialize(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrIndexClosed
	}
	return writeSnapshot(w, BackendSQLite, s.snapshot())
}

// Backend implements Index.
func (s *SQLiteIndex) Backend() Backend {
	return BackendSQLite
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
