package store

import (
	"fmt"
	"strings"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// Backend names an Index implementation.
type Backend string

const (
	// BackendBleve matches with bleve prefix queries (default).
	BackendBleve Backend = "bleve"

	// BackendSQLite matches with SQLite FTS5 and bm25().
	BackendSQLite Backend = "sqlite"
)

// ParseBackend validates name, treating "" as the default backend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackendBleve:
		return BackendBleve, nil
	case BackendSQLite:
		return BackendSQLite, nil
	default:
		return "", folioerrors.New(folioerrors.ErrCodeUnknownBackend,
			fmt.Sprintf("unknown index backend %q", name), nil).
			WithSuggestion("valid backends: bleve, sqlite")
	}
}

// NewIndex creates an empty index for backend.
func NewIndex(backend Backend) (Index, error) {
	b, err := ParseBackend(string(backend))
	if err != nil {
		return nil, err
	}

	switch b {
	case BackendSQLite:
		return NewSQLiteIndex()
	default:
		return NewBleveIndex()
	}
}
