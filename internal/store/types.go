// Package store holds the search index contract and its backends.
//
// An Index is built by adding documents once, serialized to a single
// self-contained snapshot and loaded back for querying. The snapshot keeps
// the documents; each backend rebuilds its postings from them on Load, so
// the matching algorithm can change without touching the artifact.
package store

import (
	"context"
	"errors"
	"io"
)

// Document is one searchable item. Ref is its unique identifier, the
// item's canonical URL.
type Document struct {
	Ref         string   `json:"ref"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Body        string   `json:"body,omitempty"`
}

// Hit is one search result. Document is the full stored document.
type Hit struct {
	Ref      string   `json:"ref"`
	Score    float64  `json:"score"`
	Document Document `json:"document"`
}

// Weights multiplies matches found in each field. A zero weight excludes
// the field from matching.
type Weights struct {
	Title       float64
	Tags        float64
	Description float64
	Body        float64
}

// DefaultWeights are the fixed query-time field weights.
var DefaultWeights = Weights{Title: 10, Tags: 5, Description: 3, Body: 1}

// Field names, in snapshot order.
const (
	FieldTitle       = "title"
	FieldTags        = "tags"
	FieldDescription = "description"
	FieldBody        = "body"
)

// Fields lists the indexed fields.
var Fields = []string{FieldTitle, FieldTags, FieldDescription, FieldBody}

func (w Weights) forField(field string) float64 {
	switch field {
	case FieldTitle:
		return w.Title
	case FieldTags:
		return w.Tags
	case FieldDescription:
		return w.Description
	case FieldBody:
		return w.Body
	}
	return 0
}

// Index is a searchable document store.
type Index interface {
	// AddDocument indexes doc. Adding a second document with the same Ref
	// fails with ErrCodeDuplicateRef and leaves the index unchanged.
	AddDocument(ctx context.Context, doc Document) error

	// Serialize writes a snapshot that Load can read back.
	Serialize(w io.Writer) error

	// Search returns the documents matching query, highest score first,
	// ties in insertion order. A blank query returns no hits.
	Search(ctx context.Context, query string, w Weights) ([]Hit, error)

	// Document returns the stored document for ref.
	Document(ref string) (Document, bool)

	// Len returns the number of documents.
	Len() int

	// Fingerprint identifies the indexed content.
	Fingerprint() string

	// Backend names the matching implementation.
	Backend() Backend

	Close() error
}

// ErrIndexClosed is returned by operations on a closed index.
var ErrIndexClosed = errors.New("index is closed")
