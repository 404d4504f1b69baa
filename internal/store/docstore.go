package store

import (
	"fmt"
	"sync"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// docStore keeps documents in insertion order. Backends embed it and
// hold mu while touching their own postings.
type docStore struct {
	mu     sync.RWMutex
	docs   []Document
	byRef  map[string]int
	closed bool
}

func newDocStore() docStore {
	return docStore{byRef: make(map[string]int)}
}

// normalize substitutes empty values for missing fields.
func normalize(doc Document) Document {
	if doc.Tags == nil {
		doc.Tags = []string{}
	} else {
		doc.Tags = append([]string(nil), doc.Tags...)
	}
	return doc
}

// reserve validates doc and returns its ordinal. Callers hold mu.
func (s *docStore) reserve(doc Document) (int, error) {
	if s.closed {
		return 0, ErrIndexClosed
	}
	if doc.Ref == "" {
		return 0, folioerrors.New(folioerrors.ErrCodeInvalidInput, "document ref is required", nil)
	}
	if _, dup := s.byRef[doc.Ref]; dup {
		return 0, folioerrors.New(folioerrors.ErrCodeDuplicateRef,
			fmt.Sprintf("duplicate document ref %s", doc.Ref), nil).
			WithDetail("ref", doc.Ref)
	}
	return len(s.docs), nil
}

// commit records doc at the ordinal reserve returned. Callers hold mu.
func (s *docStore) commit(doc Document) {
	s.byRef[doc.Ref] = len(s.docs)
	s.docs = append(s.docs, doc)
}

// Document returns the stored document for ref.
func (s *docStore) Document(ref string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byRef[ref]
	if !ok {
		return Document{}, false
	}
	return s.docs[i], true
}

// Len returns the number of documents.
func (s *docStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Fingerprint identifies the indexed content.
func (s *docStore) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Fingerprint(s.docs)
}

// snapshot copies the documents. Callers hold mu.
func (s *docStore) snapshot() []Document {
	return append([]Document(nil), s.docs...)
}

// hit builds a Hit for the document at ordinal i. Callers hold mu.
func (s *docStore) hit(i int, score float64) Hit {
	doc := s.docs[i]
	return Hit{Ref: doc.Ref, Score: score, Document: doc}
}
