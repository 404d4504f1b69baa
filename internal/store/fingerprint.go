package store

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// Fingerprint returns a stable hash of docs. It changes when any document
// or the document order changes; tag order does not matter.
func Fingerprint(docs []Document) string {
	h := sha256.New()

	for _, doc := range docs {
		h.Write([]byte(doc.Ref))
		h.Write([]byte{0})
		h.Write([]byte(doc.Title))
		h.Write([]byte{0})
		h.Write([]byte(doc.Description))
		h.Write([]byte{0})

		tags := slices.Clone(doc.Tags)
		slices.Sort(tags)
		h.Write([]byte(strings.Join(tags, "\x01")))
		h.Write([]byte{0})

		h.Write([]byte(doc.Body))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
