package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// snapshot is the serialized form of an Index.
type snapshot struct {
	Version     int        `json:"version"`
	Backend     Backend    `json:"backend"`
	Fingerprint string     `json:"fingerprint"`
	Fields      []string   `json:"fields"`
	Documents   []Document `json:"documents"`
}

func writeSnapshot(w io.Writer, backend Backend, docs []Document) error {
	snap := snapshot{
		Version:     SnapshotVersion,
		Backend:     backend,
		Fingerprint: Fingerprint(docs),
		Fields:      Fields,
		Documents:   docs,
	}
	if snap.Documents == nil {
		snap.Documents = []Document{}
	}

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to write index snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Serialize and rebuilds the index with
// the backend recorded in it.
func Load(r io.Reader) (Index, error) {
	return LoadAs(r, "")
}

// LoadAs is Load with the backend overridden. An empty backend keeps the
// one recorded in the snapshot.
func LoadAs(r io.Reader, backend Backend) (Index, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, corrupt("failed to decode index snapshot", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, corrupt(fmt.Sprintf("unsupported index snapshot version %d", snap.Version), nil)
	}
	if got := Fingerprint(snap.Documents); got != snap.Fingerprint {
		return nil, corrupt("index snapshot fingerprint mismatch", nil).
			WithDetail("expected", snap.Fingerprint).
			WithDetail("actual", got)
	}

	if backend == "" {
		backend = snap.Backend
	}
	idx, err := NewIndex(backend)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	for _, doc := range snap.Documents {
		if err := idx.AddDocument(ctx, doc); err != nil {
			_ = idx.Close()
			return nil, corrupt("failed to rebuild index from snapshot", err)
		}
	}
	return idx, nil
}

func corrupt(msg string, cause error) *folioerrors.FolioError {
	return folioerrors.New(folioerrors.ErrCodeCorruptIndex, msg, cause).
		WithSuggestion("rebuild the site with `folio build`")
}
