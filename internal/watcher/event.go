package watcher

import (
	"time"
)

// Operation is a file system change.
type Operation int

const (
	// OpCreate is a new file or directory.
	OpCreate Operation = iota
	// OpModify is a write to an existing file.
	OpModify
	// OpDelete is a removed file or directory.
	OpDelete
	// OpRename is a file moved away; the new name arrives as OpCreate.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one change below the watched root.
type FileEvent struct {
	// Path is relative to the watched root, slash separated.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period that ends a batch. Default: 500ms.
	Debounce time.Duration

	// BatchBufferSize is the number of undelivered batches kept before
	// new ones are dropped. Default: 16.
	BatchBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Debounce:        500 * time.Millisecond,
		BatchBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	if o.BatchBufferSize <= 0 {
		o.BatchBufferSize = d.BatchBufferSize
	}
	return o
}
