package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.folio/logs, or a temp directory fallback when the
// home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".folio", "logs")
	}
	return filepath.Join(home, ".folio", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "folio.log")
}
