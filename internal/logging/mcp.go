package logging

import (
	"log/slog"
)

// SetupMCPMode installs a file-only logger for `folio mcp`.
// stdout is reserved for JSON-RPC; nothing may be written to stdout or
// stderr while the server runs.
func SetupMCPMode(level string) (func(), error) {
	cfg := Config{
		Level:         level,
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	slog.Info("mcp_logging_initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", level))

	return cleanup, nil
}
