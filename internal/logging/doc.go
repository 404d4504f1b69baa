// Package logging configures slog for folio.
//
// Without --debug, folio logs warnings and errors to stderr as JSON. With
// --debug, logs are also written to ~/.folio/logs/folio.log and rotated by
// size. The MCP server logs to the file only, since stdout carries the
// protocol stream.
package logging
