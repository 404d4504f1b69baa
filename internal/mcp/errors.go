// Package mcp implements the Model Context Protocol (MCP) server for folio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/store"
)

// Custom MCP error codes for folio.
const (
	// ErrCodeIndexNotFound indicates no index artifact exists or it is unreadable.
	ErrCodeIndexNotFound = -32001

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// ErrCodeDocumentNotFound indicates the requested document ref is unknown.
	ErrCodeDocumentNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrIndexNotFound indicates the index artifact does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrDocumentNotFound indicates no document has the requested ref.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	// A coded error may wrap a context error; the timeout wins.
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	}
	if fe, ok := folioerrors.As(err); ok {
		return mapFolioError(fe)
	}

	switch {
	case errors.Is(err, ErrIndexNotFound):
		return &MCPError{
			Code:    ErrCodeIndexNotFound,
			Message: "Index not found. Run 'folio build' first.",
		}
	case errors.Is(err, ErrDocumentNotFound):
		return &MCPError{
			Code:    ErrCodeDocumentNotFound,
			Message: "Document not found.",
		}
	case errors.Is(err, store.ErrIndexClosed):
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Index was closed while in use. Retry the request.",
		}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid parameters.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

func mapFolioError(fe *folioerrors.FolioError) *MCPError {
	message := fe.Message
	if fe.Suggestion != "" {
		message = fmt.Sprintf("%s %s", fe.Message, fe.Suggestion)
	}

	switch fe.Category {
	case folioerrors.CategoryIO:
		switch fe.Code {
		case folioerrors.ErrCodeFileNotFound, folioerrors.ErrCodeCorruptIndex:
			return &MCPError{Code: ErrCodeIndexNotFound, Message: message}
		default:
			return &MCPError{Code: ErrCodeInternalError, Message: message}
		}
	case folioerrors.CategoryNetwork:
		if fe.Code == folioerrors.ErrCodeIndexFetch {
			return &MCPError{Code: ErrCodeIndexNotFound, Message: message}
		}
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	case folioerrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
