package rdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeStatementLimitExceeded indicates that the maximum number of triples was exceeded.
	ErrCodeStatementLimitExceeded ErrorCode = "STATEMENT_LIMIT_EXCEEDED"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeInvalidStatement indicates a triple that cannot be written.
	ErrCodeInvalidStatement ErrorCode = "INVALID_STATEMENT"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrStatementLimitExceeded indicates that the maximum number of triples was exceeded.
	ErrStatementLimitExceeded = errors.New("rdf: maximum number of statements exceeded")
	// ErrInvalidStatement indicates a triple with a missing or illegal position.
	ErrInvalidStatement = errors.New("rdf: invalid statement")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrStatementLimitExceeded):
		return ErrCodeStatementLimitExceeded
	case errors.Is(err, ErrInvalidStatement):
		return ErrCodeInvalidStatement
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format Format // Format being decoded
	Line   int    // 1-based line number (0 if unknown)
	Column int    // 1-based column number (0 if unknown)
	Err    error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError positions err at byte offset pos of input.
func newParseError(format Format, input string, pos int, err error) error {
	if pos > len(input) {
		pos = len(input)
	}
	line := 1 + strings.Count(input[:pos], "\n")
	column := pos + 1
	if idx := strings.LastIndexByte(input[:pos], '\n'); idx >= 0 {
		column = pos - idx
	}
	return &ParseError{Format: format, Line: line, Column: column, Err: err}
}
