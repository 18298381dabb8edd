package wire

import (
	"errors"
	"fmt"
)

// Every decoding failure wraps exactly one of these so callers can tell a
// short file from a malformed one with errors.Is.
var (
	// ErrTruncated is returned when the stream ends before a field or block
	// has been fully read.
	ErrTruncated = errors.New("truncated")

	// ErrSchemaViolation is returned when a field fails a documented range
	// or constant check.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrLengthMismatch is returned when the bytes consumed for a record do
	// not match its declared length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrUnknownPacketCode is returned when a block starts with a packet
	// code that no decoder handles.
	ErrUnknownPacketCode = errors.New("unknown packet code")
)

// Violation builds a schema violation error naming the offending field.
func Violation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

// Classify maps an error onto a short label for logs and metrics.
func Classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnknownPacketCode):
		return "unknown_packet"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrLengthMismatch):
		return "length"
	case errors.Is(err, ErrSchemaViolation):
		return "schema"
	default:
		return "other"
	}
}
