package format

import (
	"errors"
	"fmt"

	"github.com/andres-sumihe/swift-generator/internal/swift"
)

var (
	ErrUnknownFormat      = errors.New("format: unknown format")
	ErrNilMessage         = errors.New("format: message is nil")
	ErrNoTypeCode         = swift.ErrNoTypeCode
	ErrEmptyBody          = swift.ErrEmptyBody
	ErrSchema             = errors.New("format: required fields missing")
	ErrConfig             = errors.New("format: invalid configuration")
	ErrNulByte            = errors.New("format: message contains NUL")
	ErrCharset            = errors.New("format: character not allowed")
	ErrEncoding           = errors.New("format: not representable in encoding")
	ErrDelimiterInMessage = errors.New("format: message contains the batch delimiter")
	ErrMarkerInMessage    = errors.New("format: message contains a frame marker")
	ErrEmptyBatch         = errors.New("format: batch is empty")
	ErrNotBinary          = errors.New("format: payload is a hex dump, not binary")
)

// FormatError is the user-facing failure of a validate or encode step.
type FormatError struct {
	Format Format
	Op     string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("format %s: %s: %v", e.Format, e.Op, e.Err)
	}
	return fmt.Sprintf("format %s: %s: %v (%s)", e.Format, e.Op, e.Err, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

func newError(f Format, op, value string, err error) *FormatError {
	return &FormatError{Format: f, Op: op, Value: value, Err: err}
}
