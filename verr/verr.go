// Package verr defines the error taxonomy shared by every stage of the
// codec, so that callers can dispatch on Kind instead of matching error
// strings.
package verr

import (
	"fmt"

	"github.com/mewkiz/pkg/errutil"
)

// Kind classifies an Error by how the caller should react to it.
type Kind int

// Error kinds.
const (
	// KindIO indicates a transport read/write failure, or an end-of-stream
	// that was not aligned to a record boundary.
	KindIO Kind = iota
	// KindUnexpectedEOF indicates an aligned short read; not necessarily
	// fatal to the caller.
	KindUnexpectedEOF
	// KindCorruptedData indicates a structurally invalid header, envelope,
	// or a codeword/sample value outside its legal range.
	KindCorruptedData
	// KindInvalidParameter indicates a public API was called with
	// inconsistent or out-of-range arguments.
	KindInvalidParameter
	// KindReservedNonZero indicates a reserved header slot was set.
	KindReservedNonZero
	// KindTempFile indicates a driver could not create a scratch file.
	KindTempFile
	// KindOutOfMemory indicates a size that would require an unreasonable
	// allocation was rejected before the allocation was attempted.
	KindOutOfMemory
	// KindNotImplemented indicates a recognized-but-unsupported feature,
	// e.g. a non-zero forest_id.
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUnexpectedEOF:
		return "unexpected-end-of-stream"
	case KindCorruptedData:
		return "corrupted-data"
	case KindInvalidParameter:
		return "invalid-parameter"
	case KindReservedNonZero:
		return "non-zero-reserved-or-padding"
	case KindTempFile:
		return "unable-to-create-temporary-file"
	case KindOutOfMemory:
		return "out-of-memory"
	case KindNotImplemented:
		return "feature-not-implemented"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned at every public boundary of this
// module. Op names the failing operation (e.g. "forest.Read"), Kind
// classifies the failure, and Err is the wrapped cause (nil for errors
// raised directly against a literal message).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a *Error for op with the given kind and message, retaining the
// file:line position information errutil.Newf attaches.
func New(op string, kind Kind, format string, a ...interface{}) error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  errutil.Newf(format, a...),
	}
}

// Wrap returns a *Error for op with the given kind, wrapping err. If err is
// nil, Wrap returns nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  errutil.Err(err),
	}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
