package trace

import (
	"errors"
	"fmt"
)

// FunctionInfo describes one profiled function's aggregate costs and call
// relationships, decoded straight from its fixed-width record.
type FunctionInfo struct {
	Nr              uint32
	Line            uint32
	SelfCost        uint32 // raw cost units
	InclusiveCost   uint32 // raw cost units
	InvocationCount uint32
	CalledFromCount uint32
	SubCallCount    uint32
	File            string
	Function        string

	// Costs rendered with the reader's default cost format.
	FormattedSelfCost      string
	FormattedInclusiveCost string
}

// CallInfo describes one call edge. The same layout backs both called-from
// and sub-call records; only the offset the block is read from differs.
type CallInfo struct {
	FunctionNr    uint32
	Line          uint32
	CallCount     uint32
	Cost          uint32 // raw cost units, summed over all calls on this edge
	FormattedCost string
}

// HeaderData is the parsed textual metadata block. Runs and Summary are
// aggregated across all "summary" lines; every other key maps to its last
// seen value.
type HeaderData struct {
	Runs    uint32
	Summary float64
	Fields  map[string]string
}

// ErrClosed is returned by every query made after Close.
var ErrClosed = errors.New("trace reader is closed")

// VersionError is returned when the file's version tag does not match
// FormatVersion.
type VersionError struct {
	Found    uint32
	Expected uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported trace file version %d (expected %d)", e.Found, e.Expected)
}

// RangeError is returned when a function, called-from, or sub-call number
// is outside the bounds recorded in the file.
type RangeError struct {
	Kind  string // "function", "called-from" or "sub-call"
	Nr    uint32
	Count uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s number %d out of range (count %d)", e.Kind, e.Nr, e.Count)
}

// HeaderParseError is returned when a non-blank header line lacks the
// "key: value" separator or carries an unparseable summary value.
type HeaderParseError struct {
	Line string
}

func (e *HeaderParseError) Error() string {
	return fmt.Sprintf("malformed header line %q", e.Line)
}
