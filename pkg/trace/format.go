package trace

import (
	"fmt"
	"regexp"
)

// CostFormat selects how raw cost values are rendered.
type CostFormat string

const (
	// CostFormatPercent renders a cost as its share of the aggregated
	// summary total, fixed-point with two decimals.
	CostFormatPercent CostFormat = "percent"
	// CostFormatMsec renders a cost in whole milliseconds.
	CostFormatMsec CostFormat = "msec"
	// CostFormatUsec renders a cost in whole microseconds.
	CostFormatUsec CostFormat = "usec"
)

// ParseCostFormat validates a caller-supplied format string.
func ParseCostFormat(s string) (CostFormat, error) {
	switch CostFormat(s) {
	case CostFormatPercent, CostFormatMsec, CostFormatUsec:
		return CostFormat(s), nil
	}
	return "", fmt.Errorf("unknown cost format %q (want percent, msec or usec)", s)
}

// TimeUnit is the unit raw cost values were recorded in, detected from the
// "events" header.
type TimeUnit int

const (
	Microseconds TimeUnit = iota
	Nanoseconds
)

func (u TimeUnit) String() string {
	if u == Nanoseconds {
		return "ns"
	}
	return "µs"
}

// MillisecondDivisor converts raw costs to milliseconds.
func (u TimeUnit) MillisecondDivisor() uint32 {
	if u == Nanoseconds {
		return 1_000_000
	}
	return 1000
}

// MicrosecondDivisor converts raw costs to microseconds.
func (u TimeUnit) MicrosecondDivisor() uint32 {
	if u == Nanoseconds {
		return 1000
	}
	return 1
}

// timeUnitPattern matches the unit annotation xdebug writes into the events
// header, e.g. "Time_(10ns)".
var timeUnitPattern = regexp.MustCompile(`Time_\(\d+(µs|ns)\)`)

// detectTimeUnit derives the time unit from the events header value.
// Files without a matching annotation default to microseconds.
func detectTimeUnit(events string) TimeUnit {
	m := timeUnitPattern.FindStringSubmatch(events)
	if m != nil && m[1] == "ns" {
		return Nanoseconds
	}
	return Microseconds
}
