package trace

import (
	"io"
	"strconv"
	"strings"
)

// Well-known header keys with typed defaults.
const (
	headerKeyRuns    = "runs"
	headerKeySummary = "summary"
	headerKeyCmd     = "cmd"
	headerKeyCreator = "creator"
	headerKeyEvents  = "events"
)

// loadHeaderLocked parses the textual metadata block at headerOffset. The
// parse runs at most once per reader; later calls return the cached data.
// Callers hold r.mu.
func (r *Reader) loadHeaderLocked() (*HeaderData, error) {
	if r.header != nil {
		return r.header, nil
	}

	if err := r.src.Seek(r.headerOffset); err != nil {
		return nil, err
	}

	header := &HeaderData{Fields: make(map[string]string)}
	for {
		line, err := r.src.Line()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}

		key, value, found := strings.Cut(line, ": ")
		if !found {
			return nil, &HeaderParseError{Line: line}
		}

		// Each run of an aggregated trace contributes one summary line;
		// its first component is the time total, the rest (memory usage)
		// is discarded.
		if key == headerKeySummary {
			timePart, _, _ := strings.Cut(value, " ")
			total, err := strconv.ParseFloat(timePart, 64)
			if err != nil {
				return nil, &HeaderParseError{Line: line}
			}
			header.Runs++
			header.Summary += total
			continue
		}

		header.Fields[key] = value
	}

	r.header = header
	return header, nil
}

// Header returns the value recorded for a header key. The numeric "runs"
// and "summary" aggregates are rendered as decimal strings; unknown keys
// return "".
func (r *Reader) Header(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}

	header, err := r.loadHeaderLocked()
	if err != nil {
		return "", err
	}

	switch key {
	case headerKeyRuns:
		return strconv.FormatUint(uint64(header.Runs), 10), nil
	case headerKeySummary:
		return strconv.FormatFloat(header.Summary, 'f', -1, 64), nil
	}
	return header.Fields[key], nil
}

// Runs returns the number of summary lines seen in the header block.
func (r *Reader) Runs() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}

	header, err := r.loadHeaderLocked()
	if err != nil {
		return 0, err
	}
	return header.Runs, nil
}

// Summary returns the aggregated time total across all summary lines.
func (r *Reader) Summary() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}

	header, err := r.loadHeaderLocked()
	if err != nil {
		return 0, err
	}
	return header.Summary, nil
}
