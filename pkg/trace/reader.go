// Package trace decodes preprocessed call-graph trace files by random
// access: an offset index built at open time maps function numbers to byte
// offsets, and every query seeks straight to the record it needs.
package trace

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/pgrind/pgrind/pkg/codec"
)

// FormatVersion is the preprocessed trace file version this package decodes.
const FormatVersion uint32 = 7

const (
	// preambleSize is the width of the version, header offset and function
	// count words at the start of every file.
	preambleSize = 3 * codec.WordSize
	// functionFieldCount is the number of fixed words at the start of a
	// function record.
	functionFieldCount = 6
	// callFieldCount is the number of words in one call record block.
	callFieldCount = 4
	// calledFromCountField indexes the stored called-from count within the
	// function record's fixed fields.
	calledFromCountField = 4
)

// Reader decodes function and call records from a preprocessed trace file
// on demand. All queries seek against one exclusively owned file handle;
// a mutex serializes each seek+read pair, so a single Reader is safe for
// concurrent use. Records are never cached; only the offset index and the
// header block live in memory.
type Reader struct {
	mu            sync.Mutex
	src           *codec.ByteReader
	headerOffset  int64
	offsets       []int64
	defaultFormat CostFormat
	unit          TimeUnit
	header        *HeaderData // nil until the header block is parsed
	closed        bool
}

// Open validates the file's version tag, loads the per-function offset
// index and detects the recorded time unit. Any failure closes the file;
// no partially initialized Reader is ever returned.
func Open(path string, defaultFormat CostFormat) (*Reader, error) {
	src, err := codec.OpenByteReader(path)
	if err != nil {
		return nil, err
	}

	reader, err := initReader(src, defaultFormat)
	if err != nil {
		src.Close()
		return nil, err
	}
	return reader, nil
}

func initReader(src *codec.ByteReader, defaultFormat CostFormat) (*Reader, error) {
	fileHeader, err := src.Words(3)
	if err != nil {
		return nil, err
	}

	version, headerOffset, functionCount := fileHeader[0], fileHeader[1], fileHeader[2]
	if version != FormatVersion {
		return nil, &VersionError{Found: version, Expected: FormatVersion}
	}

	// A corrupt preamble can claim an absurd function count; check the
	// index fits in the file before allocating it.
	size, err := src.Size()
	if err != nil {
		return nil, err
	}
	if int64(functionCount) > (size-preambleSize)/codec.WordSize {
		return nil, fmt.Errorf("offset index of %d functions exceeds file size %d: %w",
			functionCount, size, codec.ErrTruncated)
	}

	words, err := src.Words(int(functionCount))
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, len(words))
	for i, w := range words {
		offsets[i] = int64(w)
	}

	r := &Reader{
		src:           src,
		headerOffset:  int64(headerOffset),
		offsets:       offsets,
		defaultFormat: defaultFormat,
	}

	// The recorded time unit lives in the events header. A header block
	// that cannot be parsed does not fail construction; the unit falls
	// back to microseconds and the parse error surfaces on the first
	// explicit header access.
	unit := Microseconds
	if header, err := r.loadHeaderLocked(); err == nil {
		unit = detectTimeUnit(header.Fields[headerKeyEvents])
	}
	r.unit = unit

	return r, nil
}

// FunctionCount returns the number of functions recorded in the file.
func (r *Reader) FunctionCount() uint32 {
	return uint32(len(r.offsets))
}

// TimeUnit returns the unit raw cost values were recorded in.
func (r *Reader) TimeUnit() TimeUnit {
	return r.unit
}

// DefaultFormat returns the cost format configured at Open.
func (r *Reader) DefaultFormat() CostFormat {
	return r.defaultFormat
}

// FunctionInfo decodes the record for one function. Every call re-reads
// the record from the file.
func (r *Reader) FunctionInfo(functionNr uint32) (*FunctionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	base, err := r.functionOffset(functionNr)
	if err != nil {
		return nil, err
	}
	if err := r.src.Seek(base); err != nil {
		return nil, err
	}

	fields, err := r.src.Words(functionFieldCount)
	if err != nil {
		return nil, err
	}

	info := &FunctionInfo{
		Nr:              functionNr,
		Line:            fields[0],
		SelfCost:        fields[1],
		InclusiveCost:   fields[2],
		InvocationCount: fields[3],
		CalledFromCount: fields[4],
		SubCallCount:    fields[5],
	}

	// The call record blocks sit between the fixed fields and the two
	// text lines; skip them without decoding.
	span := int64(codec.WordSize) * callFieldCount * (int64(info.CalledFromCount) + int64(info.SubCallCount))
	if err := r.src.Skip(span); err != nil {
		return nil, err
	}

	if info.File, err = r.src.Line(); err != nil {
		return nil, fmt.Errorf("function %d file path: %w", functionNr, err)
	}
	if info.Function, err = r.src.Line(); err != nil {
		return nil, fmt.Errorf("function %d name: %w", functionNr, err)
	}

	if info.FormattedSelfCost, err = r.formatCostLocked(info.SelfCost, r.defaultFormat); err != nil {
		return nil, err
	}
	if info.FormattedInclusiveCost, err = r.formatCostLocked(info.InclusiveCost, r.defaultFormat); err != nil {
		return nil, err
	}

	return info, nil
}

// CalledFromInfo decodes one of a function's called-from records.
func (r *Reader) CalledFromInfo(functionNr, calledFromNr uint32) (*CallInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	base, err := r.functionOffset(functionNr)
	if err != nil {
		return nil, err
	}

	counts, err := r.callCounts(base)
	if err != nil {
		return nil, err
	}
	if calledFromNr >= counts[0] {
		return nil, &RangeError{Kind: "called-from", Nr: calledFromNr, Count: counts[0]}
	}

	return r.readCallRecord(calledFromOffset(base, calledFromNr))
}

// SubCallInfo decodes one of a function's sub-call records. Sub-call blocks
// are stored after all called-from blocks, so the stored called-from count
// is re-read to place the block.
func (r *Reader) SubCallInfo(functionNr, subCallNr uint32) (*CallInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	base, err := r.functionOffset(functionNr)
	if err != nil {
		return nil, err
	}

	counts, err := r.callCounts(base)
	if err != nil {
		return nil, err
	}
	if subCallNr >= counts[1] {
		return nil, &RangeError{Kind: "sub-call", Nr: subCallNr, Count: counts[1]}
	}

	return r.readCallRecord(subCallOffset(base, counts[0], subCallNr))
}

// FormatCost renders a raw cost value in the requested format. An empty
// format uses the reader's default; any other unrecognized format falls
// back to microseconds.
func (r *Reader) FormatCost(rawCost uint32, format CostFormat) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	return r.formatCostLocked(rawCost, format)
}

// Close releases the underlying file handle. Queries made afterwards fail
// with ErrClosed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}

// functionOffset resolves a function number against the offset index.
func (r *Reader) functionOffset(functionNr uint32) (int64, error) {
	if int(functionNr) >= len(r.offsets) {
		return 0, &RangeError{Kind: "function", Nr: functionNr, Count: uint32(len(r.offsets))}
	}
	return r.offsets[functionNr], nil
}

// callCounts re-reads the stored called-from and sub-call counts from a
// function record's fixed fields.
func (r *Reader) callCounts(base int64) ([2]uint32, error) {
	if err := r.src.Seek(base + calledFromCountField*codec.WordSize); err != nil {
		return [2]uint32{}, err
	}
	words, err := r.src.Words(2)
	if err != nil {
		return [2]uint32{}, err
	}
	return [2]uint32{words[0], words[1]}, nil
}

// calledFromOffset is the byte offset of a function's nth called-from
// block: n call blocks plus the six fixed fields past the record base.
func calledFromOffset(base int64, calledFromNr uint32) int64 {
	return base + codec.WordSize*(callFieldCount*int64(calledFromNr)+functionFieldCount)
}

// subCallOffset is the byte offset of a function's nth sub-call block; all
// called-from blocks precede the sub-call blocks.
func subCallOffset(base int64, calledFromCount, subCallNr uint32) int64 {
	blocks := int64(calledFromCount) + int64(subCallNr)
	return base + codec.WordSize*(callFieldCount*blocks+functionFieldCount)
}

func (r *Reader) readCallRecord(offset int64) (*CallInfo, error) {
	if err := r.src.Seek(offset); err != nil {
		return nil, err
	}

	words, err := r.src.Words(callFieldCount)
	if err != nil {
		return nil, err
	}

	info := &CallInfo{
		FunctionNr: words[0],
		Line:       words[1],
		CallCount:  words[2],
		Cost:       words[3],
	}
	if info.FormattedCost, err = r.formatCostLocked(info.Cost, r.defaultFormat); err != nil {
		return nil, err
	}
	return info, nil
}

// formatCostLocked converts a raw cost into the requested representation.
// Millisecond and microsecond conversions round half away from zero.
// Callers hold r.mu.
func (r *Reader) formatCostLocked(rawCost uint32, format CostFormat) (string, error) {
	if format == "" {
		format = r.defaultFormat
	}

	switch format {
	case CostFormatPercent:
		header, err := r.loadHeaderLocked()
		if err != nil {
			return "", err
		}
		if header.Summary == 0 {
			return "0.00", nil
		}
		return strconv.FormatFloat(float64(rawCost)*100/header.Summary, 'f', 2, 64), nil
	case CostFormatMsec:
		return formatRounded(rawCost, r.unit.MillisecondDivisor()), nil
	default:
		return formatRounded(rawCost, r.unit.MicrosecondDivisor()), nil
	}
}

func formatRounded(rawCost, divisor uint32) string {
	rounded := math.Round(float64(rawCost) / float64(divisor))
	return strconv.FormatInt(int64(rounded), 10)
}
