// Package codec provides low-level binary access to preprocessed trace files.
//
// The codec package implements the primitive reads every higher layer is
// built on: fixed-width little-endian words and newline-terminated text
// lines, read from one exclusively owned file handle at an explicit cursor
// position.
//
// # File Layout
//
// A preprocessed trace file is a sequence of unsigned 32-bit little-endian
// words interleaved with newline-terminated text:
//
//	[version][headerOffset][functionCount]
//	[functionOffset_0] ... [functionOffset_{functionCount-1}]
//	@headerOffset: "key: value" lines, blank line or EOF terminates
//	@each functionOffset:
//	  [line][selfCost][inclusiveCost][invocationCount][calledFromCount][subCallCount]
//	  calledFromCount x [calleeFunctionNr][line][callCount][cost]
//	  subCallCount    x [calleeFunctionNr][line][callCount][cost]
//	  <newline-terminated file path>
//	  <newline-terminated function name>
//
// Text lines carry no length prefix; the newline written by the producer is
// the only terminator.
//
// # Error Handling
//
// A fixed-width read that runs past the end of the file fails with
// ErrTruncated, wrapped with the offset at which the read started. Line
// reads treat end of file after at least one byte as an implicit
// terminator; end of file before any byte is io.EOF.
//
// # Thread Safety
//
// A ByteReader owns a single file cursor and is not safe for concurrent
// use. Callers serialize access; see the trace package.
package codec
