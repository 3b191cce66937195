package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// WordSize is the width in bytes of every fixed field in a trace file.
const WordSize = 4

// ErrTruncated is returned when a fixed-width read runs past the end of the file.
var ErrTruncated = errors.New("truncated trace file")

// ByteReader provides cursor-based access to a trace file. It owns the
// underlying file handle exclusively until Close is called.
type ByteReader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
}

// OpenByteReader opens the file at path for reading.
func OpenByteReader(path string) (*ByteReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open trace file")
	}

	return &ByteReader{
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

// Seek moves the cursor to an absolute byte offset.
func (r *ByteReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.reader.Reset(r.file) // clear buffered bytes from the old position
	r.offset = offset
	return nil
}

// Skip advances the cursor n bytes past its current position without
// reading the bytes in between.
func (r *ByteReader) Skip(n int64) error {
	return r.Seek(r.offset + n)
}

// Word reads one unsigned 32-bit little-endian value and advances the cursor.
func (r *ByteReader) Word() (uint32, error) {
	var buf [WordSize]byte
	if _, err := io.ReadFull(r.reader, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, pkgerrors.Wrapf(ErrTruncated, "word at offset %d", r.offset)
		}
		return 0, err
	}

	r.offset += WordSize
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Words reads n consecutive words and advances the cursor past them.
func (r *ByteReader) Words(n int) ([]uint32, error) {
	words := make([]uint32, n)
	for i := range words {
		w, err := r.Word()
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return words, nil
}

// Line reads bytes up to and including the next newline and returns them
// without the terminator. End of file after at least one byte ends the line;
// end of file before any byte returns io.EOF.
func (r *ByteReader) Line() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}

	r.offset += int64(len(line))
	return strings.TrimSuffix(line, "\n"), nil
}

// Offset returns the current cursor position.
func (r *ByteReader) Offset() int64 {
	return r.offset
}

// Size returns the length of the underlying file in bytes.
func (r *ByteReader) Size() (int64, error) {
	info, err := r.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the underlying file handle.
func (r *ByteReader) Close() error {
	return r.file.Close()
}
