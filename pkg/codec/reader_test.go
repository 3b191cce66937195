package codec

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, data []byte) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "codec_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	path := filepath.Join(tmpDir, "trace.dat")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func words(values ...uint32) []byte {
	buf := make([]byte, len(values)*WordSize)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*WordSize:], v)
	}
	return buf
}

func TestOpenByteReader_NonExistentFile(t *testing.T) {
	reader, err := OpenByteReader("/non/existent/trace.dat")
	assert.Error(t, err)
	assert.Nil(t, reader)
}

func TestByteReader_Word(t *testing.T) {
	path := writeTestFile(t, words(7, 20, 0xFFFFFFFF))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	w, err := reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), w)

	w, err = reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(20), w)

	w, err = reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), w)

	assert.Equal(t, int64(12), reader.Offset())
}

func TestByteReader_Word_Truncated(t *testing.T) {
	// Two bytes are not enough for a word.
	path := writeTestFile(t, []byte{0x01, 0x02})

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Word()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestByteReader_Words(t *testing.T) {
	path := writeTestFile(t, words(1, 2, 3, 4))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	ws, err := reader.Words(4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, ws)
}

func TestByteReader_Words_Truncated(t *testing.T) {
	path := writeTestFile(t, words(1, 2))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Words(3)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestByteReader_Line(t *testing.T) {
	path := writeTestFile(t, []byte("file.php\nmain\n"))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	line, err := reader.Line()
	require.NoError(t, err)
	assert.Equal(t, "file.php", line)
	assert.Equal(t, int64(9), reader.Offset())

	line, err = reader.Line()
	require.NoError(t, err)
	assert.Equal(t, "main", line)
}

func TestByteReader_Line_EOFWithoutNewline(t *testing.T) {
	path := writeTestFile(t, []byte("no terminator"))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	line, err := reader.Line()
	require.NoError(t, err)
	assert.Equal(t, "no terminator", line)

	_, err = reader.Line()
	assert.Equal(t, io.EOF, err)
}

func TestByteReader_Line_EmptyFile(t *testing.T) {
	path := writeTestFile(t, []byte{})

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Line()
	assert.Equal(t, io.EOF, err)
}

func TestByteReader_Seek(t *testing.T) {
	path := writeTestFile(t, words(10, 20, 30))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	require.NoError(t, reader.Seek(8))
	assert.Equal(t, int64(8), reader.Offset())

	w, err := reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(30), w)

	// Seeking backwards discards buffered data.
	require.NoError(t, reader.Seek(0))
	w, err = reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(10), w)
}

func TestByteReader_Skip(t *testing.T) {
	path := writeTestFile(t, words(10, 20, 30, 40))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Word()
	require.NoError(t, err)

	// Skip two words without reading them.
	require.NoError(t, reader.Skip(2*WordSize))

	w, err := reader.Word()
	require.NoError(t, err)
	assert.Equal(t, uint32(40), w)
}

func TestByteReader_Size(t *testing.T) {
	path := writeTestFile(t, words(1, 2, 3))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)
	defer reader.Close()

	size, err := reader.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(3*WordSize), size)
}

func TestByteReader_Close(t *testing.T) {
	path := writeTestFile(t, words(1))

	reader, err := OpenByteReader(path)
	require.NoError(t, err)

	assert.NoError(t, reader.Close())
}

func BenchmarkByteReader_Word(b *testing.B) {
	tmpDir, err := os.MkdirTemp("", "codec_bench")
	require.NoError(b, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "trace.dat")
	data := make([]byte, 1024*1024)
	require.NoError(b, os.WriteFile(path, data, 0600))

	reader, err := OpenByteReader(path)
	require.NoError(b, err)
	defer reader.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reader.Word(); err != nil {
			if err := reader.Seek(0); err != nil {
				b.Fatal(err)
			}
		}
	}
}
