package analyze

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgrind/pgrind/pkg/codec"
	"github.com/pgrind/pgrind/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFunction struct {
	selfCost      uint32
	inclusiveCost uint32
	name          string
}

// buildTrace writes a minimal trace file with one call-free record per
// function.
func buildTrace(t *testing.T, functions []testFunction) string {
	t.Helper()

	headerBlock := "summary: 10000 0\n\n" // blank line terminates the header block
	headerOffset := (3 + len(functions)) * codec.WordSize

	var records bytes.Buffer
	offsets := make([]uint32, len(functions))
	for i, fn := range functions {
		offsets[i] = uint32(headerOffset + len(headerBlock) + records.Len())
		putWords(&records, 1, fn.selfCost, fn.inclusiveCost, 1, 0, 0)
		records.WriteString("file.php\n" + fn.name + "\n")
	}

	var file bytes.Buffer
	putWords(&file, trace.FormatVersion, uint32(headerOffset), uint32(len(functions)))
	putWords(&file, offsets...)
	file.WriteString(headerBlock)
	file.Write(records.Bytes())

	tmpDir, err := os.MkdirTemp("", "analyze_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	path := filepath.Join(tmpDir, "trace.dat")
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0600))
	return path
}

func putWords(buf *bytes.Buffer, values ...uint32) {
	for _, v := range values {
		var word [codec.WordSize]byte
		binary.LittleEndian.PutUint32(word[:], v)
		buf.Write(word[:])
	}
}

func openTestReader(t *testing.T, functions []testFunction) *trace.Reader {
	t.Helper()

	reader, err := trace.Open(buildTrace(t, functions), trace.CostFormatUsec)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })
	return reader
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("self")
	require.NoError(t, err)
	assert.Equal(t, BySelfCost, key)

	key, err = ParseSortKey("inclusive")
	require.NoError(t, err)
	assert.Equal(t, ByInclusiveCost, key)

	_, err = ParseSortKey("total")
	assert.Error(t, err)
}

func TestHotspots_OrderBySelfCost(t *testing.T) {
	reader := openTestReader(t, []testFunction{
		{selfCost: 100, inclusiveCost: 9000, name: "main"},
		{selfCost: 5000, inclusiveCost: 5000, name: "query"},
		{selfCost: 2000, inclusiveCost: 3000, name: "render"},
	})

	summaries, err := Hotspots(reader, BySelfCost, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "query", summaries[0].Function)
	assert.Equal(t, "render", summaries[1].Function)
	assert.Equal(t, "main", summaries[2].Function)
}

func TestHotspots_OrderByInclusiveCost(t *testing.T) {
	reader := openTestReader(t, []testFunction{
		{selfCost: 100, inclusiveCost: 9000, name: "main"},
		{selfCost: 5000, inclusiveCost: 5000, name: "query"},
		{selfCost: 2000, inclusiveCost: 3000, name: "render"},
	})

	summaries, err := Hotspots(reader, ByInclusiveCost, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "main", summaries[0].Function)
	assert.Equal(t, "query", summaries[1].Function)
	assert.Equal(t, "render", summaries[2].Function)
}

func TestHotspots_Limit(t *testing.T) {
	reader := openTestReader(t, []testFunction{
		{selfCost: 100, inclusiveCost: 100, name: "a"},
		{selfCost: 300, inclusiveCost: 300, name: "b"},
		{selfCost: 200, inclusiveCost: 200, name: "c"},
	})

	summaries, err := Hotspots(reader, BySelfCost, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "b", summaries[0].Function)
	assert.Equal(t, "c", summaries[1].Function)
}

func TestCostShare(t *testing.T) {
	summaries := []FunctionSummary{
		{Function: "a", SelfCost: 6000},
		{Function: "b", SelfCost: 3000},
		{Function: "c", SelfCost: 900},
		{Function: "d", SelfCost: 100},
	}

	top := CostShare(summaries, BySelfCost, 0.9)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Function)
	assert.Equal(t, "b", top[1].Function)
}

func TestCostShare_DegenerateShares(t *testing.T) {
	summaries := []FunctionSummary{{Function: "a", SelfCost: 10}}

	assert.Len(t, CostShare(summaries, BySelfCost, 0), 1)
	assert.Len(t, CostShare(summaries, BySelfCost, 1), 1)

	// All-zero costs keep the full list.
	zero := []FunctionSummary{{Function: "a"}, {Function: "b"}}
	assert.Len(t, CostShare(zero, BySelfCost, 0.5), 2)
}
