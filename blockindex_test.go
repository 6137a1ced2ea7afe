package mdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The key-info descriptors parsed at open time carry each block's first and
// last key as written by the fixture, and block 0's num_entries.
func TestBlockIndex_KeyBlockDescriptorsMatchEntries(t *testing.T) {
	blockA := []fixtureEntry{
		{key: "apple", payload: []byte("a")},
		{key: "moon", payload: []byte("m")},
	}
	blockB := []fixtureEntry{
		{key: "noon", payload: []byte("n")},
		{key: "zebra", payload: []byte("z")},
	}
	data := buildArchive(t, fixtureOpts{
		version:        2.0,
		encoding:       "UTF-8",
		keyBlocks:      [][]fixtureEntry{blockA, blockB},
		compressKey:    true,
		compressRecord: true,
	})
	path := writeTempFile(t, data)

	dict, err := OpenText(path)
	require.NoError(t, err)
	defer dict.Close()

	require.Equal(t, 2, len(dict.s.index.keyBlocks))
	assert.Equal(t, "apple", dict.s.index.keyBlocks[0].FirstKey)
	assert.Equal(t, "moon", dict.s.index.keyBlocks[0].LastKey)
	assert.Equal(t, int64(2), dict.s.index.keyBlocks[0].NumEntries)
	assert.Equal(t, "noon", dict.s.index.keyBlocks[1].FirstKey)
	assert.Equal(t, "zebra", dict.s.index.keyBlocks[1].LastKey)
}

// Record blocks' logical ranges partition the address
// space with no gaps or overlaps.
func TestBlockIndex_RecordBlocksPartitionAddressSpace(t *testing.T) {
	entries := []fixtureEntry{
		{key: "apple", payload: []byte("111")},
		{key: "banana", payload: []byte("2222")},
		{key: "cherry", payload: []byte("33")},
	}
	data := buildArchive(t, fixtureOpts{
		version:          2.0,
		encoding:         "UTF-8",
		keyBlocks:        [][]fixtureEntry{entries},
		compressKey:      true,
		compressRecord:   true,
		recordBlockSplit: []int{3, 4, 2},
	})
	path := writeTempFile(t, data)

	dict, err := OpenText(path)
	require.NoError(t, err)
	defer dict.Close()

	blocks := dict.s.index.recordBlocks
	require.Len(t, blocks, 3)
	var want int64
	for _, b := range blocks {
		assert.Equal(t, want, b.LogicalOffset)
		want += b.DecompressedSize
	}
	assert.Equal(t, want, dict.s.index.totalLogicalSize)
}

func TestBlockIndex_FindKeyBlock(t *testing.T) {
	blockA := []fixtureEntry{{key: "apple", payload: []byte("a")}, {key: "moon", payload: []byte("m")}}
	blockB := []fixtureEntry{{key: "noon", payload: []byte("n")}, {key: "zebra", payload: []byte("z")}}
	data := buildArchive(t, fixtureOpts{
		version:        2.0,
		encoding:       "UTF-8",
		keyBlocks:      [][]fixtureEntry{blockA, blockB},
		compressKey:    true,
		compressRecord: true,
	})
	path := writeTempFile(t, data)

	dict, err := OpenText(path)
	require.NoError(t, err)
	defer dict.Close()

	assert.Equal(t, 0, dict.s.index.findKeyBlock("moon"))
	assert.Equal(t, 1, dict.s.index.findKeyBlock("noon"))
	assert.Equal(t, -1, dict.s.index.findKeyBlock("zzz-not-present"))
}
