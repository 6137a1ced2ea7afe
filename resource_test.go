package mdict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Resource lookup treats "/foo" and "foo" as equivalent,
// and a second Locate call for the same name is served from cache.
func TestResourceLocate_LeadingSlashAndCache(t *testing.T) {
	entries := []fixtureEntry{
		{key: "/audio/bark.mp3", payload: []byte{0xff, 0xfb, 9, 9}},
		{key: "/images/cat.png", payload: []byte{0x89, 'P', 'N', 'G', 1, 2, 3}},
	}
	data := buildArchive(t, fixtureOpts{
		version:        2.0,
		encoding:       "UTF-8",
		keyBlocks:      [][]fixtureEntry{entries},
		compressKey:    true,
		compressRecord: true,
	})
	path := writeTempFile(t, data)

	archive, err := OpenResource(path)
	require.NoError(t, err)
	defer archive.Close()

	data1, found, err := archive.Locate("images/cat.png")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G', 1, 2, 3}, data1)
	require.Equal(t, 1, archive.CacheLen())

	data2, found, err := archive.Locate("/images/cat.png")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, data1, data2)
	require.Equal(t, 1, archive.CacheLen(), "second call should be served from cache, not add an entry")
}

func TestResourceLocate_NotFound(t *testing.T) {
	entries := []fixtureEntry{
		{key: "/images/cat.png", payload: []byte{1, 2, 3}},
	}
	data := buildArchive(t, fixtureOpts{
		version:        2.0,
		encoding:       "UTF-8",
		keyBlocks:      [][]fixtureEntry{entries},
		compressKey:    true,
		compressRecord: true,
	})
	path := writeTempFile(t, data)

	archive, err := OpenResource(path)
	require.NoError(t, err)
	defer archive.Close()

	_, found, err := archive.Locate("/images/missing.png")
	require.NoError(t, err)
	require.False(t, found)
}
