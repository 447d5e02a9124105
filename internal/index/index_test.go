package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvertedIndexAppendLookup(t *testing.T) {
	ix := NewInvertedIndex()
	require.NoError(t, ix.Append("alpha", PostingList{1, 3}))
	require.NoError(t, ix.Append("beta", PostingList{1, 2}))
	require.NoError(t, ix.Append("gamma", PostingList{2, 3}))

	got, ok := ix.Lookup("beta")
	require.True(t, ok)
	assert.Equal(t, PostingList{1, 2}, got)

	_, ok = ix.Lookup("delta")
	assert.False(t, ok)

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 3, ix.DocCount())
}

func TestInvertedIndexAppendOrderEnforced(t *testing.T) {
	ix := NewInvertedIndex()
	require.NoError(t, ix.Append("beta", PostingList{1}))
	assert.Error(t, ix.Append("alpha", PostingList{2}))
	assert.Error(t, ix.Append("beta", PostingList{3}))
}

func TestInvertedIndexUniverse(t *testing.T) {
	ix := NewInvertedIndex()
	require.NoError(t, ix.Append("alpha", PostingList{1, 3}))
	require.NoError(t, ix.Append("beta", PostingList{2, 3}))
	assert.Equal(t, PostingList{1, 2, 3}, FromBitmap(ix.Universe()))
}

func TestInvertedIndexEntriesSorted(t *testing.T) {
	ix := NewInvertedIndex()
	require.NoError(t, ix.Append("a", PostingList{1}))
	require.NoError(t, ix.Append("b", PostingList{2}))
	entries := ix.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Term)
	assert.Equal(t, "b", entries[1].Term)
}
