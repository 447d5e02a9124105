package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// identityNorm stands in for the analyzer so evaluator tests control their
// terms exactly.
type identityNorm struct{}

func (identityNorm) Normalize(token string) string { return token }

// droppingNorm drops every term, the way the analyzer treats stop words.
type droppingNorm struct{}

func (droppingNorm) Normalize(token string) string { return "" }

// Corpus: doc 1 = "alpha beta", doc 2 = "beta gamma", doc 3 = "alpha gamma".
func testIndex(t *testing.T) *index.InvertedIndex {
	t.Helper()
	ix := index.NewInvertedIndex()
	require.NoError(t, ix.Append("alpha", index.PostingList{1, 3}))
	require.NoError(t, ix.Append("beta", index.PostingList{1, 2}))
	require.NoError(t, ix.Append("gamma", index.PostingList{2, 3}))
	return ix
}

func testEngine(t *testing.T) *Engine {
	return NewEngine(testIndex(t), identityNorm{}, -1, nil)
}

func TestSearchBooleanSemantics(t *testing.T) {
	e := testEngine(t)
	cases := []struct {
		query string
		want  index.PostingList
	}{
		{"alpha", index.PostingList{1, 3}},
		{"alpha AND beta", index.PostingList{1}},
		{"alpha OR gamma", index.PostingList{1, 2, 3}},
		{"alpha AND NOT gamma", index.PostingList{1}},
		{"(alpha OR beta) AND gamma", index.PostingList{2, 3}},
		{"delta", nil},
		{"alpha AND delta", nil},
		{"alpha OR delta", index.PostingList{1, 3}},
		{"alpha beta", index.PostingList{1}},
		{"NOT delta", index.PostingList{1, 2, 3}},
		{"NOT alpha", index.PostingList{2}},
		{"NOT NOT alpha", index.PostingList{1, 3}},
		{"alpha AND beta AND gamma", nil},
	}
	for _, tc := range cases {
		got, err := e.Search(tc.query)
		require.NoError(t, err, tc.query)
		if tc.want == nil {
			assert.Empty(t, got, tc.query)
		} else {
			assert.Equal(t, tc.want, got, tc.query)
		}
	}
}

func TestSearchCommutativeAnd(t *testing.T) {
	e := testEngine(t)
	left, err := e.Search("alpha AND beta")
	require.NoError(t, err)
	right, err := e.Search("beta AND alpha")
	require.NoError(t, err)
	assert.Equal(t, left, right)
}

func TestSearchAssociativeAnd(t *testing.T) {
	e := testEngine(t)
	flat, err := e.Search("alpha AND beta AND gamma")
	require.NoError(t, err)
	leftGrouped, err := e.Search("(alpha AND beta) AND gamma")
	require.NoError(t, err)
	rightGrouped, err := e.Search("alpha AND (beta AND gamma)")
	require.NoError(t, err)
	assert.Equal(t, flat, leftGrouped)
	assert.Equal(t, flat, rightGrouped)
}

func TestSearchSyntaxError(t *testing.T) {
	e := testEngine(t)
	_, err := e.Search("alpha AND")
	assert.ErrorIs(t, err, errs.ErrQuerySyntax)
}

func TestSearchSkipIntervalsAgree(t *testing.T) {
	ix := testIndex(t)
	want, err := NewEngine(ix, identityNorm{}, 0, nil).Search("alpha AND gamma")
	require.NoError(t, err)
	for _, interval := range []int{-1, 2, 16} {
		got, err := NewEngine(ix, identityNorm{}, interval, nil).Search("alpha AND gamma")
		require.NoError(t, err)
		assert.Equal(t, want, got, "interval %d", interval)
	}
}

func TestSearchDroppedTermsBehaveAsUnknown(t *testing.T) {
	e := NewEngine(testIndex(t), droppingNorm{}, -1, nil)
	got, err := e.Search("alpha")
	require.NoError(t, err)
	assert.Empty(t, got)

	// NOT over a dropped term is the whole universe.
	got, err = e.Search("NOT alpha")
	require.NoError(t, err)
	assert.Equal(t, index.PostingList{1, 2, 3}, got)
}

func TestEvaluateUnknownNode(t *testing.T) {
	e := testEngine(t)
	_, err := e.Evaluate(nil)
	assert.Error(t, err)
}
