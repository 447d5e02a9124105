package index

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqrtInterval(t *testing.T) {
	assert.Equal(t, 0, SqrtInterval(0))
	assert.Equal(t, 1, SqrtInterval(1))
	assert.Equal(t, 4, SqrtInterval(16))
	assert.Equal(t, 5, SqrtInterval(17))
}

func TestWithSkipsPlacement(t *testing.T) {
	p := PostingList{10, 20, 30, 40, 50, 60, 70}
	s := WithSkips(p, 3)
	require.Equal(t, []SkipPointer{
		{From: 0, To: 3, DocID: 40},
		{From: 3, To: 6, DocID: 70},
	}, s.Skips())

	// Skip targets never point backwards in document order.
	for _, sp := range s.Skips() {
		assert.GreaterOrEqual(t, sp.DocID, p[sp.From])
	}
}

func TestWithSkipsDisabled(t *testing.T) {
	p := PostingList{1, 2, 3}
	assert.Empty(t, WithSkips(p, 0).Skips())
	assert.Empty(t, WithSkips(p, 1).Skips())
}

func TestIntersectSkipMatchesNaive(t *testing.T) {
	a := PostingList{2, 4, 8, 16, 19, 23, 28, 43, 51, 60, 71, 85, 86, 91}
	b := PostingList{4, 19, 51, 86}
	for _, interval := range []int{0, 1, 2, 3, 4, SqrtInterval(len(a))} {
		got, _ := IntersectSkip(WithSkips(a, interval), WithSkips(b, interval))
		assert.Equal(t, Intersect(a, b), got, "interval %d", interval)
	}
}

func TestIntersectSkipTakesSkips(t *testing.T) {
	a := make(PostingList, 0, 1000)
	for i := 0; i < 1000; i++ {
		a = append(a, uint32(i*2))
	}
	b := PostingList{1500, 1998}
	got, skips := IntersectSkip(WithSkips(a, 32), WithSkips(b, 0))
	assert.Equal(t, PostingList{1500, 1998}, got)
	assert.Greater(t, skips, 0)
}

func TestIntersectSkipRandomised(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		a := randomPostings(rng, 200, 500)
		b := randomPostings(rng, 200, 500)
		want := Intersect(a, b)
		for _, interval := range []int{0, 2, 5, SqrtInterval(len(a))} {
			got, _ := IntersectSkip(WithSkips(a, interval), WithSkips(b, interval))
			require.Equal(t, want, got, "round %d interval %d", round, interval)
		}
	}
}

func randomPostings(rng *rand.Rand, maxLen, maxID int) PostingList {
	n := rng.Intn(maxLen)
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = uint32(rng.Intn(maxID))
	}
	return NormalizePostings(ids)
}
