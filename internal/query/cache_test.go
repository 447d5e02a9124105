package query

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

func TestResultCacheComputesOnce(t *testing.T) {
	c := NewResultCache(8)
	computes := 0
	compute := func() (index.PostingList, error) {
		computes++
		return index.PostingList{1, 2}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute("alpha AND beta", compute)
		require.NoError(t, err)
		assert.Equal(t, index.PostingList{1, 2}, got)
	}
	assert.Equal(t, 1, computes)
	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestResultCacheDoesNotCacheErrors(t *testing.T) {
	c := NewResultCache(8)
	calls := 0
	_, err := c.GetOrCompute("k", func() (index.PostingList, error) {
		calls++
		return nil, errs.New(errs.ErrCorruptIndex, "boom")
	})
	require.Error(t, err)

	got, err := c.GetOrCompute("k", func() (index.PostingList, error) {
		calls++
		return index.PostingList{7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, index.PostingList{7}, got)
	assert.Equal(t, 2, calls)
}

func TestResultCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResultCache(2)
	fill := func(key string, id uint32) {
		_, err := c.GetOrCompute(key, func() (index.PostingList, error) {
			return index.PostingList{id}, nil
		})
		require.NoError(t, err)
	}
	fill("a", 1)
	fill("b", 2)
	fill("a", 1) // refresh a, so b is now oldest
	fill("c", 3) // evicts b
	assert.Equal(t, 2, c.Len())

	evicted := false
	got, err := c.GetOrCompute("b", func() (index.PostingList, error) {
		evicted = true
		return index.PostingList{2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, index.PostingList{2}, got)
	assert.True(t, evicted)
}

func TestResultCacheConcurrentSameKey(t *testing.T) {
	c := NewResultCache(8)
	var computes atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrCompute("shared", func() (index.PostingList, error) {
				computes.Add(1)
				return index.PostingList{5}, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, index.PostingList{5}, got)
		}()
	}
	wg.Wait()
	// Singleflight collapses in-flight duplicates; every completed compute
	// populates the cache, so late arrivals hit without recomputing.
	assert.LessOrEqual(t, computes.Load(), int64(16))
	assert.GreaterOrEqual(t, computes.Load(), int64(1))
}

func TestEngineWithCacheReturnsSameResults(t *testing.T) {
	ix := testIndex(t)
	plain := NewEngine(ix, identityNorm{}, -1, nil)
	cached := NewEngine(ix, identityNorm{}, -1, nil, WithResultCache(NewResultCache(16)))

	for _, q := range []string{"alpha AND beta", "alpha OR gamma", "NOT alpha"} {
		want, err := plain.Search(q)
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			got, err := cached.Search(q)
			require.NoError(t, err)
			assert.Equal(t, want, got, q)
		}
	}
}

func TestEngineCacheSharesSyntacticVariants(t *testing.T) {
	cache := NewResultCache(16)
	e := NewEngine(testIndex(t), identityNorm{}, -1, nil, WithResultCache(cache))

	_, err := e.Search("alpha AND beta")
	require.NoError(t, err)
	_, err = e.Search("alpha   and   beta")
	require.NoError(t, err)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
