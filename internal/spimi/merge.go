package spimi

import (
	"container/heap"
	"io"
	"log/slog"
	"os"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
)

// Merger combines sorted runs into one globally sorted inverted index with a
// single linear pass over every run.
type Merger struct {
	log *slog.Logger
}

// NewMerger creates a Merger.
func NewMerger() *Merger {
	return &Merger{log: logger.WithComponent("merger")}
}

// cursor is one run's read position in the k-way merge.
type cursor struct {
	term     string
	postings index.PostingList
	runIdx   int
	reader   *RunReader
}

// cursorHeap orders cursors by (term, run index); ties among equal terms are
// popped together so no run is privileged.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].runIdx < h[j].runIdx
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) {
	*h = append(*h, x.(*cursor))
}

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge k-way merges the given runs into an InvertedIndex. All posting-list
// fragments for the globally smallest unread term are concatenated with a
// sorted union before the next term is considered. On success the run files
// are deleted; on failure they are left in place for manual inspection.
func (m *Merger) Merge(runs []Run) (*index.InvertedIndex, error) {
	ix := index.NewInvertedIndex()
	if len(runs) == 0 {
		return ix, nil
	}

	readers := make([]*RunReader, 0, len(runs))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	h := make(cursorHeap, 0, len(runs))
	for i, run := range runs {
		r, err := OpenRun(run)
		if err != nil {
			return nil, err
		}
		readers = append(readers, r)
		term, postings, err := r.Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return nil, err
		}
		h = append(h, &cursor{term: term, postings: postings, runIdx: i, reader: r})
	}
	heap.Init(&h)

	advance := func(c *cursor) error {
		term, postings, err := c.reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		c.term = term
		c.postings = postings
		heap.Push(&h, c)
		return nil
	}

	for h.Len() > 0 {
		c := heap.Pop(&h).(*cursor)
		term := c.term
		merged := c.postings
		if err := advance(c); err != nil {
			return nil, err
		}
		// Drain every other run holding the same term.
		for h.Len() > 0 && h[0].term == term {
			next := heap.Pop(&h).(*cursor)
			merged = index.MergeUnion(merged, next.postings)
			if err := advance(next); err != nil {
				return nil, err
			}
		}
		if err := ix.Append(term, merged); err != nil {
			return nil, errs.Newf(errs.ErrConstruction, "merge emitted %v", err)
		}
	}

	for _, r := range readers {
		r.Close()
	}
	readers = nil
	for _, run := range runs {
		if err := os.Remove(run.Path); err != nil {
			m.log.Warn("could not delete merged run", "path", run.Path, "error", err)
		}
	}
	m.log.Info("merge complete", "runs", len(runs), "terms", ix.Len(), "docs", ix.DocCount())
	return ix, nil
}
