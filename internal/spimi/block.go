package spimi

import (
	"log/slog"

	"github.com/huandu/skiplist"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
)

// postingAcc accumulates document ids for one term within a block. The slice
// may be unsorted and contain duplicates until flush normalises it.
type postingAcc struct {
	ids []uint32
}

// BlockBuilder accumulates (term, docID) occurrences in bounded memory and
// flushes sorted runs. The dictionary is an ordered skiplist keyed by term,
// so a flush walks terms in lexicographic order without a sort pass.
//
// A builder is owned by exactly one worker; it is not safe for concurrent
// use.
type BlockBuilder struct {
	dict      *skiplist.SkipList
	cells     int
	blockSize int
	dir       string
	runs      *RunSequence
	log       *slog.Logger
}

// NewBlockBuilder creates a builder that flushes into dir once roughly
// blockSize (term, occurrence) cells have accumulated. runs hands out run
// ids shared across builders.
func NewBlockBuilder(dir string, blockSize int, runs *RunSequence) *BlockBuilder {
	return &BlockBuilder{
		dict:      skiplist.New(skiplist.String),
		blockSize: blockSize,
		dir:       dir,
		runs:      runs,
		log:       logger.WithComponent("block-builder"),
	}
}

// AddTerm records one occurrence of term in docID. Duplicate (term, docID)
// pairs within a block are deduplicated at flush time; arrival order is
// irrelevant.
func (b *BlockBuilder) AddTerm(term string, docID uint32) {
	if elem := b.dict.Get(term); elem != nil {
		acc := elem.Value.(*postingAcc)
		acc.ids = append(acc.ids, docID)
	} else {
		b.dict.Set(term, &postingAcc{ids: []uint32{docID}})
	}
	b.cells++
}

// ShouldFlush reports whether the accumulated cell count has reached the
// block size. The count is an approximation of memory use, not exact byte
// accounting.
func (b *BlockBuilder) ShouldFlush() bool {
	return b.cells >= b.blockSize
}

// Flush writes the current block as one sorted run and resets the builder.
// Each term's postings are sorted and deduplicated before writing. The
// builder keeps no reference to the returned run.
func (b *BlockBuilder) Flush() (Run, error) {
	if b.dict.Len() == 0 {
		return Run{}, errs.New(errs.ErrInvalidInput, "flush of empty block")
	}
	w, err := NewRunWriter(b.dir, b.runs.Next())
	if err != nil {
		return Run{}, err
	}
	terms := 0
	for elem := b.dict.Front(); elem != nil; elem = elem.Next() {
		acc := elem.Value.(*postingAcc)
		postings := index.NormalizePostings(acc.ids)
		if err := w.Write(elem.Key().(string), postings); err != nil {
			w.Close()
			return Run{}, err
		}
		terms++
	}
	run, err := w.Close()
	if err != nil {
		return Run{}, err
	}
	b.log.Debug("block flushed", "run", run.ID, "terms", terms, "cells", b.cells)
	b.dict = skiplist.New(skiplist.String)
	b.cells = 0
	return run, nil
}

// Finish flushes any remaining partial block and returns the resulting runs
// (zero or one).
func (b *BlockBuilder) Finish() ([]Run, error) {
	if b.dict.Len() == 0 {
		return nil, nil
	}
	run, err := b.Flush()
	if err != nil {
		return nil, err
	}
	return []Run{run}, nil
}
