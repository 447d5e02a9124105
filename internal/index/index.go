package index

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// TermPostings is one dictionary entry of the inverted index.
type TermPostings struct {
	Term     string
	Postings PostingList
}

// InvertedIndex maps terms to posting lists. Entries are kept in lexicographic
// term order, which the merger produces naturally and the persisted format
// requires. Once a build completes the index is immutable and safe for
// concurrent readers.
type InvertedIndex struct {
	entries  []TermPostings
	byTerm   map[string]int
	universe *roaring.Bitmap
}

// NewInvertedIndex returns an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		byTerm:   make(map[string]int),
		universe: roaring.New(),
	}
}

// Append adds the next term in sorted order. Postings must be normalised.
// Appending a term <= the previous term is a programming error in the caller
// (the merger emits terms in global sorted order).
func (ix *InvertedIndex) Append(term string, postings PostingList) error {
	if n := len(ix.entries); n > 0 && term <= ix.entries[n-1].Term {
		return fmt.Errorf("term %q appended out of order after %q", term, ix.entries[n-1].Term)
	}
	ix.byTerm[term] = len(ix.entries)
	ix.entries = append(ix.entries, TermPostings{Term: term, Postings: postings})
	ix.universe.AddMany(postings)
	return nil
}

// Lookup returns the posting list for a term.
func (ix *InvertedIndex) Lookup(term string) (PostingList, bool) {
	i, ok := ix.byTerm[term]
	if !ok {
		return nil, false
	}
	return ix.entries[i].Postings, true
}

// Postings adapts Lookup to the query engine's index interface.
func (ix *InvertedIndex) Postings(term string) (PostingList, bool, error) {
	pl, ok := ix.Lookup(term)
	return pl, ok, nil
}

// Entries returns the dictionary in sorted term order. Callers must not
// mutate the returned slice.
func (ix *InvertedIndex) Entries() []TermPostings {
	return ix.entries
}

// Universe is the set of every document id the index knows. Callers must
// treat it as read-only; Clone before mutating.
func (ix *InvertedIndex) Universe() *roaring.Bitmap {
	return ix.universe
}

// Len is the number of distinct terms.
func (ix *InvertedIndex) Len() int {
	return len(ix.entries)
}

// DocCount is the number of distinct documents.
func (ix *InvertedIndex) DocCount() int {
	return int(ix.universe.GetCardinality())
}
