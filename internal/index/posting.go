// Package index defines the core inverted-index data model: posting lists,
// skip pointers, and the in-memory inverted index produced by a merge.
package index

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// PostingList is a strictly increasing, deduplicated sequence of document
// ids. Builders may accumulate unsorted ids with duplicates, but anything
// exposed as a PostingList must already be normalised.
type PostingList []uint32

// NormalizePostings sorts ids ascending and removes duplicates, in place.
func NormalizePostings(ids []uint32) PostingList {
	if len(ids) <= 1 {
		return ids
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// Intersect computes the intersection of two posting lists with a plain
// merge walk. It is the reference against which the skip-pointer
// intersection is checked.
func Intersect(a, b PostingList) PostingList {
	var result PostingList
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			result = append(result, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return result
}

// MergeUnion merges two sorted posting lists into one sorted, deduplicated
// list. Both inputs must already be normalised.
func MergeUnion(a, b PostingList) PostingList {
	result := make(PostingList, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			result = append(result, a[i])
			i++
			j++
		case a[i] < b[j]:
			result = append(result, a[i])
			i++
		default:
			result = append(result, b[j])
			j++
		}
	}
	result = append(result, a[i:]...)
	result = append(result, b[j:]...)
	return result
}

// Bitmap converts the posting list to a roaring bitmap.
func (p PostingList) Bitmap() *roaring.Bitmap {
	rb := roaring.New()
	rb.AddMany(p)
	return rb
}

// FromBitmap materialises a bitmap as a posting list. Roaring iterates in
// ascending order, so the result is already normalised.
func FromBitmap(rb *roaring.Bitmap) PostingList {
	if rb == nil || rb.IsEmpty() {
		return nil
	}
	return PostingList(rb.ToArray())
}
