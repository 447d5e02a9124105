package index

import "math"

// SkipPointer is a forward shortcut in a sorted posting list. DocID is the
// document id at To; list sortedness guarantees it is >= the id at From.
type SkipPointer struct {
	From  int
	To    int
	DocID uint32
}

// Skippable is a posting list with a skip-pointer overlay placed every
// interval entries.
type Skippable struct {
	Postings PostingList
	skips    []SkipPointer
	interval int
}

// SqrtInterval returns the conventional ceil(sqrt(n)) skip spacing for a
// posting list of length n.
func SqrtInterval(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// WithSkips attaches skip pointers to a normalised posting list. An interval
// of 0 or 1 produces no skip pointers.
func WithSkips(p PostingList, interval int) *Skippable {
	s := &Skippable{Postings: p, interval: interval}
	if interval <= 1 {
		return s
	}
	n := len(p)
	for i := 0; i < n; i += interval {
		to := i + interval
		if to > n-1 {
			to = n - 1
		}
		if to > i {
			s.skips = append(s.skips, SkipPointer{From: i, To: to, DocID: p[to]})
		}
	}
	return s
}

// Skips returns the skip-pointer overlay.
func (s *Skippable) Skips() []SkipPointer {
	return s.skips
}

// skipFrom returns the skip pointer anchored at position i, if one exists.
// Pointers sit at multiples of the interval, so the lookup is arithmetic.
func (s *Skippable) skipFrom(i int) (SkipPointer, bool) {
	if s.interval <= 1 || i%s.interval != 0 {
		return SkipPointer{}, false
	}
	k := i / s.interval
	if k >= len(s.skips) || s.skips[k].From != i {
		return SkipPointer{}, false
	}
	return s.skips[k], true
}

// IntersectSkip intersects two skippable posting lists with a merge walk
// that follows skip pointers on the lagging side whenever the skip target
// does not overshoot the other list's current document. The result is always
// identical to Intersect on the underlying lists; skips only reduce the
// number of comparisons. The second return value counts skips taken.
func IntersectSkip(a, b *Skippable) (PostingList, int) {
	var result PostingList
	skipsTaken := 0
	i, j := 0, 0
	for i < len(a.Postings) && j < len(b.Postings) {
		av, bv := a.Postings[i], b.Postings[j]
		switch {
		case av == bv:
			result = append(result, av)
			i++
			j++
		case av < bv:
			if sp, ok := a.skipFrom(i); ok && sp.DocID <= bv {
				i = sp.To
				skipsTaken++
			} else {
				i++
			}
		default:
			if sp, ok := b.skipFrom(j); ok && sp.DocID <= av {
				j = sp.To
				skipsTaken++
			} else {
				j++
			}
		}
	}
	return result, skipsTaken
}
