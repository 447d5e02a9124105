package query

import (
	"log/slog"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
	"github.com/AshPopcorn/Group5-ASM2/pkg/metrics"
)

// Index is the read side of an inverted index: a posting-list lookup plus
// the universe of all known document ids. Both *segment.Reader and
// *index.InvertedIndex satisfy it.
type Index interface {
	Postings(term string) (index.PostingList, bool, error)
	Universe() *roaring.Bitmap
}

// Normalizer is the text-normalization collaborator applied to leaf terms
// before lookup, so query terms match the form under which they were
// indexed.
type Normalizer interface {
	Normalize(token string) string
}

// Engine evaluates boolean queries against one immutable index. An Engine
// only reads, so any number of queries may run concurrently.
type Engine struct {
	idx          Index
	norm         Normalizer
	skipInterval int
	met          *metrics.Metrics
	cache        *ResultCache
	log          *slog.Logger
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithResultCache enables an in-process LRU cache of query results.
func WithResultCache(cache *ResultCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// NewEngine creates an Engine. skipInterval controls the skip-pointer
// spacing used during AND intersection: 0 or 1 disables skips, -1 selects
// ceil(sqrt(n)) per posting list. met may be nil.
func NewEngine(idx Index, norm Normalizer, skipInterval int, met *metrics.Metrics, opts ...EngineOption) *Engine {
	e := &Engine{
		idx:          idx,
		norm:         norm,
		skipInterval: skipInterval,
		met:          met,
		log:          logger.WithComponent("query-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search parses and evaluates a boolean query, returning the matching
// document ids. Syntax errors surface before the index is touched; unknown
// terms are not errors and simply contribute empty sets.
func (e *Engine) Search(query string) (index.PostingList, error) {
	start := time.Now()
	ast, err := Parse(query)
	if err != nil {
		if e.met != nil {
			e.met.QuerySyntaxErrors.Inc()
			e.met.QueriesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	var result index.PostingList
	if e.cache != nil {
		// The canonical AST string keys the cache, so whitespace and
		// operator-case variants of one expression share an entry.
		result, err = e.cache.GetOrCompute(ast.String(), func() (index.PostingList, error) {
			return e.Evaluate(ast)
		})
	} else {
		result, err = e.Evaluate(ast)
	}
	if err != nil {
		if e.met != nil {
			e.met.QueriesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if e.met != nil {
		e.met.QueryLatency.Observe(time.Since(start).Seconds())
		e.met.QueryResultsCount.Observe(float64(len(result)))
		outcome := "hit"
		if len(result) == 0 {
			outcome = "zero_result"
		}
		e.met.QueriesTotal.WithLabelValues(outcome).Inc()
	}
	e.log.Debug("query evaluated",
		"query", query,
		"results", len(result),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// Evaluate walks the AST and materialises the result set.
func (e *Engine) Evaluate(node Node) (index.PostingList, error) {
	switch n := node.(type) {
	case *Term:
		return e.evalTerm(n)
	case *And:
		return e.evalAnd(n)
	case *Or:
		return e.evalOr(n)
	case *Not:
		return e.evalNot(n)
	default:
		return nil, errs.Newf(errs.ErrInvalidInput, "unknown query node %T", node)
	}
}

func (e *Engine) evalTerm(t *Term) (index.PostingList, error) {
	term := e.norm.Normalize(t.Value)
	if term == "" {
		return nil, nil
	}
	postings, ok, err := e.idx.Postings(term)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return postings, nil
}

// evalAnd evaluates every operand, orders the results by ascending size, and
// intersects left to right with skip pointers, short-circuiting as soon as a
// partial intersection is empty.
func (e *Engine) evalAnd(a *And) (index.PostingList, error) {
	sets := make([]index.PostingList, 0, len(a.Operands))
	for _, op := range a.Operands {
		set, err := e.Evaluate(op)
		if err != nil {
			return nil, err
		}
		if len(set) == 0 {
			return nil, nil
		}
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	result := sets[0]
	for _, set := range sets[1:] {
		left := index.WithSkips(result, e.resolveInterval(len(result)))
		right := index.WithSkips(set, e.resolveInterval(len(set)))
		var skips int
		result, skips = index.IntersectSkip(left, right)
		if e.met != nil && skips > 0 {
			e.met.PostingsSkipsTaken.Add(float64(skips))
		}
		if len(result) == 0 {
			return nil, nil
		}
	}
	return result, nil
}

func (e *Engine) evalOr(o *Or) (index.PostingList, error) {
	union := roaring.New()
	for _, op := range o.Operands {
		set, err := e.Evaluate(op)
		if err != nil {
			return nil, err
		}
		union.AddMany(set)
	}
	return index.FromBitmap(union), nil
}

// evalNot is the set difference universe - operand, which makes a bare
// "NOT x" query meaningful: all documents not containing x.
func (e *Engine) evalNot(n *Not) (index.PostingList, error) {
	set, err := e.Evaluate(n.Operand)
	if err != nil {
		return nil, err
	}
	complement := e.idx.Universe().Clone()
	complement.AndNot(set.Bitmap())
	return index.FromBitmap(complement), nil
}

func (e *Engine) resolveInterval(n int) int {
	if e.skipInterval < 0 {
		return index.SqrtInterval(n)
	}
	return e.skipInterval
}
