package spimi

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	"github.com/AshPopcorn/Group5-ASM2/pkg/config"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
	"github.com/AshPopcorn/Group5-ASM2/pkg/metrics"
)

// Pair is one (document, term) occurrence from the tokenization collaborator.
type Pair struct {
	DocID uint32
	Term  string
}

// Builder orchestrates the construction pipeline: a pool of workers each
// owning one BlockBuilder consumes pairs and produces sorted runs, then a
// single sequential merge combines the runs.
type Builder struct {
	cfg config.IndexerConfig
	met *metrics.Metrics
	log *slog.Logger
}

// NewBuilder creates a Builder. met may be nil when instrumentation is not
// wanted.
func NewBuilder(cfg config.IndexerConfig, met *metrics.Metrics) *Builder {
	return &Builder{
		cfg: cfg,
		met: met,
		log: logger.WithComponent("spimi-builder"),
	}
}

// Build consumes the pair stream to exhaustion and returns the merged
// inverted index. Blocks flush independently across workers; the merge is
// the single serialization point. On failure no index is returned and
// whatever runs were written remain on disk.
func (b *Builder) Build(ctx context.Context, pairs <-chan Pair) (*index.InvertedIndex, error) {
	start := time.Now()
	if err := os.MkdirAll(b.cfg.TempDir, 0o755); err != nil {
		return nil, errs.Newf(errs.ErrConstruction, "creating temp dir: %v", err)
	}

	seq := &RunSequence{}
	var mu sync.Mutex
	var runs []Run

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < b.cfg.Workers; w++ {
		g.Go(func() error {
			builder := NewBlockBuilder(b.cfg.TempDir, b.cfg.BlockSize, seq)
			collect := func(run Run) {
				mu.Lock()
				runs = append(runs, run)
				mu.Unlock()
				if b.met != nil {
					b.met.BlocksFlushedTotal.Inc()
				}
			}
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case pair, ok := <-pairs:
					if !ok {
						finished, err := builder.Finish()
						if err != nil {
							return err
						}
						for _, run := range finished {
							collect(run)
						}
						return nil
					}
					builder.AddTerm(pair.Term, pair.DocID)
					if builder.ShouldFlush() {
						flushStart := time.Now()
						run, err := builder.Flush()
						if err != nil {
							return err
						}
						if b.met != nil {
							b.met.BlockFlushDuration.Observe(time.Since(flushStart).Seconds())
						}
						collect(run)
					}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mergeStart := time.Now()
	ix, err := NewMerger().Merge(runs)
	if err != nil {
		return nil, err
	}
	if b.met != nil {
		b.met.RunsMergedTotal.Add(float64(len(runs)))
		b.met.MergeDuration.Observe(time.Since(mergeStart).Seconds())
		b.met.BuildDuration.Observe(time.Since(start).Seconds())
		b.met.TermsIndexed.Set(float64(ix.Len()))
		postings := 0
		for _, e := range ix.Entries() {
			postings += len(e.Postings)
		}
		b.met.PostingsWritten.Add(float64(postings))
	}
	b.log.Info("index built",
		"runs", len(runs),
		"terms", ix.Len(),
		"docs", ix.DocCount(),
		"elapsed", time.Since(start),
	)
	return ix, nil
}
