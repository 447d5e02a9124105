// Command irindex builds and queries boolean inverted indexes.
//
//	irindex build  -corpus DIR -out PATH [-config FILE]
//	irindex search -index PATH -query EXPR [-config FILE]
//	irindex stats  -index PATH
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AshPopcorn/Group5-ASM2/internal/analyzer"
	"github.com/AshPopcorn/Group5-ASM2/internal/dict"
	"github.com/AshPopcorn/Group5-ASM2/internal/query"
	"github.com/AshPopcorn/Group5-ASM2/internal/segment"
	"github.com/AshPopcorn/Group5-ASM2/internal/spimi"
	"github.com/AshPopcorn/Group5-ASM2/pkg/config"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
	"github.com/AshPopcorn/Group5-ASM2/pkg/metrics"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "irindex %s: %v\n", os.Args[1], err)
		os.Exit(errs.ExitCode(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: irindex <build|search|stats> [flags]")
}

func runBuild(args []string) error {
	flags := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file")
	corpusDir := flags.String("corpus", "", "directory of documents, one per file")
	out := flags.String("out", "data/index.irx", "output index path")
	flags.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if *corpusDir == "" {
		return errs.New(errs.ErrInvalidInput, "build requires -corpus")
	}

	var met *metrics.Metrics
	if cfg.Metrics.Enabled {
		met = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(ctx)
		}()
	}

	docs, err := listCorpus(*corpusDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return errs.Newf(errs.ErrInvalidInput, "no documents found in %s", *corpusDir)
	}
	slog.Info("corpus scanned", "dir", *corpusDir, "documents", len(docs))

	an := analyzer.New()
	pairs := make(chan spimi.Pair, 1024)
	tokenizeErr := make(chan error, 1)
	go func() {
		defer close(pairs)
		tokenizeErr <- tokenizeCorpus(*corpusDir, docs, an, pairs)
	}()

	builder := spimi.NewBuilder(cfg.Indexer, met)
	ix, err := builder.Build(context.Background(), pairs)
	if err != nil {
		return err
	}
	if err := <-tokenizeErr; err != nil {
		return err
	}

	codec, ok := dict.ByName(cfg.Indexer.Codec, cfg.Indexer.GroupSize)
	if !ok {
		return errs.Newf(errs.ErrInvalidInput, "unknown codec %q", cfg.Indexer.Codec)
	}
	writer := segment.NewWriter(filepath.Dir(*out), codec)
	path, err := writer.Write(filepath.Base(*out), ix, docs, cfg.Search.SkipInterval)
	if err != nil {
		return err
	}
	if met != nil {
		if fi, err := os.Stat(path + segment.SidecarSuffix); err == nil {
			met.DictionaryBytes.WithLabelValues(codec.Name()).Set(float64(fi.Size()))
		}
	}
	fmt.Printf("indexed %d documents, %d terms -> %s\n", len(docs), ix.Len(), path)
	return nil
}

// listCorpus walks the corpus directory and assigns dense document ids in
// path order, so a rebuild over the same corpus produces the same ids.
func listCorpus(dir string) ([]segment.Document, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Newf(errs.ErrConstruction, "walking corpus: %v", err)
	}
	sort.Strings(names)
	docs := make([]segment.Document, len(names))
	for i, name := range names {
		docs[i] = segment.Document{ID: uint32(i + 1), Name: name}
	}
	return docs, nil
}

func tokenizeCorpus(dir string, docs []segment.Document, an *analyzer.Analyzer, pairs chan<- spimi.Pair) error {
	for _, doc := range docs {
		data, err := os.ReadFile(filepath.Join(dir, doc.Name))
		if err != nil {
			return errs.Newf(errs.ErrConstruction, "reading document %s: %v", doc.Name, err)
		}
		for _, term := range an.Tokenize(string(data)) {
			pairs <- spimi.Pair{DocID: doc.ID, Term: term}
		}
	}
	return nil
}

func runSearch(args []string) error {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file")
	indexPath := flags.String("index", "data/index.irx", "index path")
	queryStr := flags.String("query", "", "boolean query expression")
	flags.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if *queryStr == "" {
		return errs.New(errs.ErrInvalidInput, "search requires -query")
	}

	reader, err := segment.Open(*indexPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	var opts []query.EngineOption
	if cfg.Search.CacheSize > 0 {
		opts = append(opts, query.WithResultCache(query.NewResultCache(cfg.Search.CacheSize)))
	}
	engine := query.NewEngine(reader, analyzer.New(), reader.SkipInterval(), nil, opts...)
	start := time.Now()
	result, err := engine.Search(*queryStr)
	if err != nil {
		return err
	}
	fmt.Printf("%d documents in %s\n", len(result), time.Since(start))
	limit := cfg.Search.MaxResults
	for i, id := range result {
		if limit > 0 && i >= limit {
			fmt.Printf("... and %d more\n", len(result)-limit)
			break
		}
		if name, ok := reader.DocName(id); ok {
			fmt.Printf("  %d\t%s\n", id, name)
		} else {
			fmt.Printf("  %d\n", id)
		}
	}
	return nil
}

func runStats(args []string) error {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	indexPath := flags.String("index", "data/index.irx", "index path")
	flags.Parse(args)

	reader, err := segment.Open(*indexPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	codecName := "unknown"
	if codec, ok := dict.ByTag(reader.CodecTag()); ok {
		codecName = codec.Name()
	}
	fmt.Printf("index:          %s\n", *indexPath)
	fmt.Printf("terms:          %d\n", reader.TermCount())
	fmt.Printf("documents:      %d\n", reader.DocCount())
	fmt.Printf("codec:          %s\n", codecName)
	fmt.Printf("skip interval:  %d\n", reader.SkipInterval())
	fmt.Printf("postings bytes: %d\n", reader.PostingsSize())
	fmt.Printf("doc-table bytes: %d\n", reader.DocsSize())
	return nil
}
