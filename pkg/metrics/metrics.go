// Package metrics defines the Prometheus metric collectors sampled around
// index construction and query evaluation, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the indexer and query engine.
type Metrics struct {
	BlocksFlushedTotal  prometheus.Counter
	BlockFlushDuration  prometheus.Histogram
	RunsMergedTotal     prometheus.Counter
	MergeDuration       prometheus.Histogram
	BuildDuration       prometheus.Histogram
	TermsIndexed        prometheus.Gauge
	PostingsWritten     prometheus.Counter
	DictionaryBytes     *prometheus.GaugeVec
	QueriesTotal        *prometheus.CounterVec
	QueryLatency        prometheus.Histogram
	QueryResultsCount   prometheus.Histogram
	QuerySyntaxErrors   prometheus.Counter
	PostingsSkipsTaken  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		BlocksFlushedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_blocks_flushed_total",
				Help: "Total sorted runs flushed by block builders.",
			},
		),
		BlockFlushDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_block_flush_duration_seconds",
				Help:    "Time spent sorting and writing one sorted run.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		RunsMergedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_runs_merged_total",
				Help: "Total sorted runs consumed by merges.",
			},
		),
		MergeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_merge_duration_seconds",
				Help:    "Time spent k-way merging runs into the final index.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_build_duration_seconds",
				Help:    "End-to-end index build time.",
				Buckets: []float64{0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),
		TermsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_terms",
				Help: "Distinct terms in the most recently built index.",
			},
		),
		PostingsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_postings_written_total",
				Help: "Total postings written across runs and the final index.",
			},
		),
		DictionaryBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "index_dictionary_bytes",
				Help: "Encoded dictionary size by codec.",
			},
			[]string{"codec"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "query_total",
				Help: "Total queries by outcome (hit, zero_result, error).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_latency_seconds",
				Help:    "Boolean query evaluation latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_results_count",
				Help:    "Number of documents returned per query.",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 1000, 10000},
			},
		),
		QuerySyntaxErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_syntax_errors_total",
				Help: "Total queries rejected by the parser.",
			},
		),
		PostingsSkipsTaken: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_posting_skips_taken_total",
				Help: "Skip pointers followed during posting-list intersection.",
			},
		),
	}

	prometheus.MustRegister(
		m.BlocksFlushedTotal,
		m.BlockFlushDuration,
		m.RunsMergedTotal,
		m.MergeDuration,
		m.BuildDuration,
		m.TermsIndexed,
		m.PostingsWritten,
		m.DictionaryBytes,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.QuerySyntaxErrors,
		m.PostingsSkipsTaken,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
