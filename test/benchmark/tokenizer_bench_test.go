package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/AshPopcorn/Group5-ASM2/internal/analyzer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Inverted indexes map each term to the sorted list of documents
        containing it. Construction proceeds in memory-bounded blocks that are
        flushed as sorted runs and merged in a single pass. Skip pointers over
        the posting lists let conjunctive queries leap past stretches of
        non-matching documents instead of walking every entry.`,
	"long": strings.Repeat(`Information retrieval systems combine tokenization,
        stemming, and stop word removal to normalize text into searchable
        terms. The dictionary that maps terms to posting list locations can be
        compressed by grouping terms, front coding shared prefixes, or packing
        every term into one contiguous string with offset views. Boolean
        queries over the index compose intersection, union, and complement
        against the universe of indexed documents. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	a := analyzer.New()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := a.Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	a := analyzer.New()
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := a.Tokenize(text)
			_ = tokens
		}
	})
}

func BenchmarkNormalize(b *testing.B) {
	a := analyzer.New()
	words := []string{
		"running", "distributed", "searching", "indexing",
		"tokenization", "normalization", "efficiently",
		"processing", "infrastructure", "scalability",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			term := a.Normalize(w)
			_ = term
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	a := analyzer.New()
	sizes := []int{100, 500, 1000, 5000}
	baseWord := "distributed search analytics platform indexing "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := a.Tokenize(text)
				_ = tokens
			}
		})
	}
}
