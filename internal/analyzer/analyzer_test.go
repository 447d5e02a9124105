package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeNormalises(t *testing.T) {
	a := New()
	terms := a.Tokenize("The Quick-Brown foxes, jumped!")
	assert.Equal(t, []string{"quick", "brown", "fox", "jump"}, terms)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	a := New()
	terms := a.Tokenize("a an the x of gamma")
	assert.Equal(t, []string{"gamma"}, terms)
}

func TestNormalizeSingleToken(t *testing.T) {
	a := New()
	assert.Equal(t, "index", a.Normalize("  Indexes "))
	assert.Equal(t, "", a.Normalize("the"))
	assert.Equal(t, "", a.Normalize("x"))
}

func TestWithoutStemming(t *testing.T) {
	a := New(WithoutStemming())
	assert.Equal(t, []string{"foxes", "jumped"}, a.Tokenize("foxes jumped"))
}

func TestWithStopWords(t *testing.T) {
	a := New(WithStopWords([]string{"gamma"}), WithoutStemming())
	assert.Equal(t, []string{"the", "alpha"}, a.Tokenize("the gamma alpha"))
}

func TestQueryAndIndexNormaliseIdentically(t *testing.T) {
	a := New()
	for _, word := range []string{"Searching", "indexes", "distributed"} {
		indexed := a.Tokenize(word)
		assert.Len(t, indexed, 1)
		assert.Equal(t, indexed[0], a.Normalize(word))
	}
}
