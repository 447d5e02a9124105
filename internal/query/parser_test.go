package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

func mustParse(t *testing.T, query string) Node {
	t.Helper()
	node, err := Parse(query)
	require.NoError(t, err, "query %q", query)
	return node
}

func TestParseSingleTerm(t *testing.T) {
	node := mustParse(t, "alpha")
	term, ok := node.(*Term)
	require.True(t, ok)
	assert.Equal(t, "alpha", term.Value)
}

func TestParsePrecedence(t *testing.T) {
	// AND binds tighter than OR.
	node := mustParse(t, "a OR b AND c")
	assert.Equal(t, "(a OR (b AND c))", node.String())

	node = mustParse(t, "a AND b OR c")
	assert.Equal(t, "((a AND b) OR c)", node.String())
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	node := mustParse(t, "(a OR b) AND c")
	assert.Equal(t, "((a OR b) AND c)", node.String())
}

func TestParseImplicitAnd(t *testing.T) {
	node := mustParse(t, "alpha beta gamma")
	and, ok := node.(*And)
	require.True(t, ok)
	assert.Len(t, and.Operands, 3)
	assert.Equal(t, "(alpha AND beta AND gamma)", node.String())

	// Adjacency also binds groups and negations.
	assert.Equal(t, "(a AND (b OR c))", mustParse(t, "a (b OR c)").String())
	assert.Equal(t, "(a AND NOT b)", mustParse(t, "a NOT b").String())
}

func TestParseNotBinding(t *testing.T) {
	// NOT binds tighter than AND.
	node := mustParse(t, "NOT a AND b")
	assert.Equal(t, "(NOT a AND b)", node.String())

	assert.Equal(t, "NOT NOT a", mustParse(t, "NOT NOT a").String())
	assert.Equal(t, "NOT (a OR b)", mustParse(t, "NOT (a OR b)").String())
}

func TestParseOperatorsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "((a AND b) OR NOT c)", mustParse(t, "a and b or not c").String())
}

func TestParseOperatorCaseTermsPreserved(t *testing.T) {
	// Only operator words are case folded here; term normalisation belongs
	// to the analyzer at evaluation time.
	node := mustParse(t, "Alpha")
	assert.Equal(t, "Alpha", node.(*Term).Value)
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, query := range []string{
		"",
		"   ",
		"a AND",
		"AND a",
		"a OR",
		"NOT",
		"(a OR b",
		"a )",
		"()",
		"a AND OR b",
	} {
		_, err := Parse(query)
		require.Error(t, err, "query %q", query)
		assert.ErrorIs(t, err, errs.ErrQuerySyntax, "query %q", query)
	}
}
