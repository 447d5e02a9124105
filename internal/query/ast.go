// Package query parses boolean expressions into an AST and evaluates them
// against an inverted index using posting-list set operations.
package query

import "strings"

// Node is one node of a parsed boolean expression.
type Node interface {
	String() string
}

// Term is a leaf: one query term, normalised at evaluation time.
type Term struct {
	Value string
}

func (t *Term) String() string { return t.Value }

// And is the n-ary conjunction of its operands. Adjacent terms with no
// explicit operator parse into an And.
type And struct {
	Operands []Node
}

func (a *And) String() string { return "(" + joinNodes(a.Operands, " AND ") + ")" }

// Or is the n-ary disjunction of its operands.
type Or struct {
	Operands []Node
}

func (o *Or) String() string { return "(" + joinNodes(o.Operands, " OR ") + ")" }

// Not negates its operand against the document universe.
type Not struct {
	Operand Node
}

func (n *Not) String() string { return "NOT " + n.Operand.String() }

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
