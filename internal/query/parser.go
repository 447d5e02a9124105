package query

import (
	"strings"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// Grammar, highest precedence first:
//
//	primary = TERM | "(" or ")"
//	unary   = "NOT" unary | primary
//	and     = unary { ["AND"] unary }   (adjacency is implicit AND)
//	or      = and { "OR" and }
//
// Operator words are recognised case-insensitively.

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func lex(query string) []token {
	query = strings.ReplaceAll(query, "(", " ( ")
	query = strings.ReplaceAll(query, ")", " ) ")
	var tokens []token
	for _, field := range strings.Fields(query) {
		switch strings.ToUpper(field) {
		case "AND":
			tokens = append(tokens, token{kind: tokAnd})
		case "OR":
			tokens = append(tokens, token{kind: tokOr})
		case "NOT":
			tokens = append(tokens, token{kind: tokNot})
		case "(":
			tokens = append(tokens, token{kind: tokLParen})
		case ")":
			tokens = append(tokens, token{kind: tokRParen})
		default:
			tokens = append(tokens, token{kind: tokTerm, text: field})
		}
	}
	return tokens
}

// Parse turns a boolean query string into an AST. Malformed expressions
// (empty query, unbalanced parentheses, operators with missing operands) are
// rejected before any index access happens.
func Parse(query string) (Node, error) {
	tokens := lex(query)
	if len(tokens) == 0 {
		return nil, errs.New(errs.ErrQuerySyntax, "empty query")
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		if p.peek().kind == tokRParen {
			return nil, errs.New(errs.ErrQuerySyntax, "unbalanced closing parenthesis")
		}
		return nil, errs.Newf(errs.ErrQuerySyntax, "unexpected %s", describe(p.peek()))
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) accept(kind tokenKind) bool {
	if !p.eof() && p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Node{left}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return &Or{Operands: operands}, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	operands := []Node{left}
	for {
		if p.accept(tokAnd) {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			operands = append(operands, right)
			continue
		}
		// Adjacency: a following term, NOT, or group is an implicit AND.
		if !p.eof() {
			switch p.peek().kind {
			case tokTerm, tokNot, tokLParen:
				right, err := p.parseUnary()
				if err != nil {
					return nil, err
				}
				operands = append(operands, right)
				continue
			}
		}
		break
	}
	if len(operands) == 1 {
		return left, nil
	}
	return &And{Operands: operands}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.accept(tokNot) {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	if p.eof() {
		return nil, errs.New(errs.ErrQuerySyntax, "operator is missing an operand")
	}
	tok := p.peek()
	switch tok.kind {
	case tokTerm:
		p.pos++
		return &Term{Value: tok.text}, nil
	case tokLParen:
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errs.New(errs.ErrQuerySyntax, "unbalanced opening parenthesis")
		}
		return node, nil
	default:
		return nil, errs.Newf(errs.ErrQuerySyntax, "unexpected %s", describe(tok))
	}
}

func describe(t token) string {
	switch t.kind {
	case tokTerm:
		return "term " + t.text
	case tokAnd:
		return "operator AND"
	case tokOr:
		return "operator OR"
	case tokNot:
		return "operator NOT"
	case tokLParen:
		return "opening parenthesis"
	default:
		return "closing parenthesis"
	}
}
