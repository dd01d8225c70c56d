package spec

import (
	"io"
	"strings"
)

// RootNode is a sequence of productions separated by semicolons.
//
//	expr
//	    : expr PLUS expr
//	    | MINUS expr #prec UMINUS
//	    | NUMBER
//	    ;
//	stmt : expr SEMI
type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// AlternativeNode is one body of a production. Prec is the name given by a #prec directive.
type AlternativeNode struct {
	Elements []string
	Prec     string
}

func raiseSyntaxError(synErr *SyntaxError, pos Position) {
	panic(&PositionedError{
		Cause: synErr,
		Pos:   pos,
	})
}

// Parse parses a rule source containing one or more productions.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ParseRule parses a rule source containing exactly one production, like `expr : expr PLUS expr | NUMBER`.
func ParseRule(rule string) (*ProductionNode, error) {
	root, err := Parse(strings.NewReader(rule))
	if err != nil {
		return nil, err
	}
	if len(root.Productions) != 1 {
		return nil, &PositionedError{
			Cause: synErrTooManyRules,
			Pos:   root.Productions[1].Pos,
		}
	}
	return root.Productions[0], nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			retErr = err.(error)
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	prod := p.parseProduction()
	if prod == nil {
		raiseSyntaxError(synErrNoProduction, p.peek().pos)
	}
	root := &RootNode{
		Productions: []*ProductionNode{prod},
	}
	for {
		if !p.consume(tokenKindSemicolon) {
			if p.consume(tokenKindEOF) {
				break
			}
			raiseSyntaxError(synErrNoSemicolon, p.peek().pos)
		}
		prod := p.parseProduction()
		if prod == nil {
			break
		}
		root.Productions = append(root.Productions, prod)
	}
	return root
}

func (p *parser) parseProduction() *ProductionNode {
	if p.consume(tokenKindEOF) {
		return nil
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoProductionName, p.peek().pos)
	}
	lhs := p.lastTok.text
	pos := p.lastTok.pos
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon, p.peek().pos)
	}
	alt := p.parseAlternative()
	rhs := []*AlternativeNode{alt}
	for {
		if !p.consume(tokenKindOr) {
			break
		}
		alt := p.parseAlternative()
		rhs = append(rhs, alt)
	}
	return &ProductionNode{
		LHS: lhs,
		RHS: rhs,
		Pos: pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	alt := &AlternativeNode{
		Elements: []string{},
	}
	for {
		switch {
		case p.consume(tokenKindID):
			if alt.Prec != "" {
				raiseSyntaxError(synErrElemAfterPrec, p.lastTok.pos)
			}
			alt.Elements = append(alt.Elements, p.lastTok.text)
		case p.consume(tokenKindDirectiveMarker):
			if alt.Prec != "" {
				raiseSyntaxError(synErrDuplicatePrec, p.lastTok.pos)
			}
			alt.Prec = p.parsePrecDirective()
		default:
			return alt
		}
	}
}

func (p *parser) parsePrecDirective() string {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoDirectiveName, p.peek().pos)
	}
	if p.lastTok.text != "prec" {
		raiseSyntaxError(synErrUnknownDirective, p.lastTok.pos)
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoPrecedenceName, p.peek().pos)
	}
	return p.lastTok.text
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.peekedTok = tok
	}
	return p.peekedTok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(synErrInvalidChar, tok.pos)
	}
	if tok.kind == expected {
		p.peekedTok = nil
		p.lastTok = tok
		return true
	}
	p.lastTok = nil

	return false
}
