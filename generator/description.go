package generator

import (
	"github.com/nihei9/gply/driver/lexer"
	"github.com/nihei9/gply/driver/lexer/lexmach"
	"github.com/nihei9/gply/driver/parser"
	"github.com/nihei9/gply/driver/token"
	"github.com/nihei9/gply/grammar"
	"github.com/nihei9/gply/spec"
	gspec "github.com/nihei9/gply/spec/grammar"
)

// Lexer turns a source text into tokens. Both *lexer.Lexer and *lexmach.Lexer satisfy it.
type Lexer interface {
	Lex(src string) token.Stream
}

var (
	_ Lexer = &lexer.Lexer{}
	_ Lexer = &lexmach.Lexer{}
)

// NewLexer builds the lexer a grammar description selects.
func NewLexer(desc *spec.Description) (Lexer, error) {
	switch desc.Lexer {
	case spec.LexerLexmachine:
		g := lexmach.NewGenerator()
		for _, pat := range desc.Ignore {
			g.Ignore(pat)
		}
		for _, tok := range desc.Tokens {
			g.Add(tok.Name, tok.LexPattern(desc.Lexer))
		}
		l, err := g.Build()
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		g := lexer.NewGenerator()
		for _, pat := range desc.Ignore {
			g.Ignore(pat)
		}
		for _, tok := range desc.Tokens {
			g.Add(tok.Name, tok.LexPattern(desc.Lexer))
		}
		l, err := g.Build()
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

// FromDescription returns a generator of a grammar description. Every production reduces to a syntax tree
// node named after its LHS, so the parser Build makes returns a *parser.Node.
func FromDescription(desc *spec.Description, opts ...Option) (*Generator, error) {
	levels := make([]Level, len(desc.Precedence))
	for i, prec := range desc.Precedence {
		levels[i] = Level{
			Assoc:     grammar.Assoc(prec.Assoc),
			Terminals: prec.Terminals,
		}
	}
	descOpts := []Option{
		Precedence(levels...),
		Name(desc.Name),
	}
	if desc.Class != "" {
		descOpts = append(descOpts, Class(gspec.Class(desc.Class)))
	}
	opts = append(descOpts, opts...)
	g := New(desc.TokenNames(), opts...)

	for _, rule := range desc.Productions {
		prod, err := spec.ParseRule(rule)
		if err != nil {
			return nil, err
		}
		action := parser.NodeAction(prod.LHS)
		for _, alt := range prod.RHS {
			err := g.AddProduction(prod.LHS, alt.Elements, action, alt.Prec)
			if err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
