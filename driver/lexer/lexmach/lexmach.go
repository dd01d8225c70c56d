/*
Package lexmach is a lexer built on lexmachine. It offers the same surface as package lexer, with
lexmachine's regular expression syntax.
*/
package lexmach

import (
	"errors"
	"fmt"
	"io"

	"github.com/nihei9/gply/driver/lexer"
	"github.com/nihei9/gply/driver/token"
	verr "github.com/nihei9/gply/error"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'gply.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("gply.lexer")
}

type Generator struct {
	names   []string
	rules   [][]byte
	ignores [][]byte
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Add adds a rule producing tokens whose type is `name`.
func (g *Generator) Add(name string, pattern string) {
	g.names = append(g.names, name)
	g.rules = append(g.rules, []byte(pattern))
}

// Ignore adds a rule whose matches are skipped. It wins a tie against a regular rule.
func (g *Generator) Ignore(pattern string) {
	g.ignores = append(g.ignores, []byte(pattern))
}

// Build compiles the rules into a DFA.
func (g *Generator) Build() (*Lexer, error) {
	if len(g.rules) == 0 {
		return nil, lexer.ErrNoRule
	}

	lm := lexmachine.NewLexer()
	for _, pat := range g.ignores {
		lm.Add(pat, skip)
	}
	for id, pat := range g.rules {
		lm.Add(pat, makeToken(id))
	}
	if err := lm.Compile(); err != nil {
		tracer().Errorf("error compiling DFA: %v", err)
		return nil, fmt.Errorf("failed to compile lexical rules: %w", err)
	}

	tracer().Debugf("compiled a lexer: %v rules, %v ignore rules", len(g.rules), len(g.ignores))

	return &Lexer{
		lm:    lm,
		names: append([]string{}, g.names...),
	}, nil
}

// skip ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

type Lexer struct {
	lm    *lexmachine.Lexer
	names []string
}

// Lex returns a stream of tokens of `src`. The stream returns a *verr.LexingError when no rule matches.
func (l *Lexer) Lex(src string) token.Stream {
	sc, err := l.lm.Scanner([]byte(src))
	return &tokenStream{
		lex: l,
		src: src,
		sc:  sc,
		err: err,
		pos: token.SourcePos{
			Line: 1,
			Col:  1,
		},
	}
}

type tokenStream struct {
	lex *Lexer
	src string
	sc  *lexmachine.Scanner
	err error

	// pos is the position of the byte offset tc.
	pos token.SourcePos
	tc  int
}

// posAt returns the position of a byte offset not behind the last one.
func (s *tokenStream) posAt(tc int) token.SourcePos {
	s.pos = lexer.Advance(s.pos, s.src[s.tc:tc])
	s.tc = tc
	return s.pos
}

func (s *tokenStream) Next() (*token.Token, error) {
	if s.err != nil {
		return nil, s.err
	}

	v, err, eof := s.sc.Next()
	if eof {
		s.err = io.EOF
		return nil, io.EOF
	}
	if err != nil {
		var ui *machines.UnconsumedInput
		if errors.As(err, &ui) {
			s.err = &verr.LexingError{
				Pos:  s.posAt(ui.StartTC),
				Text: string(ui.Text),
			}
			return nil, s.err
		}
		s.err = err
		return nil, err
	}

	tok := v.(*lexmachine.Token)
	return token.New(s.lex.names[tok.Type], string(tok.Lexeme), s.posAt(tok.TC)), nil
}
