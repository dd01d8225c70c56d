package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/gply/driver/token"
	verr "github.com/nihei9/gply/error"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gply.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("gply.lexer")
}

var ErrNoRule = errors.New("a lexer needs at least one rule")

type rule struct {
	name    string
	pattern string
}

// Generator accumulates lexical rules. Patterns are written in the regular expression syntax of maleeni.
type Generator struct {
	rules   []*rule
	ignores []string
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Add adds a rule producing tokens whose type is `name`.
func (g *Generator) Add(name string, pattern string) {
	g.rules = append(g.rules, &rule{
		name:    name,
		pattern: pattern,
	})
}

// Ignore adds a rule whose matches are skipped. When an ignore rule and a regular rule match the same
// text, the ignore rule wins.
func (g *Generator) Ignore(pattern string) {
	g.ignores = append(g.ignores, pattern)
}

// Build compiles the rules. The longest match wins; among rules matching the same length, the one added
// first wins.
func (g *Generator) Build() (*Lexer, error) {
	if len(g.rules) == 0 {
		return nil, ErrNoRule
	}

	// Kind names of maleeni are restricted to snake case, so kinds get generated names mapped to the
	// rule names.
	var entries []*mlspec.LexEntry
	kind2Name := map[mlspec.LexKindName]string{}
	kind2Pattern := map[mlspec.LexKindName]string{}
	for i, pat := range g.ignores {
		kind := mlspec.LexKindName(fmt.Sprintf("ignore_%v", i+1))
		entries = append(entries, &mlspec.LexEntry{
			Kind:    kind,
			Pattern: mlspec.LexPattern(pat),
		})
		kind2Pattern[kind] = pat
	}
	for i, r := range g.rules {
		kind := mlspec.LexKindName(fmt.Sprintf("kind_%v", i+1))
		entries = append(entries, &mlspec.LexEntry{
			Kind:    kind,
			Pattern: mlspec.LexPattern(r.pattern),
		})
		kind2Name[kind] = r.name
		kind2Pattern[kind] = r.pattern
	}

	clspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    "gply",
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0], kind2Name, kind2Pattern)
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr, kind2Name, kind2Pattern)
			}
			return nil, fmt.Errorf("failed to compile lexical rules: %v", b.String())
		}
		return nil, err
	}

	tracer().Debugf("compiled a lexer: %v rules, %v ignore rules", len(g.rules), len(g.ignores))

	return &Lexer{
		spec:      clspec,
		kind2Name: kind2Name,
	}, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError, kind2Name map[mlspec.LexKindName]string, kind2Pattern map[mlspec.LexKindName]string) {
	if name, ok := kind2Name[cErr.Kind]; ok {
		fmt.Fprintf(w, "%v", name)
	} else {
		fmt.Fprintf(w, "ignore rule")
	}
	fmt.Fprintf(w, " %q: %v", kind2Pattern[cErr.Kind], cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

// Lexer is a compiled set of rules. It can make any number of token streams.
type Lexer struct {
	spec *mlspec.CompiledLexSpec

	// kind2Name maps a kind to a rule name. Ignored kinds are missing.
	kind2Name map[mlspec.LexKindName]string
}

// Lex returns a stream of tokens of `src`. The stream returns a *verr.LexingError when no rule matches.
func (l *Lexer) Lex(src string) token.Stream {
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(l.spec), strings.NewReader(src))
	return &tokenStream{
		lex: l,
		d:   d,
		err: err,
		pos: token.SourcePos{
			Line: 1,
			Col:  1,
		},
	}
}

type tokenStream struct {
	lex *Lexer
	d   *mldriver.Lexer
	err error
	pos token.SourcePos
}

func (s *tokenStream) Next() (*token.Token, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		tok, err := s.d.Next()
		if err != nil {
			s.err = err
			return nil, err
		}
		if tok.EOF {
			s.err = io.EOF
			return nil, io.EOF
		}

		text := string(tok.Lexeme)
		pos := s.pos
		s.pos = Advance(s.pos, text)

		if tok.Invalid {
			s.err = &verr.LexingError{
				Pos:  pos,
				Text: text,
			}
			return nil, s.err
		}
		name, ok := s.lex.kind2Name[s.lex.spec.KindNames[tok.KindID]]
		if !ok {
			continue
		}
		return token.New(name, text, pos), nil
	}
}

// Advance moves a position over `text`.
func Advance(pos token.SourcePos, text string) token.SourcePos {
	for _, c := range text {
		pos.Idx++
		if c == '\n' {
			pos.Line++
			pos.Col = 1
			continue
		}
		pos.Col++
	}
	return pos
}
