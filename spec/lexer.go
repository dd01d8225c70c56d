package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindID              = tokenKind("id")
	tokenKindColon           = tokenKind(":")
	tokenKindOr              = tokenKind("|")
	tokenKindSemicolon       = tokenKind(";")
	tokenKindDirectiveMarker = tokenKind("#")
	tokenKindEOF             = tokenKind("eof")
	tokenKindInvalid         = tokenKind("invalid")
)

// Position is a 1-based position in a rule source.
type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newIDToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindID,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// ruleLexSpec is the lexical specification of rule sources. An identifier is any run of characters other
// than white spaces and punctuation, so names like `$id` or `expr'` are accepted here and judged later by
// the grammar.
var ruleLexSpec = &mlspec.LexSpec{
	Name: "rule",
	Entries: []*mlspec.LexEntry{
		{
			Kind:    "white_space",
			Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`,
		},
		{
			Kind:    "colon",
			Pattern: `:`,
		},
		{
			Kind:    "or",
			Pattern: `\|`,
		},
		{
			Kind:    "semicolon",
			Pattern: `;`,
		},
		{
			Kind:    "directive_marker",
			Pattern: `#`,
		},
		{
			Kind:    "identifier",
			Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020}:|;#]+`,
		},
	},
}

var (
	compiledRuleLexSpec    *mlspec.CompiledLexSpec
	compiledRuleLexSpecErr error
	compileRuleLexSpecOnce sync.Once
)

func ruleLexer() (*mlspec.CompiledLexSpec, error) {
	compileRuleLexSpecOnce.Do(func() {
		clspec, err, cErrs := mlcompiler.Compile(ruleLexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				for _, cerr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n%v: %v", cerr.Kind, cerr.Cause)
				}
				err = fmt.Errorf("failed to compile the rule lexer: %v", b.String())
			}
			compiledRuleLexSpecErr = err
			return
		}
		compiledRuleLexSpec = clspec
	})
	return compiledRuleLexSpec, compiledRuleLexSpecErr
}

type lexer struct {
	s *mlspec.CompiledLexSpec
	d *mldriver.Lexer
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := ruleLexer()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

func (l *lexer) next() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		pos := newPosition(tok.Row+1, tok.Col+1)
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), pos), nil
		}
		if tok.EOF {
			return newEOFToken(pos), nil
		}
		if l.kindName(tok) == "white_space" {
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.kindName(tok) {
	case "colon":
		return newSymbolToken(tokenKindColon, pos), nil
	case "or":
		return newSymbolToken(tokenKindOr, pos), nil
	case "semicolon":
		return newSymbolToken(tokenKindSemicolon, pos), nil
	case "directive_marker":
		return newSymbolToken(tokenKindDirectiveMarker, pos), nil
	case "identifier":
		return newIDToken(string(tok.Lexeme), pos), nil
	default:
		return newInvalidToken(string(tok.Lexeme), pos), nil
	}
}

func (l *lexer) kindName(tok *mldriver.Token) mlspec.LexKindName {
	return l.s.KindNames[tok.KindID]
}
