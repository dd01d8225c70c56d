package spec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/gply/error"
	gspec "github.com/nihei9/gply/spec/grammar"
	"gopkg.in/yaml.v2"
)

// Description is a grammar description file.
//
//	name: calc
//	tokens:
//	  - name: NUMBER
//	    pattern: "[0-9]+"
//	  - name: PLUS
//	    literal: "+"
//	ignore:
//	  - '[\u{0009}\u{0020}]+'
//	precedence:
//	  - assoc: left
//	    terminals: [PLUS]
//	productions:
//	  - "expr : expr PLUS expr | NUMBER"
type Description struct {
	Name string `yaml:"name"`

	// Lexer is either `maleeni` (the default) or `lexmachine`.
	Lexer string `yaml:"lexer"`

	// Class is either `lalr` (the default) or `slr`.
	Class string `yaml:"class"`

	Tokens []*TokenEntry `yaml:"tokens"`
	Ignore []string      `yaml:"ignore"`

	// Precedence lists levels from the lowest to the highest.
	Precedence []*PrecedenceEntry `yaml:"precedence"`

	Productions []string `yaml:"productions"`
}

// TokenEntry defines a terminal. Exactly one of Pattern and Literal must be given.
type TokenEntry struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Literal string `yaml:"literal"`
}

// LexPattern returns the pattern of a token for a lexer; a literal is escaped in the syntax of that lexer.
func (e *TokenEntry) LexPattern(lexer string) string {
	if e.Literal == "" {
		return e.Pattern
	}
	if lexer == LexerLexmachine {
		return gspec.EscapeLexmachinePattern(e.Literal)
	}
	return gspec.EscapePattern(e.Literal)
}

type PrecedenceEntry struct {
	Assoc     string   `yaml:"assoc"`
	Terminals []string `yaml:"terminals"`
}

const (
	LexerMaleeni    = "maleeni"
	LexerLexmachine = "lexmachine"
)

var (
	errDescNoName          = errors.New("a grammar needs a name")
	errDescNoToken         = errors.New("a grammar needs at least one token")
	errDescNoTokenName     = errors.New("a token needs a name")
	errDescTokenPattern    = errors.New("a token needs exactly one of a pattern and a literal")
	errDescDuplicateToken  = errors.New("duplicate token")
	errDescNoProduction    = errors.New("a grammar needs at least one production")
	errDescUnknownLexer    = errors.New("unknown lexer; lexer must be one of 'maleeni' and 'lexmachine'")
	errDescUnknownClass    = errors.New("unknown class; class must be one of 'lalr' and 'slr'")
	errDescEmptyPrecedence = errors.New("a precedence level needs at least one terminal")
)

// ReadDescription reads and validates a grammar description. Every problem found is reported at once as
// verr.DescriptionErrors.
func ReadDescription(r io.Reader, filePath string) (*Description, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	desc := &Description{}
	err = yaml.UnmarshalStrict(src, desc)
	if err != nil {
		return nil, &verr.DescriptionError{
			Cause:    err,
			FilePath: filePath,
		}
	}

	var errs verr.DescriptionErrors
	addErr := func(cause error, entry string) {
		errs = append(errs, &verr.DescriptionError{
			Cause:    cause,
			FilePath: filePath,
			Entry:    entry,
		})
	}

	if desc.Name == "" {
		addErr(errDescNoName, "")
	}
	switch desc.Lexer {
	case "":
		desc.Lexer = LexerMaleeni
	case LexerMaleeni, LexerLexmachine:
	default:
		addErr(errDescUnknownLexer, desc.Lexer)
	}
	switch gspec.Class(desc.Class) {
	case "":
		desc.Class = gspec.ClassLALR.String()
	case gspec.ClassLALR, gspec.ClassSLR:
	default:
		addErr(errDescUnknownClass, desc.Class)
	}

	if len(desc.Tokens) == 0 {
		addErr(errDescNoToken, "")
	}
	known := map[string]struct{}{}
	for i, tok := range desc.Tokens {
		if tok.Name == "" {
			addErr(errDescNoTokenName, fmt.Sprintf("tokens[%v]", i))
			continue
		}
		if (tok.Pattern == "") == (tok.Literal == "") {
			addErr(errDescTokenPattern, tok.Name)
		}
		if _, ok := known[tok.Name]; ok {
			addErr(errDescDuplicateToken, tok.Name)
		}
		known[tok.Name] = struct{}{}
	}

	for i, prec := range desc.Precedence {
		if len(prec.Terminals) == 0 {
			addErr(errDescEmptyPrecedence, fmt.Sprintf("precedence[%v]", i))
		}
	}

	if len(desc.Productions) == 0 {
		addErr(errDescNoProduction, "")
	}
	for _, rule := range desc.Productions {
		_, err := Parse(strings.NewReader(rule))
		if err != nil {
			addErr(err, rule)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return desc, nil
}

// TokenNames returns the token names in declaration order.
func (d *Description) TokenNames() []string {
	names := make([]string, len(d.Tokens))
	for i, tok := range d.Tokens {
		names[i] = tok.Name
	}
	return names
}
