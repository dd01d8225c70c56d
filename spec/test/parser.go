/*
Package test reads test cases of grammars. A test case consists of three parts separated by lines of three
or more hyphens: a description, a source text, and the syntax tree the source text must produce.

	addition
	---
	1 + 2
	---
	(expr
	    (expr (NUMBER "1"))
	    (PLUS)
	    (expr (NUMBER "2")))

A terminal node may give its lexeme as a string. Node `_` matches a node of any kind.
*/
package test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/nihei9/gply/driver/lexer"
	"github.com/nihei9/gply/driver/parser"
	"github.com/nihei9/gply/driver/token"
	verr "github.com/nihei9/gply/error"
	"github.com/nihei9/gply/generator"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
	Lexeme   string
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, lexeme string) *Tree {
	return &Tree{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

// Fill sets the parent and the offset of every node.
func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	buf.WriteString(t.Kind)
	if t.Lexeme != "" {
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(t.Lexeme))
	}
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

// DiffTree compares an expected tree with an actual one. An expected node without a lexeme matches a node
// having any lexeme.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Lexeme != "" && actual.Lexeme != expected.Lexeme {
		msg := fmt.Sprintf("unexpected lexeme: expected '%v' but got '%v'", expected.Lexeme, actual.Lexeme)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just tree parts: %v parts found", len(parts))
	}

	tree, err := parseTree(parts[2].buf, parts[0].lineCount+parts[1].lineCount+2)
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	_, err := buf.Write(line)
	if err != nil {
		return nil, 0, err
	}
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		_, err := buf.Write([]byte("\n"))
		if err != nil {
			return nil, 0, err
		}
		_, err = buf.Write(line)
		if err != nil {
			return nil, 0, err
		}
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

// The tree notation is parsed by a parser generated on first use.
var (
	treeParserOnce sync.Once
	treeLexer      *lexer.Lexer
	treeParser     *parser.Parser
	treeParserErr  error
)

func genTreeParser() (*lexer.Lexer, *parser.Parser, error) {
	treeParserOnce.Do(func() {
		lg := lexer.NewGenerator()
		lg.Add("LPAREN", `\(`)
		lg.Add("RPAREN", `\)`)
		lg.Add("NAME", `[0-9A-Za-z_]+`)
		lg.Add("RAW_STRING", `'[^']*'`)
		lg.Add("STRING", `"(\\.|[^"\\])*"`)
		lg.Ignore(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`)
		treeLexer, treeParserErr = lg.Build()
		if treeParserErr != nil {
			return
		}

		g := generator.New([]string{"LPAREN", "RPAREN", "NAME", "RAW_STRING", "STRING"})
		prods := []struct {
			rule   string
			action parser.Action
		}{
			{
				rule: "tree : LPAREN NAME RPAREN",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					return NewNonTerminalTree(v[1].(*token.Token).Value), nil
				},
			},
			{
				rule: "tree : LPAREN NAME lexeme RPAREN",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					return NewTerminalNode(v[1].(*token.Token).Value, v[2].(string)), nil
				},
			},
			{
				rule: "tree : LPAREN NAME trees RPAREN",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					kind := v[1].(*token.Token)
					if kind.Value == "error" {
						return nil, fmt.Errorf("%v: an error node cannot take children", kind.Pos)
					}
					return NewNonTerminalTree(kind.Value, v[2].([]*Tree)...), nil
				},
			},
			{
				rule: "trees : trees tree",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					return append(v[0].([]*Tree), v[1].(*Tree)), nil
				},
			},
			{
				rule: "trees : tree",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					return []*Tree{v[0].(*Tree)}, nil
				},
			},
			{
				rule: "lexeme : RAW_STRING",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					s := v[0].(*token.Token).Value
					return s[1 : len(s)-1], nil
				},
			},
			{
				rule: "lexeme : STRING",
				action: func(_ interface{}, v []interface{}) (interface{}, error) {
					tok := v[0].(*token.Token)
					s, err := strconv.Unquote(tok.Value)
					if err != nil {
						return nil, fmt.Errorf("%v: invalid string %v: %w", tok.Pos, tok.Value, err)
					}
					return s, nil
				},
			},
		}
		for _, p := range prods {
			treeParserErr = g.Production(p.rule, p.action)
			if treeParserErr != nil {
				return
			}
		}
		treeParser, _, treeParserErr = g.Build()
	})
	return treeLexer, treeParser, treeParserErr
}

func parseTree(src []byte, lineOffset int) (*Tree, error) {
	l, p, err := genTreeParser()
	if err != nil {
		return nil, err
	}
	v, err := p.Parse(l.Lex(string(src)), nil)
	if err != nil {
		return nil, formatTreeError(err, lineOffset)
	}
	return v.(*Tree).Fill(), nil
}

// formatTreeError shifts a position in a tree part to the one in a whole test case.
func formatTreeError(err error, lineOffset int) error {
	var lexErr *verr.LexingError
	if errors.As(err, &lexErr) {
		return fmt.Errorf("%v:%v: invalid character %q", lineOffset+lexErr.Pos.Line, lexErr.Pos.Col, lexErr.Text)
	}
	var synErr *verr.ParsingError
	if errors.As(err, &synErr) {
		if synErr.Pos == nil {
			return fmt.Errorf("unexpected end of a tree")
		}
		return fmt.Errorf("%v:%v: unexpected token %v", lineOffset+synErr.Pos.Line, synErr.Pos.Col, synErr.Token.Value)
	}
	return err
}
