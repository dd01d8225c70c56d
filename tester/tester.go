/*
Package tester runs test cases of a grammar. Each case gives a source text and the syntax tree the grammar
must produce from it.
*/
package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/gply/driver/parser"
	"github.com/nihei9/gply/generator"
	"github.com/nihei9/gply/spec"
	tspec "github.com/nihei9/gply/spec/test"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gply.tester'.
func tracer() tracing.Trace {
	return tracing.Select("gply.tester")
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*tspec.TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCase(f)
}

// Tester runs test cases with a lexer and a parser whose actions build *parser.Node trees.
type Tester struct {
	Lexer  generator.Lexer
	Parser *parser.Parser
	Cases  []*TestCaseWithMetadata
}

// NewTester makes a tester of a grammar description.
func NewTester(desc *spec.Description, cases []*TestCaseWithMetadata, opts ...generator.Option) (*Tester, error) {
	l, err := generator.NewLexer(desc)
	if err != nil {
		return nil, err
	}
	g, err := generator.FromDescription(desc, opts...)
	if err != nil {
		return nil, err
	}
	p, _, err := g.Build()
	if err != nil {
		return nil, err
	}
	return &Tester{
		Lexer:  l,
		Parser: p,
		Cases:  cases,
	}, nil
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, t.runTest(c))
	}
	return rs
}

func (t *Tester) runTest(c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        c.Error,
		}
	}

	v, err := t.Parser.Parse(t.Lexer.Lex(string(c.TestCase.Source)), nil)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	root, ok := v.(*parser.Node)
	if !ok {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("the parser returned %T instead of a syntax tree", v),
		}
	}

	diffs := tspec.DiffTree(c.TestCase.Output, genTree(root).Fill())
	if len(diffs) > 0 {
		tracer().Debugf("%v: %v difference(s)", c.FilePath, len(diffs))
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

func genTree(node *parser.Node) *tspec.Tree {
	if node.Type == parser.NodeTypeTerminal {
		return tspec.NewTerminalNode(node.KindName, node.Text)
	}
	var children []*tspec.Tree
	if len(node.Children) > 0 {
		children = make([]*tspec.Tree, len(node.Children))
		for i, c := range node.Children {
			children[i] = genTree(c)
		}
	}
	return tspec.NewNonTerminalTree(node.KindName, children...)
}
