package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nihei9/gply/driver/parser"
	"github.com/nihei9/gply/grammar"
	"github.com/nihei9/gply/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFromDescription(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gply.generator")
	defer teardown()

	tests := []struct {
		caption string
		desc    string
		src     string
		tree    string
	}{
		{
			caption: "maleeni",
			desc: `
name: calc
tokens:
  - name: NUMBER
    pattern: "[0-9]+"
  - name: PLUS
    literal: "+"
  - name: MUL
    literal: "*"
ignore:
  - '[\u{0020}]+'
precedence:
  - assoc: left
    terminals: [PLUS]
  - assoc: left
    terminals: [MUL]
productions:
  - "expr : expr PLUS expr | expr MUL expr | NUMBER"
`,
			src: "1 + 2 * 3",
			tree: `expr
├─ expr
│  └─ NUMBER "1"
├─ PLUS "+"
└─ expr
   ├─ expr
   │  └─ NUMBER "2"
   ├─ MUL "*"
   └─ expr
      └─ NUMBER "3"
`,
		},
		{
			caption: "lexmachine and SLR",
			desc: `
name: list
lexer: lexmachine
class: slr
tokens:
  - name: ID
    pattern: "[a-z]+"
  - name: COMMA
    literal: ","
ignore:
  - "( |\t)+"
productions:
  - "list : list COMMA ID | ID"
`,
			src: "a, b",
			tree: `list
├─ list
│  └─ ID "a"
├─ COMMA ","
└─ ID "b"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			desc, err := spec.ReadDescription(strings.NewReader(tt.desc), "test.yaml")
			if err != nil {
				t.Fatal(err)
			}
			l, err := NewLexer(desc)
			if err != nil {
				t.Fatal(err)
			}
			g, err := FromDescription(desc)
			if err != nil {
				t.Fatal(err)
			}
			p, _, err := g.Build()
			if err != nil {
				t.Fatal(err)
			}
			v, err := p.Parse(l.Lex(tt.src), nil)
			if err != nil {
				t.Fatal(err)
			}
			var b bytes.Buffer
			parser.PrintTree(&b, v.(*parser.Node))
			if b.String() != tt.tree {
				t.Fatalf("unexpected tree; want:\n%v\ngot:\n%v", tt.tree, b.String())
			}
		})
	}
}

func TestGenerator_Compile(t *testing.T) {
	desc, err := spec.ReadDescription(strings.NewReader(`
name: assign
tokens:
  - name: ID
    pattern: "[a-z]+"
  - name: EQ
    literal: "="
  - name: STAR
    literal: "*"
productions:
  - "s : l EQ r | r"
  - "l : STAR r | ID"
  - "r : l"
`), "assign.yaml")
	if err != nil {
		t.Fatal(err)
	}
	g, err := FromDescription(desc)
	if err != nil {
		t.Fatal(err)
	}

	cg, report, err := g.Compile(grammar.EnableReporting())
	if err != nil {
		t.Fatal(err)
	}
	if cg.Name != "assign" {
		t.Fatalf("unexpected name: %v", cg.Name)
	}
	if report == nil {
		t.Fatal("a report must be made")
	}
	if len(cg.Table.SRConflicts) != 0 {
		t.Fatalf("an LALR table has no conflict: %v", len(cg.Table.SRConflicts))
	}

	// Compile doesn't consume the generator.
	cg, _, err = g.Compile(grammar.Class("slr"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cg.Table.SRConflicts) != 1 {
		t.Fatalf("an SLR table has a shift/reduce conflict: %v", len(cg.Table.SRConflicts))
	}
	_, _, err = g.Build()
	if err != nil {
		t.Fatal(err)
	}
}
