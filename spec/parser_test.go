package spec

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	production := func(lhs string, alts ...*AlternativeNode) *ProductionNode {
		return &ProductionNode{
			LHS: lhs,
			RHS: alts,
		}
	}
	alternative := func(elems ...string) *AlternativeNode {
		if elems == nil {
			elems = []string{}
		}
		return &AlternativeNode{
			Elements: elems,
		}
	}
	withPrec := func(alt *AlternativeNode, prec string) *AlternativeNode {
		alt.Prec = prec
		return alt
	}

	tests := []struct {
		caption string
		src     string
		ast     *RootNode
		synErr  *SyntaxError
	}{
		{
			caption: "single production is a valid rule source",
			src:     `expr : NUMBER`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("expr", alternative("NUMBER")),
				},
			},
		},
		{
			caption: "alternatives are separated by |",
			src:     `expr : expr PLUS expr | expr MINUS expr | NUMBER`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("expr",
						alternative("expr", "PLUS", "expr"),
						alternative("expr", "MINUS", "expr"),
						alternative("NUMBER"),
					),
				},
			},
		},
		{
			caption: "productions are separated by semicolons and a trailing semicolon is allowed",
			src: `
stmt
    : expr SEMI
    ;
expr
    : NUMBER
    ;
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("stmt", alternative("expr", "SEMI")),
					production("expr", alternative("NUMBER")),
				},
			},
		},
		{
			caption: "an alternative can be empty",
			src:     `list : list ITEM |`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("list",
						alternative("list", "ITEM"),
						alternative(),
					),
				},
			},
		},
		{
			caption: "an alternative can end with a #prec directive",
			src:     `expr : MINUS expr #prec UMINUS | NUMBER`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("expr",
						withPrec(alternative("MINUS", "expr"), "UMINUS"),
						alternative("NUMBER"),
					),
				},
			},
		},
		{
			caption: "identifiers can contain symbols",
			src:     `expr' : $id <x>`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("expr'", alternative("$id", "<x>")),
				},
			},
		},
		{
			caption: "an empty source is invalid",
			src:     ``,
			synErr:  synErrNoProduction,
		},
		{
			caption: "a production needs a name",
			src:     `: NUMBER`,
			synErr:  synErrNoProductionName,
		},
		{
			caption: "a colon must follow a production name",
			src:     `expr NUMBER`,
			synErr:  synErrNoColon,
		},
		{
			caption: "productions must be separated by semicolons",
			src:     `expr : NUMBER : PLUS`,
			synErr:  synErrNoSemicolon,
		},
		{
			caption: "a directive needs a name",
			src:     `expr : MINUS expr #`,
			synErr:  synErrNoDirectiveName,
		},
		{
			caption: "only the #prec directive is available",
			src:     `expr : MINUS expr #ast UMINUS`,
			synErr:  synErrUnknownDirective,
		},
		{
			caption: "the #prec directive needs a name",
			src:     `expr : MINUS expr #prec`,
			synErr:  synErrNoPrecedenceName,
		},
		{
			caption: "the #prec directive must be at the end of an alternative",
			src:     `expr : MINUS #prec UMINUS expr`,
			synErr:  synErrElemAfterPrec,
		},
		{
			caption: "an alternative can have only one #prec directive",
			src:     `expr : MINUS expr #prec UMINUS #prec NEG`,
			synErr:  synErrDuplicatePrec,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if tt.synErr != nil {
				if !errors.Is(err, tt.synErr) {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.synErr, err)
				}
				if ast != nil {
					t.Fatalf("AST must be nil")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testRootNode(t, ast, tt.ast)
		})
	}
}

func TestParseRule(t *testing.T) {
	prod, err := ParseRule(`expr : expr PLUS expr | NUMBER`)
	if err != nil {
		t.Fatal(err)
	}
	if prod.LHS != "expr" || len(prod.RHS) != 2 {
		t.Fatalf("unexpected production: %+v", prod)
	}

	_, err = ParseRule(`expr : NUMBER; term : NUMBER`)
	if !errors.Is(err, synErrTooManyRules) {
		t.Fatalf("unexpected error; want: %v, got: %v", synErrTooManyRules, err)
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse(strings.NewReader("expr\n    : NUMBER\n    : PLUS"))
	var posErr *PositionedError
	if !errors.As(err, &posErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if posErr.Pos.Row != 3 || posErr.Pos.Col != 5 {
		t.Fatalf("unexpected position; want: 3:5, got: %v:%v", posErr.Pos.Row, posErr.Pos.Col)
	}
}

func testRootNode(t *testing.T, root, expected *RootNode) {
	t.Helper()
	if len(root.Productions) != len(expected.Productions) {
		t.Fatalf("unexpected length of productions; want: %v, got: %v", len(expected.Productions), len(root.Productions))
	}
	for i, prod := range root.Productions {
		testProductionNode(t, prod, expected.Productions[i])
	}
}

func testProductionNode(t *testing.T, prod, expected *ProductionNode) {
	t.Helper()
	if prod.LHS != expected.LHS {
		t.Fatalf("unexpected LHS; want: %v, got: %v", expected.LHS, prod.LHS)
	}
	if len(prod.RHS) != len(expected.RHS) {
		t.Fatalf("unexpected length of an RHS; want: %v, got: %v", len(expected.RHS), len(prod.RHS))
	}
	for i, alt := range prod.RHS {
		testAlternativeNode(t, alt, expected.RHS[i])
	}
}

func testAlternativeNode(t *testing.T, alt, expected *AlternativeNode) {
	t.Helper()
	if len(alt.Elements) != len(expected.Elements) {
		t.Fatalf("unexpected length of elements; want: %v, got: %v", len(expected.Elements), len(alt.Elements))
	}
	for i, elem := range alt.Elements {
		if elem != expected.Elements[i] {
			t.Fatalf("unexpected element; want: %v, got: %v", expected.Elements[i], elem)
		}
	}
	if alt.Prec != expected.Prec {
		t.Fatalf("unexpected precedence; want: %v, got: %v", expected.Prec, alt.Prec)
	}
}
