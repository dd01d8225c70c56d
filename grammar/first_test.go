package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/exp/slices"
)

type first struct {
	symbol string
	first  []string
}

func TestGenFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gply.grammar")
	defer teardown()

	tests := []struct {
		caption string
		terms   []string
		rules   []string
		first   []first
	}{
		{
			caption: "productions contain only non-empty productions",
			terms:   exprTerms,
			rules:   exprRules,
			first: []first{
				{symbol: symbolNameStart, first: []string{"id", "l_paren"}},
				{symbol: "expr", first: []string{"id", "l_paren"}},
				{symbol: "term", first: []string{"id", "l_paren"}},
				{symbol: "factor", first: []string{"id", "l_paren"}},
				{symbol: "add", first: []string{"add"}},
			},
		},
		{
			caption: "productions contain empty productions",
			terms:   []string{"x", "y"},
			rules: []string{
				"s : foo bar",
				"foo : x",
				"foo :",
				"bar : y",
				"bar :",
			},
			first: []first{
				{symbol: "s", first: []string{symbolNameEmpty, "x", "y"}},
				{symbol: "foo", first: []string{symbolNameEmpty, "x"}},
				{symbol: "bar", first: []string{symbolNameEmpty, "y"}},
			},
		},
		{
			caption: "a production contains only an empty alternative",
			terms:   []string{"x"},
			rules: []string{
				"s : foo x",
				"foo :",
			},
			first: []first{
				{symbol: "s", first: []string{"x"}},
				{symbol: "foo", first: []string{symbolNameEmpty}},
			},
		},
		{
			caption: "a left-recursive production that can be empty",
			terms:   []string{"x"},
			rules: []string{
				"s : s x",
				"s :",
			},
			first: []first{
				{symbol: "s", first: []string{symbolNameEmpty, "x"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := newTestGrammar(t, tt.terms, nil, tt.rules...)
			err := g.ComputeFirst()
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range tt.first {
				actual, err := g.First(e.symbol)
				if err != nil {
					t.Fatal(err)
				}
				if !slices.Equal(actual, e.first) {
					t.Fatalf("unexpected FIRST of %v; want: %v, got: %v", e.symbol, e.first, actual)
				}
			}
		})
	}
}

func TestFirstSet_Find(t *testing.T) {
	g := newTestGrammar(t, []string{"x", "y"}, nil,
		"s : foo bar",
		"foo : x",
		"foo :",
		"bar : y",
		"bar :",
	)
	fst, err := genFirstSet(g.prods)
	if err != nil {
		t.Fatal(err)
	}

	prod := findTestProduction(t, g, "s → foo bar")
	tests := []struct {
		head  int
		terms []string
		empty bool
	}{
		{head: 0, terms: []string{"x", "y"}, empty: true},
		{head: 1, terms: []string{"y"}, empty: true},
		{head: 2, terms: nil, empty: true},
		// A head beyond the RHS is the empty sequence.
		{head: 3, terms: nil, empty: true},
	}
	for _, tt := range tests {
		e, err := fst.find(prod, tt.head)
		if err != nil {
			t.Fatal(err)
		}
		actual := g.texts(e.terminals())
		if len(actual) != len(tt.terms) || (len(actual) > 0 && !slices.Equal(actual, tt.terms)) {
			t.Fatalf("unexpected FIRST from %v; want: %v, got: %v", tt.head, tt.terms, actual)
		}
		if e.empty != tt.empty {
			t.Fatalf("unexpected empty flag from %v; want: %v, got: %v", tt.head, tt.empty, e.empty)
		}
	}

	e, err := fst.findBySequence([]symbol{genTestSymbol(t, g, "bar"), genTestSymbol(t, g, "x")})
	if err != nil {
		t.Fatal(err)
	}
	if actual := g.texts(e.terminals()); !slices.Equal(actual, []string{"x", "y"}) || e.empty {
		t.Fatalf("unexpected FIRST of `bar x`: %v (empty: %v)", actual, e.empty)
	}
}

func TestGrammar_First_Error(t *testing.T) {
	g := newTestGrammar(t, exprTerms, nil, exprRules...)
	_, err := g.First("expr")
	if err == nil {
		t.Fatal("FIRST must not be available before it is computed")
	}
	err = g.ComputeFirst()
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.First("unknown")
	if err == nil {
		t.Fatal("an unknown symbol must be an error")
	}
}

func TestGenFirst_FixedPoint(t *testing.T) {
	tests := []struct {
		caption string
		terms   []string
		rules   []string
	}{
		{
			caption: "an expression grammar",
			terms:   exprTerms,
			rules:   exprRules,
		},
		{
			caption: "mutually recursive symbols that can be empty",
			terms:   []string{"x", "y"},
			rules: []string{
				"s : s x",
				"s : a y",
				"a : a s",
				"a :",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := newTestGrammar(t, tt.terms, nil, tt.rules...)
			err := g.ComputeFirst()
			if err != nil {
				t.Fatal(err)
			}

			// No production adds anything to FIRST once it reaches the fixed point.
			cc := &firstComContext{
				first: g.first,
			}
			for _, prod := range g.prods.getAllProductions() {
				changed, err := genProdFirstEntry(cc, g.first.findBySymbol(prod.lhs), prod)
				if err != nil {
					t.Fatal(err)
				}
				if changed {
					t.Fatalf("FIRST grew after the fixed point: %v", productionText(g, prod))
				}
			}

			var names []string
			before := map[string][]string{}
			for _, prod := range g.prods.getAllProductions() {
				name, _ := g.symTab.toText(prod.lhs)
				if _, ok := before[name]; ok {
					continue
				}
				fst, err := g.First(name)
				if err != nil {
					t.Fatal(err)
				}
				names = append(names, name)
				before[name] = fst
			}
			err = g.ComputeFirst()
			if err != nil {
				t.Fatal(err)
			}
			for _, name := range names {
				fst, err := g.First(name)
				if err != nil {
					t.Fatal(err)
				}
				if !slices.Equal(fst, before[name]) {
					t.Fatalf("FIRST of %v changed by a recomputation; before: %v, after: %v", name, before[name], fst)
				}
			}
		})
	}
}
