package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenSLR1LookAheads(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gply.grammar")
	defer teardown()

	tests := []struct {
		caption    string
		terms      []string
		rules      []string
		lookAheads []expectedLookAhead
	}{
		{
			caption: "lookaheads are FOLLOW of the LHS",
			terms:   assignTerms,
			rules:   assignRules,
			lookAheads: []expectedLookAhead{
				// LALR(1) gives only $end here; FOLLOW(r) also contains eq.
				{state: "s → l ・ eq r", prod: "r → l", lookAheads: []string{symbolNameEOF, "eq"}},
				{state: "s → r ・", prod: "s → r", lookAheads: []string{symbolNameEOF}},
				{state: "l → id ・", prod: "l → id", lookAheads: []string{symbolNameEOF, "eq"}},
			},
		},
		{
			caption: "an expression grammar",
			terms:   exprTerms,
			rules:   exprRules,
			lookAheads: []expectedLookAhead{
				{state: "expr → term ・", prod: "expr → term", lookAheads: []string{symbolNameEOF, "add", "r_paren"}},
				{state: "factor → id ・", prod: "factor → id", lookAheads: []string{symbolNameEOF, "add", "mul", "r_paren"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := newTestGrammar(t, tt.terms, nil, tt.rules...)
			err := g.ComputeFollow()
			if err != nil {
				t.Fatal(err)
			}
			automaton := genTestAutomaton(t, g)
			lookAheads, err := genSLR1LookAheads(automaton, g.prods, g.follow, g.symTab.terminalCount())
			if err != nil {
				t.Fatal(err)
			}
			testLookAheads(t, g, automaton, lookAheads, tt.lookAheads)

			// The augmenting production is accepted, not reduced, so it has no lookaheads.
			for _, state := range automaton.states {
				if la := lookAheads.find(state.num, productionNumStart); la != nil {
					t.Fatalf("the augmenting production must not have lookaheads: state: %v", state.num)
				}
			}
		})
	}
}

func TestCompile_SLRConflict(t *testing.T) {
	g := newTestGrammar(t, assignTerms, nil, assignRules...)

	cg, _, err := Compile(g, Class("slr"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cg.Table.SRConflicts) != 1 {
		t.Fatalf("an SLR(1) table of the grammar has one shift/reduce conflict: %v", len(cg.Table.SRConflicts))
	}
	c := cg.Table.SRConflicts[0]
	eq := genTestSymbol(t, g, "eq").num().Int()
	if c.Symbol != eq || c.Production != findTestProduction(t, g, "r → l").num.Int() {
		t.Fatalf("unexpected conflict: %+v", c)
	}

	cg, _, err = Compile(g, Class("lalr"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cg.Table.SRConflicts) != 0 || len(cg.Table.RRConflicts) != 0 {
		t.Fatalf("an LALR(1) table of the grammar has no conflict: %v, %v", cg.Table.SRConflicts, cg.Table.RRConflicts)
	}
}
