package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func genTestTable(t *testing.T, g *Grammar) (*ParsingTable, *lrTableBuilder, *lr0Automaton) {
	t.Helper()

	automaton := genTestAutomaton(t, g)
	lookAheads, err := genLALR1LookAheads(automaton, g.prods, g.symTab.terminalCount())
	if err != nil {
		t.Fatal(err)
	}
	b := &lrTableBuilder{
		automaton:    automaton,
		prods:        g.prods,
		lookAheads:   lookAheads,
		termCount:    g.symTab.terminalCount(),
		nonTermCount: g.symTab.nonTerminalCount(),
		symTab:       g.symTab,
		termPrec:     g.termPrec,
	}
	tab, err := b.build()
	if err != nil {
		t.Fatal(err)
	}
	return tab, b, automaton
}

type expectedAction struct {
	sym   string
	ty    ActionType
	state string
	prod  string
}

func testAction(t *testing.T, g *Grammar, automaton *lr0Automaton, tab *ParsingTable, state stateNum, e expectedAction) {
	t.Helper()

	ty, next, prod := tab.getAction(state, genTestSymbol(t, g, e.sym).num())
	if ty != e.ty {
		t.Fatalf("unexpected action on %v in state %v; want: %v, got: %v", e.sym, state, e.ty, ty)
	}
	switch ty {
	case ActionTypeShift:
		expected := findTestState(t, g, automaton, e.state)
		if next != expected {
			t.Fatalf("unexpected next state on %v in state %v; want: %v, got: %v", e.sym, state, expected, next)
		}
	case ActionTypeReduce:
		expected := findTestProduction(t, g, e.prod).num
		if prod != expected {
			t.Fatalf("unexpected production on %v in state %v; want: %v, got: %v", e.sym, state, expected, prod)
		}
	}
}

func TestGenLALRParsingTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gply.grammar")
	defer teardown()

	g := newTestGrammar(t, assignTerms, nil, assignRules...)
	tab, b, automaton := genTestTable(t, g)

	if tab.InitialState != stateNumInitial {
		t.Fatalf("unexpected initial state: %v", tab.InitialState)
	}
	if len(b.conflicts) != 0 {
		t.Fatalf("an LALR(1) table of the grammar has no conflict: %v", len(b.conflicts))
	}

	tests := []struct {
		state string
		acts  []expectedAction
		goTos map[string]string
	}{
		{
			state: "S' → ・ s",
			acts: []expectedAction{
				{sym: "ref", ty: ActionTypeShift, state: "l → ref ・ r"},
				{sym: "id", ty: ActionTypeShift, state: "l → id ・"},
				{sym: "eq", ty: ActionTypeError},
				{sym: symbolNameEOF, ty: ActionTypeError},
			},
			goTos: map[string]string{
				"s": "S' → s ・",
				"l": "s → l ・ eq r",
				"r": "s → r ・",
			},
		},
		{
			state: "S' → s ・",
			acts: []expectedAction{
				{sym: symbolNameEOF, ty: ActionTypeAccept},
				{sym: "eq", ty: ActionTypeError},
			},
		},
		{
			state: "s → l ・ eq r",
			acts: []expectedAction{
				{sym: "eq", ty: ActionTypeShift, state: "s → l eq ・ r"},
				{sym: symbolNameEOF, ty: ActionTypeReduce, prod: "r → l"},
				{sym: "id", ty: ActionTypeError},
			},
		},
		{
			state: "l → id ・",
			acts: []expectedAction{
				{sym: "eq", ty: ActionTypeReduce, prod: "l → id"},
				{sym: symbolNameEOF, ty: ActionTypeReduce, prod: "l → id"},
				{sym: "ref", ty: ActionTypeError},
			},
		},
		{
			state: "s → l eq ・ r",
			acts: []expectedAction{
				{sym: "ref", ty: ActionTypeShift, state: "l → ref ・ r"},
				{sym: "id", ty: ActionTypeShift, state: "l → id ・"},
			},
			goTos: map[string]string{
				"l": "r → l ・",
				"r": "s → l eq r ・",
			},
		},
	}
	for _, tt := range tests {
		state := findTestState(t, g, automaton, tt.state)
		for _, act := range tt.acts {
			testAction(t, g, automaton, tab, state, act)
		}
		for _, nonTerm := range []string{"s", "l", "r"} {
			ty, next := tab.getGoTo(state, genTestSymbol(t, g, nonTerm).num())
			expected, ok := tt.goTos[nonTerm]
			if !ok {
				if ty != GoToTypeError {
					t.Fatalf("unexpected goto on %v in state %v: %v", nonTerm, tt.state, next)
				}
				continue
			}
			if ty != GoToTypeRegistered || next != findTestState(t, g, automaton, expected) {
				t.Fatalf("unexpected goto on %v in state %v; want: %v, got: %v %v", nonTerm, tt.state, expected, ty, next)
			}
		}
	}
}

func TestGenLALRParsingTable_DefaultReductions(t *testing.T) {
	g := newTestGrammar(t, assignTerms, nil, assignRules...)
	tab, _, automaton := genTestTable(t, g)

	tests := []struct {
		state string
		prod  string
	}{
		{state: "l → id ・", prod: "l → id"},
		{state: "l → ref r ・", prod: "l → ref r"},
		{state: "r → l ・", prod: "r → l"},
		{state: "s → r ・", prod: "s → r"},
		// The state shifts eq besides reducing.
		{state: "s → l ・ eq r"},
		// Accepting states never reduce by default.
		{state: "S' → s ・"},
		{state: "S' → ・ s"},
	}
	for _, tt := range tests {
		state := findTestState(t, g, automaton, tt.state)
		expected := productionNumStart
		if tt.prod != "" {
			expected = findTestProduction(t, g, tt.prod).num
		}
		if tab.defaultReductions[state] != expected {
			t.Fatalf("unexpected default reduction of %v; want: %v, got: %v", tt.state, expected, tab.defaultReductions[state])
		}
	}
}

func TestGenLALRParsingTable_ConflictResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gply.grammar")
	defer teardown()

	tests := []struct {
		caption    string
		terms      []string
		precs      []testPrec
		rules      []string
		state      string
		act        expectedAction
		resolvedBy conflictResolutionMethod
	}{
		{
			caption: "left associativity reduces",
			terms:   []string{"add", "id"},
			precs: []testPrec{
				{assoc: AssocLeft, terms: []string{"add"}},
			},
			rules: []string{
				"expr : expr add expr",
				"expr : id",
			},
			state:      "expr → expr add expr ・",
			act:        expectedAction{sym: "add", ty: ActionTypeReduce, prod: "expr → expr add expr"},
			resolvedBy: ResolvedByAssoc,
		},
		{
			caption: "right associativity shifts",
			terms:   []string{"pow", "id"},
			precs: []testPrec{
				{assoc: AssocRight, terms: []string{"pow"}},
			},
			rules: []string{
				"expr : expr pow expr",
				"expr : id",
			},
			state:      "expr → expr pow expr ・",
			act:        expectedAction{sym: "pow", ty: ActionTypeShift, state: "expr → expr pow ・ expr"},
			resolvedBy: ResolvedByAssoc,
		},
		{
			caption: "non-associativity makes an error entry",
			terms:   []string{"eq", "id"},
			precs: []testPrec{
				{assoc: AssocNonAssoc, terms: []string{"eq"}},
			},
			rules: []string{
				"expr : expr eq expr",
				"expr : id",
			},
			state:      "expr → expr eq expr ・",
			act:        expectedAction{sym: "eq", ty: ActionTypeError},
			resolvedBy: ResolvedByAssoc,
		},
		{
			caption: "a higher terminal shifts",
			terms:   []string{"add", "mul", "id"},
			precs: []testPrec{
				{assoc: AssocLeft, terms: []string{"add"}},
				{assoc: AssocLeft, terms: []string{"mul"}},
			},
			rules: []string{
				"expr : expr add expr",
				"expr : expr mul expr",
				"expr : id",
			},
			state:      "expr → expr add expr ・",
			act:        expectedAction{sym: "mul", ty: ActionTypeShift, state: "expr → expr mul ・ expr"},
			resolvedBy: ResolvedByPrec,
		},
		{
			caption: "a higher production reduces",
			terms:   []string{"add", "mul", "id"},
			precs: []testPrec{
				{assoc: AssocLeft, terms: []string{"add"}},
				{assoc: AssocLeft, terms: []string{"mul"}},
			},
			rules: []string{
				"expr : expr add expr",
				"expr : expr mul expr",
				"expr : id",
			},
			state:      "expr → expr mul expr ・",
			act:        expectedAction{sym: "add", ty: ActionTypeReduce, prod: "expr → expr mul expr"},
			resolvedBy: ResolvedByPrec,
		},
		{
			caption: "an explicit precedence beats the terminal",
			terms:   []string{"sub", "id"},
			precs: []testPrec{
				{assoc: AssocLeft, terms: []string{"sub"}},
				{assoc: AssocRight, terms: []string{"neg"}},
			},
			rules: []string{
				"expr : expr sub expr",
				"expr : sub expr #prec neg",
				"expr : id",
			},
			state:      "expr → sub expr ・",
			act:        expectedAction{sym: "sub", ty: ActionTypeReduce, prod: "expr → sub expr"},
			resolvedBy: ResolvedByPrec,
		},
		{
			caption: "a terminal without precedence loses to a production with precedence",
			terms:   []string{"add", "cat", "id"},
			precs: []testPrec{
				{assoc: AssocLeft, terms: []string{"add"}},
			},
			rules: []string{
				"expr : expr add expr",
				"expr : expr cat expr",
				"expr : id",
			},
			state:      "expr → expr add expr ・",
			act:        expectedAction{sym: "cat", ty: ActionTypeReduce, prod: "expr → expr add expr"},
			resolvedBy: ResolvedByPrec,
		},
		{
			caption: "a production without precedence shifts",
			terms:   []string{"add", "id"},
			rules: []string{
				"expr : expr add expr",
				"expr : id",
			},
			state:      "expr → expr add expr ・",
			act:        expectedAction{sym: "add", ty: ActionTypeShift, state: "expr → expr add ・ expr"},
			resolvedBy: ResolvedByShift,
		},
		{
			caption: "the production declared first wins a reduce/reduce conflict",
			terms:   []string{"id"},
			rules: []string{
				"s : a",
				"s : b",
				"b : id",
				"a : id",
			},
			state:      "b → id ・",
			act:        expectedAction{sym: symbolNameEOF, ty: ActionTypeReduce, prod: "b → id"},
			resolvedBy: ResolvedByProdOrder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := newTestGrammar(t, tt.terms, tt.precs, tt.rules...)
			tab, b, automaton := genTestTable(t, g)
			state := findTestState(t, g, automaton, tt.state)
			testAction(t, g, automaton, tab, state, tt.act)

			sym := genTestSymbol(t, g, tt.act.sym)
			var resolvedBy conflictResolutionMethod
			for _, con := range b.conflicts {
				switch c := con.(type) {
				case *shiftReduceConflict:
					if c.state == state && c.sym == sym {
						resolvedBy = c.resolvedBy
					}
				case *reduceReduceConflict:
					if c.state == state && c.sym == sym {
						resolvedBy = c.resolvedBy
						if c.prodNum1 >= c.prodNum2 {
							t.Fatalf("productions of a reduce/reduce conflict are ordered: %v, %v", c.prodNum1, c.prodNum2)
						}
					}
				}
			}
			if resolvedBy != tt.resolvedBy {
				t.Fatalf("unexpected resolution; want: %v, got: %v", tt.resolvedBy, resolvedBy)
			}
		})
	}
}

func TestGenLALRParsingTable_NonAssoc(t *testing.T) {
	g := newTestGrammar(t, []string{"eq", "add", "id"},
		[]testPrec{
			{assoc: AssocNonAssoc, terms: []string{"eq"}},
			{assoc: AssocLeft, terms: []string{"add"}},
		},
		"expr : expr eq expr",
		"expr : expr add expr",
		"expr : id",
	)
	tab, _, automaton := genTestTable(t, g)

	state := findTestState(t, g, automaton, "expr → expr eq expr ・")
	testAction(t, g, automaton, tab, state, expectedAction{sym: "eq", ty: ActionTypeError})
	testAction(t, g, automaton, tab, state, expectedAction{sym: "add", ty: ActionTypeShift, state: "expr → expr add ・ expr"})
	testAction(t, g, automaton, tab, state, expectedAction{sym: symbolNameEOF, ty: ActionTypeReduce, prod: "expr → expr eq expr"})

	// An error entry made by non-associativity must stay an error, so the state has no default reduction.
	if tab.defaultReductions[state] != productionNumStart {
		t.Fatalf("unexpected default reduction: %v", tab.defaultReductions[state])
	}
}

func TestActionEntry(t *testing.T) {
	tests := []struct {
		entry actionEntry
		ty    ActionType
		state stateNum
		prod  productionNum
	}{
		{entry: actionEntryEmpty, ty: ActionTypeError, state: stateNumNil, prod: productionNumStart},
		{entry: newShiftActionEntry(3), ty: ActionTypeShift, state: 3, prod: productionNumStart},
		{entry: newReduceActionEntry(2), ty: ActionTypeReduce, state: stateNumNil, prod: 2},
		{entry: newReduceActionEntry(productionNumStart), ty: ActionTypeAccept, state: stateNumNil, prod: productionNumStart},
	}
	for _, tt := range tests {
		ty, state, prod := tt.entry.describe()
		if ty != tt.ty || state != tt.state || prod != tt.prod {
			t.Fatalf("unexpected description of %v; want: %v %v %v, got: %v %v %v", tt.entry, tt.ty, tt.state, tt.prod, ty, state, prod)
		}
	}

	ty, state := newGoToEntry(5).describe()
	if ty != GoToTypeRegistered || state != 5 {
		t.Fatalf("unexpected goto entry: %v %v", ty, state)
	}
	ty, state = goToEntryEmpty.describe()
	if ty != GoToTypeError || state != stateNumNil {
		t.Fatalf("unexpected goto entry: %v %v", ty, state)
	}
}
