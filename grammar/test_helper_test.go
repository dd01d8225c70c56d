package grammar

import (
	"strings"
	"testing"
)

type testPrec struct {
	assoc Assoc
	terms []string
}

// newTestGrammar builds a grammar from rules like `expr : expr add term #prec add`. Each rule holds exactly
// one alternative, and `a :` is an empty production. Precedence levels are given from the lowest.
func newTestGrammar(t *testing.T, terms []string, precs []testPrec, rules ...string) *Grammar {
	t.Helper()

	g, err := NewGrammar(terms)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range precs {
		for _, term := range p.terms {
			err := g.SetPrecedence(term, p.assoc, i+1)
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, rule := range rules {
		lhs, rhs, prec := parseTestRule(t, rule)
		err := g.AddProduction(lhs, rhs, prec)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = g.SetStart()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func parseTestRule(t *testing.T, rule string) (string, []string, string) {
	t.Helper()

	fields := strings.Fields(rule)
	if len(fields) < 2 || fields[1] != ":" {
		t.Fatalf("malformed rule: %v", rule)
	}
	var rhs []string
	var prec string
	for i := 2; i < len(fields); i++ {
		if fields[i] == "#prec" {
			if i+1 >= len(fields) {
				t.Fatalf("#prec needs a name: %v", rule)
			}
			prec = fields[i+1]
			break
		}
		rhs = append(rhs, fields[i])
	}
	return fields[0], rhs, prec
}

func genTestSymbol(t *testing.T, g *Grammar, text string) symbol {
	t.Helper()

	sym, ok := g.symTab.toSymbol(text)
	if !ok {
		t.Fatalf("symbol was not found: %v", text)
	}
	return sym
}

// findTestProduction looks up a production by a text like `expr → expr add term`.
func findTestProduction(t *testing.T, g *Grammar, text string) *production {
	t.Helper()

	for _, prod := range g.prods.getAllProductions() {
		if productionText(g, prod) == text {
			return prod
		}
	}
	t.Fatalf("production was not found: %v", text)
	return nil
}

func productionText(g *Grammar, prod *production) string {
	var b strings.Builder
	lhs, _ := g.symTab.toText(prod.lhs)
	b.WriteString(lhs)
	b.WriteString(" →")
	for _, sym := range prod.rhs {
		text, _ := g.symTab.toText(sym)
		b.WriteString(" ")
		b.WriteString(text)
	}
	return b.String()
}

// itemText renders an item like `expr → expr ・ add term`.
func itemText(g *Grammar, arena *itemArena, id lrItemID) string {
	item := arena.get(id)
	prod, _ := g.prods.findByNum(item.prod)

	var b strings.Builder
	lhs, _ := g.symTab.toText(prod.lhs)
	b.WriteString(lhs)
	b.WriteString(" →")
	for i, sym := range prod.rhs {
		if i == item.dot {
			b.WriteString(" ・")
		}
		text, _ := g.symTab.toText(sym)
		b.WriteString(" ")
		b.WriteString(text)
	}
	if item.dot == prod.rhsLen {
		b.WriteString(" ・")
	}
	return b.String()
}

func kernelTexts(g *Grammar, automaton *lr0Automaton, state stateNum) []string {
	var texts []string
	for _, id := range automaton.states[state].items {
		if !automaton.arena.get(id).kernel {
			continue
		}
		texts = append(texts, itemText(g, automaton.arena, id))
	}
	return texts
}

// findTestState returns the state whose kernel consists only of an item. When no such state exists, it
// returns the first state whose kernel contains the item.
func findTestState(t *testing.T, g *Grammar, automaton *lr0Automaton, item string) stateNum {
	t.Helper()

	for _, state := range automaton.states {
		kernel := kernelTexts(g, automaton, state.num)
		if len(kernel) == 1 && kernel[0] == item {
			return state.num
		}
	}
	for _, state := range automaton.states {
		for _, text := range kernelTexts(g, automaton, state.num) {
			if text == item {
				return state.num
			}
		}
	}
	t.Fatalf("state was not found: %v", item)
	return stateNumNil
}

func genTestAutomaton(t *testing.T, g *Grammar) *lr0Automaton {
	t.Helper()

	automaton, err := genLR0Automaton(g.prods)
	if err != nil {
		t.Fatalf("failed to create an LR(0) automaton: %v", err)
	}
	if automaton == nil {
		t.Fatal("genLR0Automaton returns nil without any error")
	}
	return automaton
}

var (
	exprTerms = []string{"add", "mul", "l_paren", "r_paren", "id"}
	exprRules = []string{
		"expr : expr add term",
		"expr : term",
		"term : term mul factor",
		"term : factor",
		"factor : l_paren expr r_paren",
		"factor : id",
	}

	assignTerms = []string{"eq", "ref", "id"}
	assignRules = []string{
		"s : l eq r",
		"s : r",
		"l : ref r",
		"l : id",
		"r : l",
	}
)
