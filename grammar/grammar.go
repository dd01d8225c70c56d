package grammar

import (
	"fmt"

	verr "github.com/nihei9/gply/error"
	"golang.org/x/exp/slices"
)

type Assoc string

const (
	AssocLeft     = Assoc("left")
	AssocRight    = Assoc("right")
	AssocNonAssoc = Assoc("nonassoc")
)

func (a Assoc) isValid() bool {
	switch a {
	case AssocLeft, AssocRight, AssocNonAssoc:
		return true
	}
	return false
}

type precedence struct {
	assoc Assoc
	level int
}

// precNil is the precedence of productions without a precedence-bearing terminal.
var precNil = precedence{
	assoc: AssocRight,
	level: 0,
}

// Grammar is the grammar model. Productions are added in declaration order, then SetStart fixes the start
// symbol and synthesizes the augmenting production S' → start. FIRST and FOLLOW are valid only after
// ComputeFirst and ComputeFollow respectively.
type Grammar struct {
	symTab    *symbolTable
	prods     *productionSet
	userTerms []symbol

	// termPrec is keyed by name because a precedence name doesn't have to be a terminal. A production can
	// borrow such a name by an explicit precedence.
	termPrec  map[string]precedence
	precOrder []string

	start     symbol
	finalized bool
	first     *firstSet
	follow    *followSet
}

// NewGrammar registers the terminals. The error terminal is always registered.
func NewGrammar(terminals []string) (*Grammar, error) {
	g := &Grammar{
		symTab:   newSymbolTable(),
		prods:    newProductionSet(),
		termPrec: map[string]precedence{},
		start:    symbolNil,
	}

	known := map[string]struct{}{}
	for _, t := range terminals {
		if _, ok := known[t]; ok {
			return nil, &verr.ConstructionError{
				Cause:  SemErrDuplicateTerminal,
				Detail: t,
			}
		}
		known[t] = struct{}{}

		if t == symbolNameError {
			continue
		}
		if isReservedName(t) {
			return nil, &verr.ConstructionError{
				Cause:  SemErrReservedName,
				Detail: t,
			}
		}
		sym, err := g.symTab.registerTerminalSymbol(t)
		if err != nil {
			return nil, err
		}
		g.userTerms = append(g.userTerms, sym)
	}
	g.userTerms = append(g.userTerms, symbolError)

	return g, nil
}

func isReservedName(name string) bool {
	switch name {
	case symbolNameEOF, symbolNameEmpty, symbolNameStart:
		return true
	}
	return false
}

// SetPrecedence gives a terminal (or a pseudo terminal only used as an explicit precedence) its associativity
// and level. Levels grow with priority.
func (g *Grammar) SetPrecedence(term string, assoc Assoc, level int) error {
	if _, ok := g.termPrec[term]; ok {
		return &verr.ConstructionError{
			Cause:  SemErrDuplicatePrecedence,
			Detail: term,
		}
	}
	if !assoc.isValid() {
		return &verr.ConstructionError{
			Cause:  SemErrUnknownAssociativity,
			Detail: fmt.Sprintf("%v; associativity must be one of 'left', 'right', and 'nonassoc'", assoc),
		}
	}
	if sym, ok := g.symTab.toSymbol(term); ok && sym.isNonTerminal() {
		return &verr.ConstructionError{
			Cause:  SemErrPrecedenceNotTerminal,
			Detail: term,
		}
	}

	g.termPrec[term] = precedence{
		assoc: assoc,
		level: level,
	}
	g.precOrder = append(g.precOrder, term)

	return nil
}

// AddProduction registers a production. When prec is empty, the production takes the precedence of the
// rightmost terminal of its RHS.
func (g *Grammar) AddProduction(name string, symbols []string, prec string) error {
	if g.finalized {
		return &verr.ConstructionError{
			Cause:  SemErrStartAlreadySet,
			Detail: fmt.Sprintf("cannot add a production '%v' after the start symbol is set", name),
		}
	}
	if sym, ok := g.symTab.toSymbol(name); ok && sym.isTerminal() {
		return &verr.ConstructionError{
			Cause:  SemErrRuleNameIsTerminal,
			Detail: name,
		}
	}
	if isReservedName(name) {
		return &verr.ConstructionError{
			Cause:  SemErrReservedName,
			Detail: name,
		}
	}
	if _, ok := g.termPrec[name]; ok {
		return &verr.ConstructionError{
			Cause:  SemErrPrecedenceNotTerminal,
			Detail: name,
		}
	}

	lhs, err := g.symTab.registerNonTerminalSymbol(name)
	if err != nil {
		return err
	}

	rhs := make([]symbol, len(symbols))
	for i, text := range symbols {
		if isReservedName(text) {
			return &verr.ConstructionError{
				Cause:  SemErrReservedName,
				Detail: fmt.Sprintf("%v in the production '%v'", text, name),
			}
		}
		sym, ok := g.symTab.toSymbol(text)
		if !ok {
			sym, err = g.symTab.registerNonTerminalSymbol(text)
			if err != nil {
				return err
			}
		}
		rhs[i] = sym
	}

	prod, err := newProduction(lhs, rhs)
	if err != nil {
		return err
	}

	if prec != "" {
		p, ok := g.termPrec[prec]
		if !ok {
			return &verr.ConstructionError{
				Cause:  SemErrUndefinedPrecedence,
				Detail: fmt.Sprintf("%v in the production '%v'", prec, name),
			}
		}
		prod.prec = p
	} else {
		for i := len(rhs) - 1; i >= 0; i-- {
			if !rhs[i].isTerminal() {
				continue
			}
			text, _ := g.symTab.toText(rhs[i])
			if p, ok := g.termPrec[text]; ok {
				prod.prec = p
			}
			break
		}
	}

	g.prods.append(prod)

	return nil
}

// SetStart takes the LHS of the first production as the start symbol and adds the augmenting production.
func (g *Grammar) SetStart() error {
	if g.finalized {
		return &verr.ConstructionError{
			Cause: SemErrStartAlreadySet,
		}
	}
	if g.prods.userProductionCount() == 0 {
		return &verr.ConstructionError{
			Cause: SemErrNoProduction,
		}
	}

	for _, sym := range g.symTab.nonTerminalSymbols() {
		if sym.isStart() {
			continue
		}
		if _, ok := g.prods.findByLHS(sym); ok {
			continue
		}
		text, _ := g.symTab.toText(sym)
		return &verr.ConstructionError{
			Cause:  SemErrUndefinedSym,
			Detail: text,
		}
	}

	start := g.prods.getAllProductions()[0].lhs
	p, err := newProduction(symbolStart, []symbol{start})
	if err != nil {
		return err
	}
	g.prods.append(p)
	g.start = start
	g.finalized = true

	tracer().Debugf("start symbol: %v, productions: %v", g.startText(), g.prods.count())

	return nil
}

func (g *Grammar) startText() string {
	if g.start.isNil() {
		return ""
	}
	text, _ := g.symTab.toText(g.start)
	return text
}

// Start returns the start symbol. It is empty until SetStart succeeds.
func (g *Grammar) Start() string {
	return g.startText()
}

// Terminals returns the declared terminals in declaration order, the error terminal last.
func (g *Grammar) Terminals() []string {
	texts := make([]string, len(g.userTerms))
	for i, sym := range g.userTerms {
		texts[i], _ = g.symTab.toText(sym)
	}
	return texts
}

// UnusedTerminals returns terminals never referenced by any production. The error terminal isn't reported.
func (g *Grammar) UnusedTerminals() []string {
	used := map[symbol]struct{}{}
	for _, prod := range g.prods.getAllProductions() {
		for _, sym := range prod.rhs {
			used[sym] = struct{}{}
		}
	}

	var unused []string
	for _, sym := range g.userTerms {
		if sym == symbolError {
			continue
		}
		if _, ok := used[sym]; ok {
			continue
		}
		text, _ := g.symTab.toText(sym)
		unused = append(unused, text)
	}
	return unused
}

// UnusedProductions returns non-terminals never referenced by any production. Call it after SetStart;
// before that, the start symbol is reported too.
func (g *Grammar) UnusedProductions() []string {
	used := map[symbol]struct{}{}
	for _, prod := range g.prods.getAllProductions() {
		for _, sym := range prod.rhs {
			used[sym] = struct{}{}
		}
	}

	var unused []string
	for _, sym := range g.symTab.nonTerminalSymbols() {
		if sym.isStart() {
			continue
		}
		if _, ok := used[sym]; ok {
			continue
		}
		text, _ := g.symTab.toText(sym)
		unused = append(unused, text)
	}
	return unused
}

func (g *Grammar) ComputeFirst() error {
	fst, err := genFirstSet(g.prods)
	if err != nil {
		return err
	}
	g.first = fst
	return nil
}

func (g *Grammar) ComputeFollow() error {
	if g.first == nil {
		err := g.ComputeFirst()
		if err != nil {
			return err
		}
	}
	flw, err := genFollowSet(g.prods, g.first, g.start)
	if err != nil {
		return err
	}
	g.follow = flw
	return nil
}

// First returns FIRST of a symbol as sorted names. `<empty>` is included when the symbol derives the empty
// string.
func (g *Grammar) First(name string) ([]string, error) {
	if g.first == nil {
		return nil, fmt.Errorf("FIRST is not computed yet")
	}
	sym, ok := g.symTab.toSymbol(name)
	if !ok {
		return nil, fmt.Errorf("symbol not found: %v", name)
	}
	if sym.isTerminal() {
		return []string{name}, nil
	}
	e := g.first.findBySymbol(sym)
	if e == nil {
		return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", name)
	}
	texts := g.texts(e.terminals())
	if e.empty {
		texts = append(texts, symbolNameEmpty)
	}
	slices.Sort(texts)
	return texts, nil
}

// Follow returns FOLLOW of a non-terminal as sorted names. `$end` stands for the end of input.
func (g *Grammar) Follow(name string) ([]string, error) {
	if g.follow == nil {
		return nil, fmt.Errorf("FOLLOW is not computed yet")
	}
	sym, ok := g.symTab.toSymbol(name)
	if !ok {
		return nil, fmt.Errorf("symbol not found: %v", name)
	}
	e, err := g.follow.find(sym)
	if err != nil {
		return nil, err
	}
	texts := g.texts(e.terminals())
	slices.Sort(texts)
	return texts, nil
}

func (g *Grammar) texts(syms []symbol) []string {
	texts := make([]string, 0, len(syms))
	for _, sym := range syms {
		text, ok := g.symTab.toText(sym)
		if !ok {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}
