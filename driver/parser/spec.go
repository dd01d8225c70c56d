package parser

import (
	"github.com/nihei9/gply/compressor"
	spec "github.com/nihei9/gply/spec/grammar"
)

// Grammar is the read-only view of a parsing table a parser runs on.
type Grammar interface {
	// InitialState returns the state a parser starts in.
	InitialState() int

	// StartProduction returns the number of the augmenting production. Reducing by it means accepting.
	StartProduction() int

	// Action returns an action entry: 0 is an error, -n shifts to the state n and n (> 0) reduces by the
	// production n-1.
	Action(state int, terminal int) int

	// GoTo returns the next state, or 0 when no transition exists.
	GoTo(state int, lhs int) int

	// DefaultReduction returns the production a state reduces by without a lookahead, or 0.
	DefaultReduction(state int) int

	AlternativeSymbolCount(prod int) int
	LHS(prod int) int
	ProductionCount() int
	TerminalCount() int
	Terminal(terminal int) string

	// TerminalNum returns the number of a terminal named `name`.
	TerminalNum(name string) (int, bool)

	NonTerminal(nonTerminal int) string
	EOF() int
}

var _ Grammar = &grammarImpl{}

type grammarImpl struct {
	g        *spec.CompiledGrammar
	termNums map[string]int
}

// NewGrammar returns a Grammar backed by a compiled grammar. When the grammar carries compressed tables, they
// are used instead of the dense ones.
func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	termNums := make(map[string]int, len(g.Table.Terminals))
	for num, name := range g.Table.Terminals {
		termNums[name] = num
	}
	return &grammarImpl{
		g:        g,
		termNums: termNums,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.Table.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.Table.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	if g.g.Table.CompressedAction != nil {
		act, err := compressor.Lookup(g.g.Table.CompressedAction, state, terminal)
		if err != nil {
			return 0
		}
		return act
	}
	return g.g.Table.Action[state*g.g.Table.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	if g.g.Table.CompressedGoTo != nil {
		next, err := compressor.Lookup(g.g.Table.CompressedGoTo, state, lhs)
		if err != nil {
			return 0
		}
		return next
	}
	return g.g.Table.GoTo[state*g.g.Table.NonTerminalCount+lhs]
}

func (g *grammarImpl) DefaultReduction(state int) int {
	return g.g.Table.DefaultReductions[state]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.Table.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.Table.LHSSymbols[prod]
}

func (g *grammarImpl) ProductionCount() int {
	return len(g.g.Table.LHSSymbols)
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.Table.TerminalCount
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.Table.Terminals[terminal]
}

func (g *grammarImpl) TerminalNum(name string) (int, bool) {
	num, ok := g.termNums[name]
	return num, ok
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.Table.NonTerminals[nonTerminal]
}

func (g *grammarImpl) EOF() int {
	return g.g.Table.EOFSymbol
}
