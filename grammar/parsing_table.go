package grammar

import (
	"fmt"

	verr "github.com/nihei9/gply/error"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry encodes an action.
//
//   - 0 is an error entry.
//   - -n shifts to the state n.
//   - n (> 0) reduces by the production n-1. Reducing the augmenting production means accepting.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod + 1)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	switch {
	case e == actionEntryEmpty:
		return ActionTypeError, stateNumNil, productionNumStart
	case e < 0:
		return ActionTypeShift, stateNum(e * -1), productionNumStart
	case productionNum(e-1) == productionNumStart:
		return ActionTypeAccept, stateNumNil, productionNumStart
	}
	return ActionTypeReduce, stateNumNil, productionNum(e - 1)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumNil
	}
	return GoToTypeRegistered, stateNum(e)
}

type conflictResolutionMethod int

func (m conflictResolutionMethod) Int() int {
	return int(m)
}

const (
	ResolvedByPrec      conflictResolutionMethod = 1
	ResolvedByAssoc     conflictResolutionMethod = 2
	ResolvedByShift     conflictResolutionMethod = 3
	ResolvedByProdOrder conflictResolutionMethod = 4
)

type conflict interface {
	conflict()
}

type shiftReduceConflict struct {
	state      stateNum
	sym        symbol
	nextState  stateNum
	prodNum    productionNum
	resolvedBy conflictResolutionMethod
}

func (c *shiftReduceConflict) conflict() {
}

type reduceReduceConflict struct {
	state      stateNum
	sym        symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy conflictResolutionMethod
}

func (c *reduceReduceConflict) conflict() {
}

var (
	_ conflict = &shiftReduceConflict{}
	_ conflict = &reduceReduceConflict{}
)

type ParsingTable struct {
	actionTable       []actionEntry
	goToTable         []goToEntry
	defaultReductions []productionNum
	stateCount        int
	terminalCount     int
	nonTerminalCount  int

	InitialState stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type actionPos struct {
	state stateNum
	sym   symbol
}

type lrTableBuilder struct {
	automaton    *lr0Automaton
	prods        *productionSet
	lookAheads   lookAheadSet
	termCount    int
	nonTermCount int
	symTab       *symbolTable
	termPrec     map[string]precedence

	conflicts []conflict

	// errorEntries holds entries a non-associative terminal turned into errors. Later actions never
	// overwrite them.
	errorEntries map[actionPos]struct{}
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	states := b.automaton.states
	ptab := &ParsingTable{
		actionTable:       make([]actionEntry, len(states)*b.termCount),
		goToTable:         make([]goToEntry, len(states)*b.nonTermCount),
		defaultReductions: make([]productionNum, len(states)),
		stateCount:        len(states),
		terminalCount:     b.termCount,
		nonTerminalCount:  b.nonTermCount,
		InitialState:      stateNumInitial,
	}
	b.errorEntries = map[actionPos]struct{}{}

	for _, state := range states {
		for _, sym := range state.nextSyms {
			next, err := b.automaton.transition(state.num, sym)
			if err != nil {
				return nil, err
			}
			if sym.isTerminal() {
				err := b.writeShiftAction(ptab, state.num, sym, next)
				if err != nil {
					return nil, err
				}
			} else {
				ptab.writeGoTo(state.num, sym, next)
			}
		}

		for _, id := range state.items {
			item := b.automaton.arena.get(id)
			if !item.reducible {
				continue
			}

			if item.prod == productionNumStart {
				err := b.writeAccept(ptab, state.num)
				if err != nil {
					return nil, err
				}
				continue
			}

			la := b.lookAheads.find(state.num, item.prod)
			if la == nil {
				continue
			}
			for a, ok := la.NextSet(0); ok; a, ok = la.NextSet(a + 1) {
				err := b.writeReduceAction(ptab, state.num, newTerminalSymbol(symbolNum(a)), item.prod)
				if err != nil {
					return nil, err
				}
			}
		}

		b.fillDefaultReduction(ptab, state.num)
	}

	return ptab, nil
}

func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol, nextState stateNum) error {
	if _, ok := b.errorEntries[actionPos{state: state, sym: sym}]; ok {
		return nil
	}

	act := tab.readAction(state.Int(), sym.num().Int())
	if !act.isEmpty() {
		ty, s, p := act.describe()
		switch ty {
		case ActionTypeShift:
			if s == nextState {
				return nil
			}
			return &verr.ConstructionError{
				Cause:  SemErrShiftShiftConflict,
				Detail: fmt.Sprintf("state: %v, symbol: %v, next states: %v and %v", state, b.symbolText(sym), s, nextState),
			}
		case ActionTypeReduce:
			b.resolveSRConflict(tab, state, sym, nextState, p)
			return nil
		case ActionTypeAccept:
			return &verr.ConstructionError{
				Cause:  SemErrUnknownConflict,
				Detail: fmt.Sprintf("shift meets accept; state: %v, symbol: %v", state, b.symbolText(sym)),
			}
		}
	}
	tab.writeAction(state.Int(), sym.num().Int(), newShiftActionEntry(nextState))
	return nil
}

// writeReduceAction writes a reduce action. A shift/reduce conflict is resolved by precedence and a
// reduce/reduce conflict by production order; productions declared earlier win.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol, prod productionNum) error {
	if _, ok := b.errorEntries[actionPos{state: state, sym: sym}]; ok {
		return nil
	}

	act := tab.readAction(state.Int(), sym.num().Int())
	if !act.isEmpty() {
		ty, s, p := act.describe()
		switch ty {
		case ActionTypeReduce:
			if p == prod {
				return nil
			}

			b.conflicts = append(b.conflicts, &reduceReduceConflict{
				state:      state,
				sym:        sym,
				prodNum1:   min(p, prod),
				prodNum2:   max(p, prod),
				resolvedBy: ResolvedByProdOrder,
			})
			tracer().Infof("reduce/reduce conflict; state: %v, symbol: %v, productions: %v and %v", state, b.symbolText(sym), p, prod)
			if prod < p {
				tab.writeAction(state.Int(), sym.num().Int(), newReduceActionEntry(prod))
			}
		case ActionTypeShift:
			b.resolveSRConflict(tab, state, sym, s, prod)
		case ActionTypeAccept:
			return &verr.ConstructionError{
				Cause:  SemErrUnknownConflict,
				Detail: fmt.Sprintf("reduce meets accept; state: %v, symbol: %v, production: %v", state, b.symbolText(sym), prod),
			}
		}
		return nil
	}
	tab.writeAction(state.Int(), sym.num().Int(), newReduceActionEntry(prod))
	return nil
}

func (b *lrTableBuilder) writeAccept(tab *ParsingTable, state stateNum) error {
	act := tab.readAction(state.Int(), symbolNumEOF.Int())
	if !act.isEmpty() {
		ty, _, _ := act.describe()
		if ty == ActionTypeAccept {
			return nil
		}
		return &verr.ConstructionError{
			Cause:  SemErrUnknownConflict,
			Detail: fmt.Sprintf("accept meets %v; state: %v", ty, state),
		}
	}
	tab.writeAction(state.Int(), symbolNumEOF.Int(), newReduceActionEntry(productionNumStart))
	return nil
}

// resolveSRConflict compares the precedence of the lookahead terminal with the one of the production.
//
//   - When the production has no precedence, the shift wins and the conflict is reported.
//   - A higher level wins.
//   - On the same level, left associativity reduces, right associativity shifts, and non-associativity makes
//     the entry an error.
func (b *lrTableBuilder) resolveSRConflict(tab *ParsingTable, state stateNum, sym symbol, nextState stateNum, prod productionNum) {
	p, _ := b.prods.findByNum(prod)
	symPrec := b.terminalPrecedence(sym)
	prodPrec := p.prec

	c := &shiftReduceConflict{
		state:     state,
		sym:       sym,
		nextState: nextState,
		prodNum:   prod,
	}
	b.conflicts = append(b.conflicts, c)

	var act actionEntry
	switch {
	case prodPrec.level == 0:
		act = newShiftActionEntry(nextState)
		c.resolvedBy = ResolvedByShift
		tracer().Infof("shift/reduce conflict; state: %v, symbol: %v, production: %v; resolved as shift", state, b.symbolText(sym), prod)
	case symPrec.level < prodPrec.level:
		act = newReduceActionEntry(prod)
		c.resolvedBy = ResolvedByPrec
	case symPrec.level > prodPrec.level:
		act = newShiftActionEntry(nextState)
		c.resolvedBy = ResolvedByPrec
	case prodPrec.assoc == AssocLeft:
		act = newReduceActionEntry(prod)
		c.resolvedBy = ResolvedByAssoc
	case prodPrec.assoc == AssocRight:
		act = newShiftActionEntry(nextState)
		c.resolvedBy = ResolvedByAssoc
	default:
		act = actionEntryEmpty
		c.resolvedBy = ResolvedByAssoc
		b.errorEntries[actionPos{state: state, sym: sym}] = struct{}{}
	}
	tab.writeAction(state.Int(), sym.num().Int(), act)
}

// fillDefaultReduction marks a state whose entries all reduce by the same production. Accepting states and
// states having an error entry made by non-associativity never get a default reduction.
func (b *lrTableBuilder) fillDefaultReduction(tab *ParsingTable, state stateNum) {
	for pos := range b.errorEntries {
		if pos.state == state {
			return
		}
	}

	prod := productionNumStart
	for col := 0; col < b.termCount; col++ {
		act := tab.readAction(state.Int(), col)
		if act.isEmpty() {
			continue
		}
		ty, _, p := act.describe()
		if ty != ActionTypeReduce {
			return
		}
		if prod != productionNumStart && p != prod {
			return
		}
		prod = p
	}
	tab.defaultReductions[state] = prod
}

func (b *lrTableBuilder) terminalPrecedence(sym symbol) precedence {
	text, ok := b.symTab.toText(sym)
	if !ok {
		return precNil
	}
	prec, ok := b.termPrec[text]
	if !ok {
		return precNil
	}
	return prec
}

func (b *lrTableBuilder) symbolText(sym symbol) string {
	text, ok := b.symTab.toText(sym)
	if !ok {
		return sym.String()
	}
	return text
}
