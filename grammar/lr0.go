package grammar

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type stateNum int

const (
	stateNumInitial = stateNum(0)
	stateNumNil     = stateNum(-1)
)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return fmt.Sprint(int(n))
}

type lrState struct {
	num stateNum

	// items is the closure, kernel items first, in the order the closure added them.
	items []lrItemID

	// nextSyms holds every symbol that follows a dot, in the order of first appearance in items.
	nextSyms []symbol
	next     map[symbol]stateNum
}

type gotoKey struct {
	state stateNum
	sym   symbol
}

type lr0Automaton struct {
	arena  *itemArena
	prods  *productionSet
	states []*lrState

	// key2State deduplicates states by the contents of their item sets.
	key2State map[string]stateNum
	gotoCache map[gotoKey]stateNum

	// addedGen[p] == gen means the current closure call already added the initial item of the production p.
	addedGen []int
	gen      int
}

func genLR0Automaton(prods *productionSet) (*lr0Automaton, error) {
	arena, err := newItemArena(prods)
	if err != nil {
		return nil, err
	}

	automaton := &lr0Automaton{
		arena:     arena,
		prods:     prods,
		key2State: map[string]stateNum{},
		gotoCache: map[gotoKey]stateNum{},
		addedGen:  make([]int, prods.count()),
	}

	automaton.register(automaton.closure([]lrItemID{arena.item(productionNumStart, 0)}))

	// The loop visits states appended while it runs; that is the worklist.
	for i := 0; i < len(automaton.states); i++ {
		state := automaton.states[i]
		for _, sym := range state.nextSyms {
			_, err := automaton.goTo(state.num, sym)
			if err != nil {
				return nil, err
			}
		}
	}

	tracer().Debugf("LR(0) automaton: %v states, %v items", len(automaton.states), arena.count())

	return automaton, nil
}

func (a *lr0Automaton) closure(kernel []lrItemID) []lrItemID {
	a.gen++
	items := append([]lrItemID{}, kernel...)
	for i := 0; i < len(items); i++ {
		item := a.arena.get(items[i])
		if !item.dottedSymbol.isNonTerminal() {
			continue
		}

		ps, _ := a.prods.findByLHS(item.dottedSymbol)
		for _, prod := range ps {
			if a.addedGen[prod.num] == a.gen {
				continue
			}
			a.addedGen[prod.num] = a.gen
			items = append(items, a.arena.item(prod.num, 0))
		}
	}
	return items
}

// register returns the state having the same items, or adds a new state numbered in discovery order.
func (a *lr0Automaton) register(items []lrItemID) stateNum {
	sorted := append([]lrItemID{}, items...)
	slices.Sort(sorted)
	key := itemSetKey(sorted)
	if num, ok := a.key2State[key]; ok {
		return num
	}

	state := &lrState{
		num:   stateNum(len(a.states)),
		items: items,
		next:  map[symbol]stateNum{},
	}
	known := map[symbol]struct{}{}
	for _, id := range items {
		sym := a.arena.get(id).dottedSymbol
		if sym.isNil() {
			continue
		}
		if _, ok := known[sym]; ok {
			continue
		}
		known[sym] = struct{}{}
		state.nextSyms = append(state.nextSyms, sym)
	}

	a.states = append(a.states, state)
	a.key2State[key] = state.num
	return state.num
}

// goTo returns the state reached from a state by a symbol, or stateNumNil when no item of the state has
// the symbol after its dot.
func (a *lr0Automaton) goTo(from stateNum, sym symbol) (stateNum, error) {
	if from < 0 || from.Int() >= len(a.states) {
		return stateNumNil, fmt.Errorf("state not found: %v", from)
	}

	key := gotoKey{
		state: from,
		sym:   sym,
	}
	if next, ok := a.gotoCache[key]; ok {
		return next, nil
	}

	var kernel []lrItemID
	for _, id := range a.states[from].items {
		item := a.arena.get(id)
		if item.dottedSymbol != sym {
			continue
		}
		kernel = append(kernel, item.next)
	}
	if len(kernel) == 0 {
		a.gotoCache[key] = stateNumNil
		return stateNumNil, nil
	}

	next := a.register(a.closure(kernel))
	a.gotoCache[key] = next
	a.states[from].next[sym] = next
	return next, nil
}

// transition returns a transition computed while the automaton was built.
func (a *lr0Automaton) transition(from stateNum, sym symbol) (stateNum, error) {
	next, ok := a.states[from].next[sym]
	if !ok {
		return stateNumNil, fmt.Errorf("transition not found; state: %v, symbol: %v", from, sym)
	}
	return next, nil
}
