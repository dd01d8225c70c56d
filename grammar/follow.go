package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// followEntry holds terminal numbers ordered ascending. The end marker is terminal 0, so it needs no flag.
type followEntry struct {
	symbols *treeset.Set
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: treeset.NewWith(utils.IntComparator),
	}
}

func (e *followEntry) add(sym symbol) bool {
	num := sym.num().Int()
	if e.symbols.Contains(num) {
		return false
	}
	e.symbols.Add(num)
	return true
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for _, sym := range fst.terminals() {
			if e.add(sym) {
				changed = true
			}
		}
	}

	if flw != nil {
		for _, sym := range flw.terminals() {
			if e.add(sym) {
				changed = true
			}
		}
	}

	return changed
}

func (e *followEntry) terminals() []symbol {
	vs := e.symbols.Values()
	syms := make([]symbol, len(vs))
	for i, v := range vs {
		syms[i] = newTerminalSymbol(symbolNum(v.(int)))
	}
	return syms
}

type followSet struct {
	set map[symbol]*followEntry
}

func newFollow(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol]*followEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

func genFollowSet(prods *productionSet, first *firstSet, start symbol) (*followSet, error) {
	follow := newFollow(prods)

	for _, sym := range []symbol{symbolStart, start} {
		e, ok := follow.set[sym]
		if !ok {
			continue
		}
		e.add(symbolEOF)
	}

	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			for i, sym := range prod.rhs {
				if !sym.isNonTerminal() {
					continue
				}
				acc, err := follow.find(sym)
				if err != nil {
					return nil, err
				}
				fst, err := first.find(prod, i+1)
				if err != nil {
					return nil, err
				}
				if acc.merge(fst, nil) {
					more = true
				}
				if !fst.empty {
					continue
				}
				flw, err := follow.find(prod.lhs)
				if err != nil {
					return nil, err
				}
				if acc.merge(nil, flw) {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}

	return follow, nil
}
