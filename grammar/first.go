package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// firstEntry holds terminal numbers ordered ascending, plus a flag telling whether the empty string is derivable.
type firstEntry struct {
	symbols *treeset.Set
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: treeset.NewWith(utils.IntComparator),
		empty:   false,
	}
}

func (e *firstEntry) add(sym symbol) bool {
	num := sym.num().Int()
	if e.symbols.Contains(num) {
		return false
	}
	e.symbols.Add(num)
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for _, v := range target.symbols.Values() {
		added := e.add(newTerminalSymbol(symbolNum(v.(int))))
		if added {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) terminals() []symbol {
	vs := e.symbols.Values()
	syms := make([]symbol, len(vs))
	for i, v := range vs {
		syms[i] = newTerminalSymbol(symbolNum(v.(int)))
	}
	return syms
}

type firstSet struct {
	set map[symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol]*firstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

// find returns FIRST of the RHS of prod from the head position.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	return fst.findBySequence(prod.rhs[min(head, prod.rhsLen):])
}

func (fst *firstSet) findBySequence(seq []symbol) (*firstEntry, error) {
	entry := newFirstEntry()
	for _, sym := range seq {
		if sym.isTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		entry.mergeExceptEmpty(e)
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol) *firstEntry {
	return fst.set[sym]
}

type firstComContext struct {
	first *firstSet
}

func newFirstComContext(prods *productionSet) *firstComContext {
	return &firstComContext{
		first: newFirstSet(prods),
	}
}

func genFirstSet(prods *productionSet) (*firstSet, error) {
	cc := newFirstComContext(prods)
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			e := cc.first.findBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(cc, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return cc.first, nil
}

func genProdFirstEntry(cc *firstComContext, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.isTerminal() {
			return acc.add(sym) || changed, nil
		}

		e := cc.first.findBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty() || changed, nil
}
