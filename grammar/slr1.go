package grammar

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// genSLR1LookAheads gives every reducible item FOLLOW of the LHS of its production.
func genSLR1LookAheads(lr0 *lr0Automaton, prods *productionSet, follow *followSet, termCount int) (lookAheadSet, error) {
	lookAheads := lookAheadSet{}
	for _, state := range lr0.states {
		for _, id := range state.items {
			item := lr0.arena.get(id)
			if !item.reducible || item.prod == productionNumStart {
				continue
			}

			prod, ok := prods.findByNum(item.prod)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}

			flw, err := follow.find(prod.lhs)
			if err != nil {
				return nil, err
			}

			la := bitset.New(uint(termCount))
			for _, sym := range flw.terminals() {
				la.Set(uint(sym.num()))
			}
			lookAheads[lookAheadKey{
				state: state.num,
				prod:  item.prod,
			}] = la
		}
	}

	return lookAheads, nil
}
