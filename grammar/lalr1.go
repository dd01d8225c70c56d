package grammar

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// transition is a non-terminal transition (state, N) of the LR(0) automaton.
type transition struct {
	state stateNum
	sym   symbol
}

// lookAheadKey identifies a reducible item in a state. The arena holds one reducible item per production,
// so the production number is enough.
type lookAheadKey struct {
	state stateNum
	prod  productionNum
}

type lookAheadSet map[lookAheadKey]*bitset.BitSet

func (s lookAheadSet) find(state stateNum, prod productionNum) *bitset.BitSet {
	return s[lookAheadKey{
		state: state,
		prod:  prod,
	}]
}

type lalr1Relations struct {
	trans    []transition
	transIdx map[transition]int
	nullable map[symbol]struct{}

	// dr, reads and includes are indexed by transition indexes.
	dr       []*bitset.BitSet
	reads    [][]int
	includes [][]int

	lookback map[lookAheadKey][]int
}

func genLALR1LookAheads(lr0 *lr0Automaton, prods *productionSet, termCount int) (lookAheadSet, error) {
	rels := &lalr1Relations{
		transIdx: map[transition]int{},
		nullable: genNullableSet(prods),
		lookback: map[lookAheadKey][]int{},
	}

	for _, state := range lr0.states {
		for _, sym := range state.nextSyms {
			if !sym.isNonTerminal() {
				continue
			}
			t := transition{
				state: state.num,
				sym:   sym,
			}
			rels.transIdx[t] = len(rels.trans)
			rels.trans = append(rels.trans, t)
		}
	}

	err := rels.genDirectReads(lr0, prods, termCount)
	if err != nil {
		return nil, err
	}
	err = rels.genReads(lr0)
	if err != nil {
		return nil, err
	}
	err = rels.genIncludesAndLookback(lr0, prods)
	if err != nil {
		return nil, err
	}

	readSets := digraph(len(rels.trans), func(x int) []int {
		return rels.reads[x]
	}, func(x int) *bitset.BitSet {
		return rels.dr[x]
	})
	followSets := digraph(len(rels.trans), func(x int) []int {
		return rels.includes[x]
	}, func(x int) *bitset.BitSet {
		return readSets[x]
	})

	lookAheads := lookAheadSet{}
	for key, ts := range rels.lookback {
		la := bitset.New(uint(termCount))
		for _, t := range ts {
			la.InPlaceUnion(followSets[t])
		}
		lookAheads[key] = la
	}

	tracer().Debugf("LALR(1) relations: %v non-terminal transitions, %v lookback entries", len(rels.trans), len(rels.lookback))

	return lookAheads, nil
}

func genNullableSet(prods *productionSet) map[symbol]struct{} {
	nullable := map[symbol]struct{}{}
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			if _, ok := nullable[prod.lhs]; ok {
				continue
			}
			if !isNullableSequence(prod.rhs, nullable) {
				continue
			}
			nullable[prod.lhs] = struct{}{}
			more = true
		}
		if !more {
			break
		}
	}
	return nullable
}

func isNullableSequence(seq []symbol, nullable map[symbol]struct{}) bool {
	for _, sym := range seq {
		if sym.isTerminal() {
			return false
		}
		if _, ok := nullable[sym]; !ok {
			return false
		}
	}
	return true
}

// genDirectReads computes DR(s, N): terminals following a dot in goto(s, N). The transition on the start
// symbol from the initial state also reads the end marker.
func (r *lalr1Relations) genDirectReads(lr0 *lr0Automaton, prods *productionSet, termCount int) error {
	startProd, ok := prods.findByNum(productionNumStart)
	if !ok {
		return fmt.Errorf("the augmenting production is missing")
	}

	r.dr = make([]*bitset.BitSet, len(r.trans))
	for i, t := range r.trans {
		next, err := lr0.transition(t.state, t.sym)
		if err != nil {
			return err
		}

		terms := bitset.New(uint(termCount))
		for _, id := range lr0.states[next].items {
			sym := lr0.arena.get(id).dottedSymbol
			if !sym.isTerminal() {
				continue
			}
			terms.Set(uint(sym.num()))
		}
		if t.state == stateNumInitial && t.sym == startProd.rhs[0] {
			terms.Set(uint(symbolNumEOF))
		}
		r.dr[i] = terms
	}
	return nil
}

// genReads computes (s, N) reads (s', N') where s' = goto(s, N) and a nullable N' follows a dot in s'.
func (r *lalr1Relations) genReads(lr0 *lr0Automaton) error {
	r.reads = make([][]int, len(r.trans))
	for i, t := range r.trans {
		next, err := lr0.transition(t.state, t.sym)
		if err != nil {
			return err
		}

		for _, sym := range lr0.states[next].nextSyms {
			if !sym.isNonTerminal() {
				continue
			}
			if _, ok := r.nullable[sym]; !ok {
				continue
			}
			j, ok := r.transIdx[transition{state: next, sym: sym}]
			if !ok {
				return fmt.Errorf("transition not found; state: %v, symbol: %v", next, sym)
			}
			r.reads[i] = append(r.reads[i], j)
		}
	}
	return nil
}

// genIncludesAndLookback walks every production N' → ω of every transition (s', N') through the automaton.
//
//   - When ω = β N γ, β leads from s' to s, and γ is nullable, (s, N) includes (s', N').
//   - When ω leads from s' to q, the reducible item N' → ω・ in q looks back to (s', N').
func (r *lalr1Relations) genIncludesAndLookback(lr0 *lr0Automaton, prods *productionSet) error {
	r.includes = make([][]int, len(r.trans))
	for i, t := range r.trans {
		ps, _ := prods.findByLHS(t.sym)
		for _, prod := range ps {
			state := t.state
			for pos, sym := range prod.rhs {
				if sym.isNonTerminal() && isNullableSequence(prod.rhs[pos+1:], r.nullable) {
					j, ok := r.transIdx[transition{state: state, sym: sym}]
					if !ok {
						return fmt.Errorf("transition not found; state: %v, symbol: %v", state, sym)
					}
					r.includes[j] = append(r.includes[j], i)
				}

				next, err := lr0.transition(state, sym)
				if err != nil {
					return err
				}
				state = next
			}

			key := lookAheadKey{
				state: state,
				prod:  prod.num,
			}
			r.lookback[key] = append(r.lookback[key], i)
		}
	}
	return nil
}
