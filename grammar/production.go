package grammar

import (
	"fmt"
)

type productionNum int

const (
	// productionNumStart is the number of the augmenting production S' → start.
	productionNumStart = productionNum(0)
	productionNumMin   = productionNum(1)
)

func (n productionNum) Int() int {
	return int(n)
}

type production struct {
	num    productionNum
	lhs    symbol
	rhs    []symbol
	rhsLen int
	prec   precedence
}

func newProduction(lhs symbol, rhs []symbol) (*production, error) {
	if !lhs.isNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.isNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
		prec:   precNil,
	}, nil
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

func (p *production) isStart() bool {
	return p.num == productionNumStart
}

// productionSet keeps productions in declaration order. The slot of the augmenting production stays nil until
// the start symbol is fixed.
type productionSet struct {
	prods     []*production
	lhs2Prods map[symbol][]*production
}

func newProductionSet() *productionSet {
	return &productionSet{
		prods:     []*production{nil},
		lhs2Prods: map[symbol][]*production{},
	}
}

func (ps *productionSet) append(prod *production) {
	if prod.lhs.isStart() {
		prod.num = productionNumStart
		ps.prods[productionNumStart] = prod
	} else {
		prod.num = productionNum(len(ps.prods))
		ps.prods = append(ps.prods, prod)
	}

	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num < 0 || num.Int() >= len(ps.prods) || ps.prods[num] == nil {
		return nil, false
	}
	return ps.prods[num], true
}

func (ps *productionSet) findByLHS(lhs symbol) ([]*production, bool) {
	if lhs.isNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// getAllProductions returns the productions ordered by their numbers, the augmenting production first.
func (ps *productionSet) getAllProductions() []*production {
	if ps.prods[productionNumStart] == nil {
		return ps.prods[productionNumMin:]
	}
	return ps.prods
}

// userProductionCount returns the number of productions excluding the augmenting one.
func (ps *productionSet) userProductionCount() int {
	return len(ps.prods) - 1
}

func (ps *productionSet) count() int {
	return len(ps.prods)
}
