package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

type lrItemID int

const lrItemIDNil = lrItemID(-1)

func (id lrItemID) Int() int {
	return int(id)
}

type lrItem struct {
	id   lrItemID
	prod productionNum

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol

	// next is the item whose dot is one position to the right. It is lrItemIDNil for a reducible item.
	next lrItemID

	// When initial is true, the item looks like S' →・S.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is a kernel item.
	kernel bool
}

// itemArena interns every item of every production. An item is identified by its index, and states refer to
// items only by that index.
type itemArena struct {
	items  []*lrItem
	byProd [][]lrItemID
}

func newItemArena(prods *productionSet) (*itemArena, error) {
	a := &itemArena{
		byProd: make([][]lrItemID, prods.count()),
	}
	for _, prod := range prods.getAllProductions() {
		ids := make([]lrItemID, prod.rhsLen+1)
		for dot := 0; dot <= prod.rhsLen; dot++ {
			ids[dot] = lrItemID(len(a.items))

			dottedSymbol := symbolNil
			if dot < prod.rhsLen {
				dottedSymbol = prod.rhs[dot]
			}

			a.items = append(a.items, &lrItem{
				id:           ids[dot],
				prod:         prod.num,
				dot:          dot,
				dottedSymbol: dottedSymbol,
				next:         lrItemIDNil,
				initial:      prod.isStart() && dot == 0,
				reducible:    dot == prod.rhsLen,
				kernel:       (prod.isStart() && dot == 0) || dot > 0,
			})
		}
		for dot := 0; dot < prod.rhsLen; dot++ {
			a.items[ids[dot]].next = ids[dot+1]
		}
		a.byProd[prod.num] = ids
	}
	if len(a.byProd) == 0 || a.byProd[productionNumStart] == nil {
		return nil, fmt.Errorf("the augmenting production is missing")
	}
	return a, nil
}

func (a *itemArena) item(prod productionNum, dot int) lrItemID {
	return a.byProd[prod][dot]
}

func (a *itemArena) get(id lrItemID) *lrItem {
	return a.items[id]
}

func (a *itemArena) count() int {
	return len(a.items)
}

// itemSetKey identifies an item set by its contents. ids must be sorted.
func itemSetKey(ids []lrItemID) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id.Int()))
	}
	return b.String()
}
