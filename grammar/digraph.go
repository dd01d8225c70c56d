package grammar

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/emirpasic/gods/stacks/arraystack"
)

type digraphFrame struct {
	node  int
	depth int
	edges []int
	edge  int
}

// digraph computes F(x) = FP(x) ∪ ⋃{F(y) | x R y} for every node x in [0, n).
//
// It is the traversal of DeRemer and Pennello with Tarjan's SCC detection. The call stack is explicit, so deep
// relations don't grow the goroutine stack. All nodes of a strongly connected component share the same set.
func digraph(n int, rel func(x int) []int, fp func(x int) *bitset.BitSet) []*bitset.BitSet {
	const infinity = math.MaxInt

	depth := make([]int, n)
	f := make([]*bitset.BitSet, n)
	stack := arraystack.New()
	var calls []*digraphFrame

	enter := func(x int) {
		stack.Push(x)
		d := stack.Size()
		depth[x] = d
		f[x] = fp(x).Clone()
		calls = append(calls, &digraphFrame{
			node:  x,
			depth: d,
			edges: rel(x),
		})
	}

	for x := 0; x < n; x++ {
		if depth[x] != 0 {
			continue
		}

		enter(x)
		for len(calls) > 0 {
			fr := calls[len(calls)-1]
			if fr.edge < len(fr.edges) {
				y := fr.edges[fr.edge]
				if depth[y] == 0 {
					// Come back to the same edge after y is done.
					enter(y)
					continue
				}
				if depth[y] < depth[fr.node] {
					depth[fr.node] = depth[y]
				}
				f[fr.node].InPlaceUnion(f[y])
				fr.edge++
				continue
			}

			calls = calls[:len(calls)-1]
			if depth[fr.node] != fr.depth {
				continue
			}
			for {
				v, ok := stack.Pop()
				if !ok {
					break
				}
				top := v.(int)
				depth[top] = infinity
				f[top] = f[fr.node]
				if top == fr.node {
					break
				}
			}
		}
	}

	return f
}
