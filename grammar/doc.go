/*
Package grammar turns a context-free grammar into an LR parsing table.

The pipeline is

	Grammar → LR(0) automaton → lookahead sets (LALR(1) or SLR(1)) → parsing table

LALR(1) lookaheads are computed with the relations of DeRemer and Pennello: direct reads, reads, includes
and lookback. Read sets and follow sets are the fixed points of the digraph algorithm over reads and includes
respectively.

Conflicts are resolved by precedence and associativity. Conflicts without a precedence comparison fall back
to shift, and reduce/reduce conflicts to the production declared first; both are reported.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gply.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("gply.grammar")
}
