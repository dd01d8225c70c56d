package generator

import (
	"fmt"

	gspec "github.com/nihei9/gply/spec/grammar"
)

// Diagnostics are the findings of Build that don't stop it.
type Diagnostics struct {
	UnusedTerminals   []string
	UnusedProductions []string

	// SRConflicts holds the shift/reduce conflicts resolved as a shift for lack of precedence.
	SRConflicts []*gspec.ShiftReduceConflict

	// RRConflicts holds the reduce/reduce conflicts. Each is resolved in favor of the production added
	// first.
	RRConflicts []*gspec.ReduceReduceConflict

	CacheHit  bool
	CacheFile string

	// CacheError is the reason the cache couldn't be read or written, if any.
	CacheError error

	table *gspec.ParsingTable
}

// Warnings returns the diagnostics as messages.
func (d *Diagnostics) Warnings() []string {
	var ws []string
	for _, term := range d.UnusedTerminals {
		ws = append(ws, fmt.Sprintf("token %v is unused", term))
	}
	for _, prod := range d.UnusedProductions {
		ws = append(ws, fmt.Sprintf("production %v is not reachable", prod))
	}
	if n := len(d.SRConflicts); n > 0 {
		ws = append(ws, fmt.Sprintf("%v shift/reduce conflict%v", n, plural(n)))
		for _, c := range d.SRConflicts {
			ws = append(ws, fmt.Sprintf("    state %v, symbol %v: shift to state %v over reduce by production %v", c.State, d.terminal(c.Symbol), c.NextState, c.Production))
		}
	}
	if n := len(d.RRConflicts); n > 0 {
		ws = append(ws, fmt.Sprintf("%v reduce/reduce conflict%v", n, plural(n)))
		for _, c := range d.RRConflicts {
			ws = append(ws, fmt.Sprintf("    state %v, symbol %v: reduce by production %v over production %v", c.State, d.terminal(c.Symbol), c.Production1, c.Production2))
		}
	}
	if d.CacheError != nil {
		ws = append(ws, fmt.Sprintf("cache: %v", d.CacheError))
	}
	return ws
}

func (d *Diagnostics) terminal(sym int) string {
	if d.table == nil || sym < 0 || sym >= len(d.table.Terminals) {
		return fmt.Sprintf("#%v", sym)
	}
	return d.table.Terminals[sym]
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
