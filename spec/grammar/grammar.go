package grammar

import "strconv"

// Version changes whenever the layout of CompiledGrammar or the construction of tables changes. Cached
// grammars of other versions are never read.
const Version = 1

// CompiledGrammar is a grammar together with the parsing table built from it. It is what a compiler writes
// and a cache stores.
type CompiledGrammar struct {
	Name string `json:"name"`

	// Start is the name of the start symbol.
	Start string `json:"start"`

	// Terminals holds the declared terminals sorted by name. The error terminal is included.
	Terminals []string `json:"terminals"`

	// Precedence is sorted by terminal name.
	Precedence []*Precedence `json:"precedence"`

	// Productions holds the user productions ordered by production number. The augmenting production
	// S' → start isn't included.
	Productions []*Production `json:"productions"`

	Table *ParsingTable `json:"table"`
}

type Precedence struct {
	Terminal string `json:"terminal"`
	Assoc    string `json:"assoc"`
	Level    int    `json:"level"`
}

type Production struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
	Assoc   string   `json:"assoc"`
	Level   int      `json:"level"`
}

// Class represents a class of LR parsing tables.
type Class string

const (
	ClassLALR = Class("lalr")
	ClassSLR  = Class("slr")
)

func (c Class) String() string {
	return string(c)
}

// StateNum represents a state number of a parsing table.
type StateNum int

const StateNumInitial = StateNum(0)

func (n StateNum) Int() int {
	return int(n)
}

func (n StateNum) String() string {
	return strconv.Itoa(int(n))
}

// ParsingTable is the dense form of an LR parsing table.
//
// Action[state*TerminalCount+terminal] holds an action:
//
//   - 0 is an error.
//   - -n shifts to the state n.
//   - n (> 0) reduces by the production n-1. Reducing the start production means accepting.
//
// GoTo[state*NonTerminalCount+non-terminal] holds the next state, or 0 when the entry is empty. No
// transition ever leads to the initial state, so 0 is free.
//
// DefaultReductions[state] holds the production a state reduces by regardless of a lookahead, or 0.
type ParsingTable struct {
	Class                   Class    `json:"class"`
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	DefaultReductions       []int    `json:"default_reductions"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	ErrorSymbol             int      `json:"error_symbol"`

	// SRConflicts holds the shift/reduce conflicts no precedence settled. Such conflicts are resolved as a
	// shift.
	SRConflicts []*ShiftReduceConflict `json:"sr_conflicts"`

	// RRConflicts holds every reduce/reduce conflict.
	RRConflicts []*ReduceReduceConflict `json:"rr_conflicts"`

	// CompressedAction and CompressedGoTo are present only when the table was compiled with compression.
	CompressedAction *CompressedTable `json:"compressed_action,omitempty"`
	CompressedGoTo   *CompressedTable `json:"compressed_goto,omitempty"`
}

type ShiftReduceConflict struct {
	State      int `json:"state"`
	Symbol     int `json:"symbol"`
	NextState  int `json:"next_state"`
	Production int `json:"production"`
}

type ReduceReduceConflict struct {
	State       int `json:"state"`
	Symbol      int `json:"symbol"`
	Production1 int `json:"production_1"`
	Production2 int `json:"production_2"`
}

// CompressedTable is a table compressed by merging identical rows and then displacing the rows of the
// unique-row table so that their non-empty entries don't overlap.
type CompressedTable struct {
	RowNums          []int `json:"row_nums"`
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}
