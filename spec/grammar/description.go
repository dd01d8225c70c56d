package grammar

// Report describes how a parsing table was built: symbols, productions and the states of the automaton
// with their actions and conflicts.
type Report struct {
	Class        Class          `json:"class"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*RProduction `json:"productions"`
	States       []*State       `json:"states"`
}

type Terminal struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// RProduction is a production in a report. A positive RHS element is a terminal number and a non-positive
// one is a negated non-terminal number.
type RProduction struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
	ResolvedBy        int  `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number     int           `json:"number"`
	Kernel     []*Item       `json:"kernel"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	Accept     bool          `json:"accept"`
	GoTo       []*Transition `json:"goto"`
	Default    int           `json:"default"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

// Resolution methods of conflicts in a report.
const (
	ResolvedByPrec      = 1
	ResolvedByAssoc     = 2
	ResolvedByShift     = 3
	ResolvedByProdOrder = 4
)
