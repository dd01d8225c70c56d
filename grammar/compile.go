package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/gply/compressor"
	verr "github.com/nihei9/gply/error"
	spec "github.com/nihei9/gply/spec/grammar"
	"golang.org/x/exp/slices"
)

type compileConfig struct {
	isReportingEnabled bool
	class              spec.Class
	compress           bool
	name               string
}

type CompileOption func(config *compileConfig)

// EnableReporting makes Compile return a report of the automaton.
func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// Class selects how lookaheads are computed. The default is LALR(1).
func Class(class spec.Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

// Compress makes Compile store compressed action and goto tables too.
func Compress() CompileOption {
	return func(config *compileConfig) {
		config.compress = true
	}
}

func Name(name string) CompileOption {
	return func(config *compileConfig) {
		config.name = name
	}
}

// Describe returns the compiled form of a grammar without its parsing table. Two grammars having the same
// description produce the same table.
func Describe(gram *Grammar) (*spec.CompiledGrammar, error) {
	if !gram.finalized {
		return nil, &verr.ConstructionError{
			Cause: SemErrStartNotSet,
		}
	}

	terms := gram.Terminals()
	slices.Sort(terms)

	precTerms := append([]string{}, gram.precOrder...)
	slices.Sort(precTerms)
	precs := make([]*spec.Precedence, len(precTerms))
	for i, term := range precTerms {
		p := gram.termPrec[term]
		precs[i] = &spec.Precedence{
			Terminal: term,
			Assoc:    string(p.assoc),
			Level:    p.level,
		}
	}

	var prods []*spec.Production
	for _, p := range gram.prods.getAllProductions() {
		if p.isStart() {
			continue
		}
		name, _ := gram.symTab.toText(p.lhs)
		syms := make([]string, len(p.rhs))
		for i, sym := range p.rhs {
			syms[i], _ = gram.symTab.toText(sym)
		}
		prods = append(prods, &spec.Production{
			Name:    name,
			Symbols: syms,
			Assoc:   string(p.prec.assoc),
			Level:   p.prec.level,
		})
	}

	return &spec.CompiledGrammar{
		Start:       gram.Start(),
		Terminals:   terms,
		Precedence:  precs,
		Productions: prods,
	}, nil
}

// Compile builds the parsing table of a grammar whose start symbol is already set.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class: spec.ClassLALR,
	}
	for _, opt := range opts {
		opt(config)
	}

	cg, err := Describe(gram)
	if err != nil {
		return nil, nil, err
	}
	cg.Name = config.name

	termCount := gram.symTab.terminalCount()
	nonTermCount := gram.symTab.nonTerminalCount()

	lr0, err := genLR0Automaton(gram.prods)
	if err != nil {
		return nil, nil, err
	}

	var lookAheads lookAheadSet
	switch config.class {
	case spec.ClassLALR:
		lookAheads, err = genLALR1LookAheads(lr0, gram.prods, termCount)
		if err != nil {
			return nil, nil, err
		}
	case spec.ClassSLR:
		if gram.follow == nil {
			err := gram.ComputeFollow()
			if err != nil {
				return nil, nil, err
			}
		}
		lookAheads, err = genSLR1LookAheads(lr0, gram.prods, gram.follow, termCount)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown class: %v", config.class)
	}

	b := &lrTableBuilder{
		automaton:    lr0,
		prods:        gram.prods,
		lookAheads:   lookAheads,
		termCount:    termCount,
		nonTermCount: nonTermCount,
		symTab:       gram.symTab,
		termPrec:     gram.termPrec,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram, config.class)
		if err != nil {
			return nil, nil, err
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}
	defaultReds := make([]int, len(tab.defaultReductions))
	for i, p := range tab.defaultReductions {
		defaultReds[i] = p.Int()
	}

	allProds := gram.prods.getAllProductions()
	lhsSyms := make([]int, len(allProds))
	altSymCounts := make([]int, len(allProds))
	for _, p := range allProds {
		lhsSyms[p.num] = p.lhs.num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	var srConflicts []*spec.ShiftReduceConflict
	var rrConflicts []*spec.ReduceReduceConflict
	for _, con := range b.conflicts {
		switch c := con.(type) {
		case *shiftReduceConflict:
			if c.resolvedBy != ResolvedByShift {
				continue
			}
			srConflicts = append(srConflicts, &spec.ShiftReduceConflict{
				State:      c.state.Int(),
				Symbol:     c.sym.num().Int(),
				NextState:  c.nextState.Int(),
				Production: c.prodNum.Int(),
			})
		case *reduceReduceConflict:
			rrConflicts = append(rrConflicts, &spec.ReduceReduceConflict{
				State:       c.state.Int(),
				Symbol:      c.sym.num().Int(),
				Production1: c.prodNum1.Int(),
				Production2: c.prodNum2.Int(),
			})
		}
	}

	ptab := &spec.ParsingTable{
		Class:                   config.class,
		Action:                  action,
		GoTo:                    goTo,
		DefaultReductions:       defaultReds,
		StateCount:              tab.stateCount,
		InitialState:            tab.InitialState.Int(),
		StartProduction:         productionNumStart.Int(),
		LHSSymbols:              lhsSyms,
		AlternativeSymbolCounts: altSymCounts,
		Terminals:               gram.symTab.terminalTexts(),
		TerminalCount:           tab.terminalCount,
		NonTerminals:            gram.symTab.nonTerminalTexts(),
		NonTerminalCount:        tab.nonTerminalCount,
		EOFSymbol:               symbolEOF.num().Int(),
		ErrorSymbol:             symbolError.num().Int(),
		SRConflicts:             srConflicts,
		RRConflicts:             rrConflicts,
	}

	if config.compress {
		ptab.CompressedAction, err = compress(action, termCount, int(actionEntryEmpty))
		if err != nil {
			return nil, nil, err
		}
		ptab.CompressedGoTo, err = compress(goTo, nonTermCount, int(goToEntryEmpty))
		if err != nil {
			return nil, nil, err
		}
	}

	cg.Table = ptab

	tracer().Infof("compiled a %v table: %v states, %v shift/reduce conflicts, %v reduce/reduce conflicts", config.class, tab.stateCount, len(srConflicts), len(rrConflicts))

	return cg, report, nil
}

func compress(entries []int, colCount int, emptyValue int) (*spec.CompressedTable, error) {
	orig, err := compressor.NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, err
	}
	return compressor.Compress(orig, emptyValue), nil
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar, class spec.Class) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		termSyms := b.symTab.terminalSymbols()
		terms = make([]*spec.Terminal, len(termSyms))
		for _, sym := range termSyms {
			name, ok := b.symTab.toText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			term := &spec.Terminal{
				Number: sym.num().Int(),
				Name:   name,
			}
			if prec, ok := b.termPrec[name]; ok {
				term.Precedence = prec.level
				term.Associativity = string(prec.assoc)
			}

			terms[sym.num()] = term
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.nonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms))
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.toText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			nonTerms[sym.num()] = &spec.NonTerminal{
				Number: sym.num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.RProduction
	{
		ps := gram.prods.getAllProductions()
		prods = make([]*spec.RProduction, len(ps))
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.isTerminal() {
					rhs[i] = e.num().Int()
				} else {
					rhs[i] = e.num().Int() * -1
				}
			}

			prods[p.num.Int()] = &spec.RProduction{
				Number:        p.num.Int(),
				LHS:           p.lhs.num().Int(),
				RHS:           rhs,
				Precedence:    p.prec.level,
				Associativity: string(p.prec.assoc),
			}
		}
	}

	var states []*spec.State
	{
		srConflicts := map[stateNum][]*shiftReduceConflict{}
		rrConflicts := map[stateNum][]*reduceReduceConflict{}
		for _, con := range b.conflicts {
			switch c := con.(type) {
			case *shiftReduceConflict:
				srConflicts[c.state] = append(srConflicts[c.state], c)
			case *reduceReduceConflict:
				rrConflicts[c.state] = append(rrConflicts[c.state], c)
			}
		}

		states = make([]*spec.State, len(b.automaton.states))
		for _, s := range b.automaton.states {
			var kernel []*spec.Item
			for _, id := range s.items {
				item := b.automaton.arena.get(id)
				if !item.kernel {
					continue
				}
				kernel = append(kernel, &spec.Item{
					Production: item.prod.Int(),
					Dot:        item.dot,
				})
			}

			sort.Slice(kernel, func(i, j int) bool {
				if kernel[i].Production < kernel[j].Production {
					return true
				}
				if kernel[i].Production > kernel[j].Production {
					return false
				}
				return kernel[i].Dot < kernel[j].Dot
			})

			var shift []*spec.Transition
			var reduce []*spec.Reduce
			var goTo []*spec.Transition
			accept := false
			{
			TERMINALS_LOOP:
				for _, t := range b.symTab.terminalSymbols() {
					act, next, prod := tab.getAction(s.num, t.num())
					switch act {
					case ActionTypeShift:
						shift = append(shift, &spec.Transition{
							Symbol: t.num().Int(),
							State:  next.Int(),
						})
					case ActionTypeAccept:
						accept = true
					case ActionTypeReduce:
						for _, r := range reduce {
							if r.Production == prod.Int() {
								r.LookAhead = append(r.LookAhead, t.num().Int())
								continue TERMINALS_LOOP
							}
						}
						reduce = append(reduce, &spec.Reduce{
							LookAhead:  []int{t.num().Int()},
							Production: prod.Int(),
						})
					}
				}

				for _, n := range b.symTab.nonTerminalSymbols() {
					ty, next := tab.getGoTo(s.num, n.num())
					if ty == GoToTypeRegistered {
						goTo = append(goTo, &spec.Transition{
							Symbol: n.num().Int(),
							State:  next.Int(),
						})
					}
				}

				sort.Slice(shift, func(i, j int) bool {
					return shift[i].State < shift[j].State
				})
				sort.Slice(reduce, func(i, j int) bool {
					return reduce[i].Production < reduce[j].Production
				})
				sort.Slice(goTo, func(i, j int) bool {
					return goTo[i].State < goTo[j].State
				})
			}

			sr := []*spec.SRConflict{}
			rr := []*spec.RRConflict{}
			{
				for _, c := range srConflicts[s.num] {
					conflict := &spec.SRConflict{
						Symbol:     c.sym.num().Int(),
						State:      c.nextState.Int(),
						Production: c.prodNum.Int(),
						ResolvedBy: c.resolvedBy.Int(),
					}

					ty, s, p := tab.getAction(s.num, c.sym.num())
					switch ty {
					case ActionTypeShift:
						n := s.Int()
						conflict.AdoptedState = &n
					case ActionTypeReduce:
						n := p.Int()
						conflict.AdoptedProduction = &n
					}

					sr = append(sr, conflict)
				}

				sort.SliceStable(sr, func(i, j int) bool {
					return sr[i].Symbol < sr[j].Symbol
				})

				for _, c := range rrConflicts[s.num] {
					conflict := &spec.RRConflict{
						Symbol:      c.sym.num().Int(),
						Production1: c.prodNum1.Int(),
						Production2: c.prodNum2.Int(),
						ResolvedBy:  c.resolvedBy.Int(),
					}

					_, _, p := tab.getAction(s.num, c.sym.num())
					conflict.AdoptedProduction = p.Int()

					rr = append(rr, conflict)
				}

				sort.SliceStable(rr, func(i, j int) bool {
					return rr[i].Symbol < rr[j].Symbol
				})
			}

			states[s.num.Int()] = &spec.State{
				Number:     s.num.Int(),
				Kernel:     kernel,
				Shift:      shift,
				Reduce:     reduce,
				Accept:     accept,
				GoTo:       goTo,
				Default:    tab.defaultReductions[s.num].Int(),
				SRConflict: sr,
				RRConflict: rr,
			}
		}
	}

	return &spec.Report{
		Class:        class,
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}
