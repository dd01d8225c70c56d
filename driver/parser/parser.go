package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/nihei9/gply/driver/token"
	verr "github.com/nihei9/gply/error"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gply.parser'.
func tracer() tracing.Trace {
	return tracing.Select("gply.parser")
}

// Action is a reduction action. `values` holds one value per symbol of the RHS: a *token.Token for a
// terminal and the result of an inner reduction for a non-terminal. `ctx` is the value passed to Parse.
type Action func(ctx interface{}, values []interface{}) (interface{}, error)

// ErrorHook runs when the parser meets a token having no action. It must return an error; the parser
// stops either way.
type ErrorHook func(ctx interface{}, tok *token.Token) error

var (
	// ErrHookReturned is the cause of a parsing error when an error hook returned nil.
	ErrHookReturned = errors.New("the error hook returned without an error")

	ErrUnknownTerminal = errors.New("unknown terminal")
)

type ParserOption func(p *Parser) error

// OnError sets a hook called on a syntax error instead of returning a *verr.ParsingError.
func OnError(hook ErrorHook) ParserOption {
	return func(p *Parser) error {
		p.errHook = hook
		return nil
	}
}

// DisableDefaultReductions makes the parser consult a lookahead in every state.
func DisableDefaultReductions() ParserOption {
	return func(p *Parser) error {
		p.disableDefaultReductions = true
		return nil
	}
}

// Parser runs a parsing table over token streams. A Parser holds no state between calls of Parse, so it
// can be shared by goroutines.
type Parser struct {
	gram                     Grammar
	actions                  []Action
	errHook                  ErrorHook
	disableDefaultReductions bool
}

// NewParser returns a parser. actions[n] is the action of the production n; a nil or missing action
// yields the value of the first RHS symbol, or nil when the RHS is empty.
func NewParser(gram Grammar, actions []Action, opts ...ParserOption) (*Parser, error) {
	if len(actions) > gram.ProductionCount() {
		return nil, fmt.Errorf("too many actions; productions: %v, actions: %v", gram.ProductionCount(), len(actions))
	}

	p := &Parser{
		gram:    gram,
		actions: actions,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Grammar returns the grammar the parser runs on.
func (p *Parser) Grammar() Grammar {
	return p.gram
}

// run holds the mutable state of one Parse call.
type run struct {
	ts          token.Stream
	stateStack  []int
	valueStack  []interface{}
	lookahead   *token.Token
	lookaheadID int
	eof         bool
	lastPos     token.SourcePos
}

// Parse reads tokens until the parser accepts or fails, and returns the value of the start symbol.
func (p *Parser) Parse(ts token.Stream, ctx interface{}) (interface{}, error) {
	r := &run{
		ts:         ts,
		stateStack: []int{p.gram.InitialState()},
		valueStack: []interface{}{token.New(token.NameEOF, "", token.SourcePos{})},
	}

	for {
		state := r.stateStack[len(r.stateStack)-1]

		var act int
		if prod := p.defaultReduction(state); prod > 0 {
			act = prod + 1
		} else {
			if r.lookahead == nil {
				err := p.nextToken(r)
				if err != nil {
					return nil, err
				}
			}
			act = p.gram.Action(state, r.lookaheadID)
		}

		switch {
		case act < 0: // Shift
			r.stateStack = append(r.stateStack, act*-1)
			r.valueStack = append(r.valueStack, r.lookahead)
			r.lookahead = nil
		case act > 0: // Reduce
			prod := act - 1
			if prod == p.gram.StartProduction() {
				return r.valueStack[len(r.valueStack)-1], nil
			}
			err := p.reduce(r, prod, ctx)
			if err != nil {
				return nil, err
			}
		default: // Error
			return nil, p.syntaxError(r, state, ctx)
		}
	}
}

func (p *Parser) defaultReduction(state int) int {
	if p.disableDefaultReductions {
		return 0
	}
	return p.gram.DefaultReduction(state)
}

func (p *Parser) nextToken(r *run) error {
	if r.eof {
		r.lookahead = token.New(token.NameEOF, "", r.lastPos)
		r.lookaheadID = p.gram.EOF()
		return nil
	}

	tok, err := r.ts.Next()
	if err != nil {
		if err != io.EOF {
			return err
		}
		r.eof = true
		r.lookahead = token.New(token.NameEOF, "", r.lastPos)
		r.lookaheadID = p.gram.EOF()
		return nil
	}

	id, ok := p.gram.TerminalNum(tok.Type)
	if !ok {
		pos := tok.Pos
		return &verr.ParsingError{
			Pos:   &pos,
			Token: tok,
			Cause: fmt.Errorf("%w: %v", ErrUnknownTerminal, tok.Type),
		}
	}
	r.lookahead = tok
	r.lookaheadID = id
	r.lastPos = tok.Pos
	return nil
}

func (p *Parser) reduce(r *run, prod int, ctx interface{}) error {
	n := p.gram.AlternativeSymbolCount(prod)
	values := make([]interface{}, n)
	copy(values, r.valueStack[len(r.valueStack)-n:])
	r.valueStack = r.valueStack[:len(r.valueStack)-n]
	r.stateStack = r.stateStack[:len(r.stateStack)-n]

	var result interface{}
	if prod < len(p.actions) && p.actions[prod] != nil {
		var err error
		result, err = p.actions[prod](ctx, values)
		if err != nil {
			return fmt.Errorf("reduction by a production of %v failed: %w", p.gram.NonTerminal(p.gram.LHS(prod)), err)
		}
	} else if n > 0 {
		result = values[0]
	}

	top := r.stateStack[len(r.stateStack)-1]
	next := p.gram.GoTo(top, p.gram.LHS(prod))
	if next == 0 {
		return fmt.Errorf("no goto entry; state: %v, non-terminal: %v", top, p.gram.NonTerminal(p.gram.LHS(prod)))
	}
	r.stateStack = append(r.stateStack, next)
	r.valueStack = append(r.valueStack, result)

	return nil
}

func (p *Parser) syntaxError(r *run, state int, ctx interface{}) error {
	synErr := &verr.ParsingError{
		Expected: p.searchLookahead(state),
	}
	if !r.eof {
		pos := r.lookahead.Pos
		synErr.Pos = &pos
		synErr.Token = r.lookahead
	}

	tracer().Debugf("syntax error in state %v: %v", state, synErr)

	if p.errHook == nil {
		return synErr
	}
	err := p.errHook(ctx, r.lookahead)
	if err != nil {
		return err
	}
	synErr.Cause = ErrHookReturned
	return synErr
}

// searchLookahead returns the terminals having an action in a state.
func (p *Parser) searchLookahead(state int) []string {
	var kinds []string
	termCount := p.gram.TerminalCount()
	for term := 0; term < termCount; term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}
		kinds = append(kinds, p.gram.Terminal(term))
	}
	return kinds
}
