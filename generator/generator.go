/*
Package generator builds a parser from productions written as rules like

	expr : expr PLUS expr | expr MINUS expr

Each alternative of a rule becomes a production sharing the rule's action. Build runs the whole pipeline
once: it makes the grammar, reports unused symbols, builds the parsing table (or restores it from the
cache) and returns a parser together with the diagnostics.
*/
package generator

import (
	"errors"
	"fmt"

	"github.com/nihei9/gply/cache"
	"github.com/nihei9/gply/driver/parser"
	verr "github.com/nihei9/gply/error"
	"github.com/nihei9/gply/grammar"
	"github.com/nihei9/gply/spec"
	gspec "github.com/nihei9/gply/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gply.generator'.
func tracer() tracing.Trace {
	return tracing.Select("gply.generator")
}

var (
	ErrAlreadyBuilt  = errors.New("the generator is already built")
	ErrTooManyPrecs  = errors.New("a production takes at most one precedence")
	ErrNilAction     = errors.New("an action must not be nil")
	ErrDuplicateHook = errors.New("an error hook is already added")
)

// Level is a precedence level. Levels are given from the lowest to the highest.
type Level struct {
	Assoc     grammar.Assoc
	Terminals []string
}

type Option func(g *Generator)

func Precedence(levels ...Level) Option {
	return func(g *Generator) {
		g.levels = append(g.levels, levels...)
	}
}

// Cache makes Build reuse a parsing table cached under `id`.
func Cache(id string) Option {
	return func(g *Generator) {
		g.cacheID = id
	}
}

// CacheDir sets the cache directory. The default is the directory `gply` in the user cache directory.
func CacheDir(dir string) Option {
	return func(g *Generator) {
		g.cacheDir = dir
	}
}

func Class(class gspec.Class) Option {
	return func(g *Generator) {
		g.class = class
	}
}

// Name names the grammar. It appears in compiled grammars only.
func Name(name string) Option {
	return func(g *Generator) {
		g.name = name
	}
}

func DisableDefaultReductions() Option {
	return func(g *Generator) {
		g.disableDefaultReductions = true
	}
}

type production struct {
	name    string
	symbols []string
	action  parser.Action
	prec    string
}

// Generator accumulates productions until Build is called. After that, every method fails with
// ErrAlreadyBuilt.
type Generator struct {
	tokens                   []string
	levels                   []Level
	prods                    []*production
	errHook                  parser.ErrorHook
	cacheID                  string
	cacheDir                 string
	class                    gspec.Class
	name                     string
	disableDefaultReductions bool
	built                    bool
}

// New returns a generator of a grammar whose terminals are `tokens`.
func New(tokens []string, opts ...Option) *Generator {
	g := &Generator{
		tokens: append([]string{}, tokens...),
		class:  gspec.ClassLALR,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func errAlreadyBuilt() error {
	return &verr.ConstructionError{
		Cause: ErrAlreadyBuilt,
	}
}

// Production adds the productions of a rule `name : A B | C D`, all reduced by `action`. `prec` names a
// precedence for the alternatives without a #prec directive.
func (g *Generator) Production(rule string, action parser.Action, prec ...string) error {
	if g.built {
		return errAlreadyBuilt()
	}
	if len(prec) > 1 {
		return &verr.ConstructionError{
			Cause:  ErrTooManyPrecs,
			Detail: rule,
		}
	}

	prod, err := spec.ParseRule(rule)
	if err != nil {
		return fmt.Errorf("invalid rule %q: %w", rule, err)
	}
	for _, alt := range prod.RHS {
		p := alt.Prec
		if p == "" && len(prec) > 0 {
			p = prec[0]
		}
		err := g.AddProduction(prod.LHS, alt.Elements, action, p)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddProduction adds one production. `prec` may be empty.
func (g *Generator) AddProduction(name string, symbols []string, action parser.Action, prec string) error {
	if g.built {
		return errAlreadyBuilt()
	}
	if action == nil {
		return &verr.ConstructionError{
			Cause:  ErrNilAction,
			Detail: name,
		}
	}
	g.prods = append(g.prods, &production{
		name:    name,
		symbols: append([]string{}, symbols...),
		action:  action,
		prec:    prec,
	})
	return nil
}

// AddErrorHook sets the hook a parser calls on a syntax error.
func (g *Generator) AddErrorHook(hook parser.ErrorHook) error {
	if g.built {
		return errAlreadyBuilt()
	}
	if g.errHook != nil {
		return &verr.ConstructionError{
			Cause: ErrDuplicateHook,
		}
	}
	g.errHook = hook
	return nil
}

// Build makes a parser. It can be called only once, whether it succeeds or not.
func (g *Generator) Build() (*parser.Parser, *Diagnostics, error) {
	if g.built {
		return nil, nil, errAlreadyBuilt()
	}
	g.built = true

	gram, err := g.genGrammar()
	if err != nil {
		return nil, nil, err
	}

	diag := &Diagnostics{
		UnusedTerminals:   gram.UnusedTerminals(),
		UnusedProductions: gram.UnusedProductions(),
	}
	for _, term := range diag.UnusedTerminals {
		tracer().Infof("token %v is unused", term)
	}
	for _, prod := range diag.UnusedProductions {
		tracer().Infof("production %v is not reachable", prod)
	}

	err = gram.ComputeFirst()
	if err != nil {
		return nil, nil, err
	}
	err = gram.ComputeFollow()
	if err != nil {
		return nil, nil, err
	}

	cg, err := g.compile(gram, diag)
	if err != nil {
		return nil, nil, err
	}
	diag.table = cg.Table
	diag.SRConflicts = cg.Table.SRConflicts
	diag.RRConflicts = cg.Table.RRConflicts
	if n := len(diag.SRConflicts); n > 0 {
		tracer().Infof("%v shift/reduce conflict%v", n, plural(n))
	}
	if n := len(diag.RRConflicts); n > 0 {
		tracer().Infof("%v reduce/reduce conflict%v", n, plural(n))
	}

	// Productions are numbered in the order they were added, starting from 1. 0 is the augmenting one.
	actions := make([]parser.Action, len(cg.Table.LHSSymbols))
	for i, p := range g.prods {
		actions[i+1] = p.action
	}

	var opts []parser.ParserOption
	if g.errHook != nil {
		opts = append(opts, parser.OnError(g.errHook))
	}
	if g.disableDefaultReductions {
		opts = append(opts, parser.DisableDefaultReductions())
	}
	p, err := parser.NewParser(parser.NewGrammar(cg), actions, opts...)
	if err != nil {
		return nil, nil, err
	}

	return p, diag, nil
}

// Compile makes a compiled grammar without the cache. Unlike Build, it can be called any number of times.
// The report is nil unless grammar.EnableReporting is given.
func (g *Generator) Compile(opts ...grammar.CompileOption) (*gspec.CompiledGrammar, *gspec.Report, error) {
	gram, err := g.genGrammar()
	if err != nil {
		return nil, nil, err
	}
	err = gram.ComputeFollow()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]grammar.CompileOption{grammar.Class(g.class), grammar.Name(g.name)}, opts...)
	return grammar.Compile(gram, opts...)
}

func (g *Generator) genGrammar() (*grammar.Grammar, error) {
	gram, err := grammar.NewGrammar(g.tokens)
	if err != nil {
		return nil, err
	}
	for i, level := range g.levels {
		for _, term := range level.Terminals {
			err := gram.SetPrecedence(term, level.Assoc, i+1)
			if err != nil {
				return nil, err
			}
		}
	}
	for _, p := range g.prods {
		err := gram.AddProduction(p.name, p.symbols, p.prec)
		if err != nil {
			return nil, err
		}
	}
	err = gram.SetStart()
	if err != nil {
		return nil, err
	}
	return gram, nil
}

// compile builds a parsing table, or restores it from the cache when enabled. Failing to use the cache
// never fails the build.
func (g *Generator) compile(gram *grammar.Grammar, diag *Diagnostics) (*gspec.CompiledGrammar, error) {
	var store *cache.Store
	if g.cacheID != "" {
		var err error
		store, err = cache.NewStore(g.cacheDir)
		if err != nil {
			diag.CacheError = err
			tracer().Infof("cache disabled: %v", err)
		}
	}

	if store != nil {
		desc, err := grammar.Describe(gram)
		if err != nil {
			return nil, err
		}
		diag.CacheFile = store.Path(g.cacheID, desc)
		cg, err := store.Load(g.cacheID, desc)
		switch {
		case err != nil:
			tracer().Infof("cache miss: %v", err)
		case cg.Table.Class != g.class:
			tracer().Infof("cache miss: the cached table is %v, want: %v", cg.Table.Class, g.class)
		default:
			diag.CacheHit = true
			return cg, nil
		}
	}

	cg, _, err := grammar.Compile(gram, grammar.Class(g.class), grammar.Name(g.name))
	if err != nil {
		return nil, err
	}

	if store != nil {
		_, err := store.Save(g.cacheID, cg)
		if err != nil {
			diag.CacheError = err
			tracer().Infof("failed to write the cache: %v", err)
		}
	}

	return cg, nil
}
