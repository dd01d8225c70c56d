/*
Package cache stores compiled grammars on disk so that a grammar isn't compiled again while it stays the
same.

A file is named `<id>-<version>-<hash>.json`, where the hash covers the start symbol, the terminals, the
precedence table and the productions. A file found under the name is still validated field by field
against the grammar before its table is used.
*/
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cnf/structhash"
	"github.com/nihei9/gply/compressor"
	spec "github.com/nihei9/gply/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"
)

// tracer traces with key 'gply.cache'.
func tracer() tracing.Trace {
	return tracing.Select("gply.cache")
}

var (
	ErrNotFound = errors.New("no cached grammar")
	ErrCorrupt  = errors.New("a cached grammar is corrupt")
	ErrMismatch = errors.New("a cached grammar doesn't match")
)

// Store is a directory of cached grammars.
type Store struct {
	dir string
}

// NewStore returns a store in `dir`. An empty `dir` means the directory `gply` in the user cache directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate the user cache directory: %w", err)
		}
		dir = filepath.Join(d, "gply")
	}
	return &Store{
		dir: dir,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// hashKey is what the name of a cache file depends on.
type hashKey struct {
	Start       string
	Terminals   []string
	Precedence  []*spec.Precedence
	Productions []*spec.Production
}

// Hash returns the content hash of a grammar description made by grammar.Describe.
func Hash(desc *spec.CompiledGrammar) string {
	return hex.EncodeToString(structhash.Sha1(&hashKey{
		Start:       desc.Start,
		Terminals:   desc.Terminals,
		Precedence:  desc.Precedence,
		Productions: desc.Productions,
	}, spec.Version))
}

// Path returns the file a grammar is cached in.
func (s *Store) Path(id string, desc *spec.CompiledGrammar) string {
	return filepath.Join(s.dir, fmt.Sprintf("%v-%v-%v.json", id, spec.Version, Hash(desc)))
}

// Load reads the cached grammar matching `desc`. The error is ErrNotFound, ErrCorrupt or ErrMismatch
// (possibly wrapped) when the cache cannot be used.
func (s *Store) Load(id string, desc *spec.CompiledGrammar) (*spec.CompiledGrammar, error) {
	path := s.Path(id, desc)
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, path)
		}
		return nil, err
	}

	cg := &spec.CompiledGrammar{}
	err = json.Unmarshal(src, cg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrCorrupt, path, err)
	}
	err = Validate(cg, desc)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	tracer().Infof("cache hit: %v", path)

	return cg, nil
}

// Save writes a compiled grammar. The file is written under a temporary name first and then renamed, so
// a reader never sees a partial file.
func (s *Store) Save(id string, cg *spec.CompiledGrammar) (string, error) {
	if cg.Table == nil {
		return "", fmt.Errorf("a grammar without a parsing table cannot be cached")
	}

	err := os.MkdirAll(s.dir, 0755)
	if err != nil {
		return "", err
	}
	src, err := json.Marshal(cg)
	if err != nil {
		return "", err
	}

	path := s.Path(id, cg)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	_, err = tmp.Write(src)
	if cErr := tmp.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	tracer().Infof("cached a grammar: %v", path)

	return path, nil
}

// Validate checks that a cached grammar was compiled from the grammar `desc` describes, and that its
// parsing table is well formed.
func Validate(cached, desc *spec.CompiledGrammar) error {
	if cached.Start != desc.Start {
		return fmt.Errorf("%w: start symbol: %v, want: %v", ErrMismatch, cached.Start, desc.Start)
	}
	if !slices.Equal(cached.Terminals, desc.Terminals) {
		return fmt.Errorf("%w: terminals: %v, want: %v", ErrMismatch, cached.Terminals, desc.Terminals)
	}
	if !slices.EqualFunc(cached.Precedence, desc.Precedence, func(a, b *spec.Precedence) bool {
		return *a == *b
	}) {
		return fmt.Errorf("%w: precedence", ErrMismatch)
	}
	if !slices.EqualFunc(cached.Productions, desc.Productions, func(a, b *spec.Production) bool {
		return a.Name == b.Name && slices.Equal(a.Symbols, b.Symbols) && a.Assoc == b.Assoc && a.Level == b.Level
	}) {
		return fmt.Errorf("%w: productions", ErrMismatch)
	}

	tab := cached.Table
	if tab == nil {
		return fmt.Errorf("%w: no parsing table", ErrCorrupt)
	}
	if tab.TerminalCount <= 0 || tab.NonTerminalCount <= 0 || tab.StateCount <= 0 {
		return fmt.Errorf("%w: table dimensions: %v states, %v terminals, %v non-terminals", ErrCorrupt, tab.StateCount, tab.TerminalCount, tab.NonTerminalCount)
	}
	if len(tab.Action) != tab.StateCount*tab.TerminalCount ||
		len(tab.GoTo) != tab.StateCount*tab.NonTerminalCount ||
		len(tab.DefaultReductions) != tab.StateCount {
		return fmt.Errorf("%w: table sizes", ErrCorrupt)
	}
	if len(tab.Terminals) != tab.TerminalCount || len(tab.NonTerminals) != tab.NonTerminalCount {
		return fmt.Errorf("%w: symbol names", ErrCorrupt)
	}
	// The augmenting production is in the table but not in the description.
	if len(tab.LHSSymbols) != len(desc.Productions)+1 || len(tab.AlternativeSymbolCounts) != len(tab.LHSSymbols) {
		return fmt.Errorf("%w: production count", ErrCorrupt)
	}

	return validateEntries(tab)
}

// validateEntries checks that every entry of a table refers to an existing state, production or symbol,
// so that a parser driven by the table never indexes out of range.
func validateEntries(tab *spec.ParsingTable) error {
	prodCount := len(tab.LHSSymbols)
	if tab.InitialState < 0 || tab.InitialState >= tab.StateCount {
		return fmt.Errorf("%w: initial state: %v", ErrCorrupt, tab.InitialState)
	}
	if tab.StartProduction < 0 || tab.StartProduction >= prodCount {
		return fmt.Errorf("%w: start production: %v", ErrCorrupt, tab.StartProduction)
	}
	if tab.EOFSymbol < 0 || tab.EOFSymbol >= tab.TerminalCount || tab.ErrorSymbol < 0 || tab.ErrorSymbol >= tab.TerminalCount {
		return fmt.Errorf("%w: special terminals: %v, %v", ErrCorrupt, tab.EOFSymbol, tab.ErrorSymbol)
	}
	for prod, lhs := range tab.LHSSymbols {
		if lhs < 0 || lhs >= tab.NonTerminalCount {
			return fmt.Errorf("%w: LHS of production %v: %v", ErrCorrupt, prod, lhs)
		}
		if tab.AlternativeSymbolCounts[prod] < 0 {
			return fmt.Errorf("%w: length of production %v: %v", ErrCorrupt, prod, tab.AlternativeSymbolCounts[prod])
		}
	}
	for i, act := range tab.Action {
		switch {
		case act < 0 && -act >= tab.StateCount:
			return fmt.Errorf("%w: action[%v] shifts to a missing state: %v", ErrCorrupt, i, -act)
		case act > 0 && act-1 >= prodCount:
			return fmt.Errorf("%w: action[%v] reduces by a missing production: %v", ErrCorrupt, i, act-1)
		}
	}
	for i, next := range tab.GoTo {
		if next < 0 || next >= tab.StateCount {
			return fmt.Errorf("%w: goto[%v] leads to a missing state: %v", ErrCorrupt, i, next)
		}
	}
	for state, prod := range tab.DefaultReductions {
		if prod < 0 || prod >= prodCount {
			return fmt.Errorf("%w: default reduction of state %v: %v", ErrCorrupt, state, prod)
		}
	}
	if tab.CompressedAction != nil {
		err := validateCompressed(tab.CompressedAction, tab.Action, tab.TerminalCount)
		if err != nil {
			return fmt.Errorf("%w: compressed action table: %v", ErrCorrupt, err)
		}
	}
	if tab.CompressedGoTo != nil {
		err := validateCompressed(tab.CompressedGoTo, tab.GoTo, tab.NonTerminalCount)
		if err != nil {
			return fmt.Errorf("%w: compressed goto table: %v", ErrCorrupt, err)
		}
	}
	return nil
}

// validateCompressed checks that a compressed table reproduces its dense original entry by entry.
func validateCompressed(ctab *spec.CompressedTable, orig []int, colCount int) error {
	if ctab.OriginalColCount != colCount || ctab.OriginalRowCount*colCount != len(orig) || len(ctab.RowNums) != ctab.OriginalRowCount {
		return fmt.Errorf("dimensions")
	}
	if len(ctab.Entries) != len(ctab.Bounds) {
		return fmt.Errorf("entries and bounds differ in length")
	}
	for _, u := range ctab.RowNums {
		if u < 0 || u >= len(ctab.RowDisplacement) {
			return fmt.Errorf("row number: %v", u)
		}
		d := ctab.RowDisplacement[u]
		if d < 0 || d+colCount > len(ctab.Entries) {
			return fmt.Errorf("row displacement: %v", d)
		}
	}
	for row := 0; row < ctab.OriginalRowCount; row++ {
		for col := 0; col < colCount; col++ {
			v, err := compressor.Lookup(ctab, row, col)
			if err != nil {
				return err
			}
			if v != orig[row*colCount+col] {
				return fmt.Errorf("entry [%v, %v]: %v, want: %v", row, col, v, orig[row*colCount+col])
			}
		}
	}
	return nil
}
