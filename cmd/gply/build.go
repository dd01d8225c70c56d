package main

import (
	"fmt"
	"os"

	"github.com/nihei9/gply/driver/parser"
	verr "github.com/nihei9/gply/error"
	"github.com/nihei9/gply/generator"
	"github.com/nihei9/gply/spec"
	gspec "github.com/nihei9/gply/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// genFlags are the flags of the commands building a parser.
type genFlags struct {
	class                    *string
	cache                    *string
	cacheDir                 *string
	disableDefaultReductions *bool
}

func addGenFlags(cmd *cobra.Command) *genFlags {
	return &genFlags{
		class:                    cmd.Flags().String("class", "", "table class [lalr|slr] (default: the class of the grammar)"),
		cache:                    cmd.Flags().String("cache", "", "cache the parsing table under this ID"),
		cacheDir:                 cmd.Flags().String("cache-dir", "", "cache directory (default: <user cache directory>/gply)"),
		disableDefaultReductions: cmd.Flags().Bool("no-default-reductions", false, "consult a lookahead in every state"),
	}
}

func (f *genFlags) options() []generator.Option {
	var opts []generator.Option
	if *f.class != "" {
		opts = append(opts, generator.Class(gspec.Class(*f.class)))
	}
	if *f.cache != "" {
		opts = append(opts, generator.Cache(*f.cache), generator.CacheDir(*f.cacheDir))
	}
	if *f.disableDefaultReductions {
		opts = append(opts, generator.DisableDefaultReductions())
	}
	return opts
}

func readDescription(path string) (*spec.Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	desc, err := spec.ReadDescription(f, path)
	if err != nil {
		switch e := err.(type) {
		case verr.DescriptionErrors:
			for _, descErr := range e {
				descErr.SourceName = path
			}
		case *verr.DescriptionError:
			e.SourceName = path
		}
		return nil, err
	}
	return desc, nil
}

// buildParser makes a lexer and a tree-building parser of a grammar file. Diagnostics are printed as
// warnings.
func buildParser(path string, flags *genFlags) (generator.Lexer, *parser.Parser, error) {
	desc, err := readDescription(path)
	if err != nil {
		return nil, nil, err
	}
	l, err := generator.NewLexer(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot build a lexer: %w", err)
	}
	g, err := generator.FromDescription(desc, flags.options()...)
	if err != nil {
		return nil, nil, err
	}
	p, diag, err := g.Build()
	if err != nil {
		return nil, nil, err
	}
	for _, w := range diag.Warnings() {
		pterm.Warning.Println(w)
	}
	if diag.CacheHit {
		pterm.Info.Println(fmt.Sprintf("The parsing table was read from %v", diag.CacheFile))
	}
	return l, p, nil
}
