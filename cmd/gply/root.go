package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
}{}

// traceKeys are the tracers the --trace flag controls.
var traceKeys = []string{
	"gply.grammar",
	"gply.generator",
	"gply.cache",
	"gply.parser",
	"gply.lexer",
	"gply.tester",
}

var rootCmd = &cobra.Command{
	Use:   "gply",
	Short: "Generate an LALR(1) parser from a grammar description",
	Long: `gply provides the following features:
- Compiles a grammar description into a parsing table and a report of the automaton.
- Parses a text with a grammar and prints the syntax tree.
- Tests a grammar against test cases.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	initDisplay()
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
