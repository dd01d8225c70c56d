package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/gply/driver/parser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var replFlags = struct {
	gen *genFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "repl <grammar file path>",
		Short:   "Parse lines interactively",
		Example: `  gply repl calc.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	replFlags.gen = addGenFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	l, p, err := buildParser(args[0], replFlags.gen)
	if err != nil {
		return err
	}

	rl, err := readline.New("gply> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Println("Quit with <ctrl>D")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or an interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		v, err := p.Parse(l.Lex(line), nil)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		err = printTree(v.(*parser.Node))
		if err != nil {
			pterm.Error.Println(err)
		}
	}
	return nil
}
