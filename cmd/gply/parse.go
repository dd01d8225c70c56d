package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/nihei9/gply/driver/parser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	json   *bool
	gen    *genFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text and print its syntax tree",
		Example: `  cat src | gply parse calc.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.json = cmd.Flags().Bool("json", false, "print the syntax tree as JSON")
	parseFlags.gen = addGenFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("an unexpected error occurred: %v", v)
		}
		fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
		retErr = err
	}()

	l, p, err := buildParser(args[0], parseFlags.gen)
	if err != nil {
		return err
	}

	var src []byte
	{
		r := io.Reader(os.Stdin)
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			r = f
		}
		src, err = io.ReadAll(r)
		if err != nil {
			return err
		}
	}

	v, err := p.Parse(l.Lex(string(src)), nil)
	if err != nil {
		return err
	}
	tree := v.(*parser.Node)

	if *parseFlags.json {
		b, err := json.Marshal(tree)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}
	return printTree(tree)
}

// printTree renders a syntax tree with pterm.
func printTree(tree *parser.Node) error {
	root := pterm.NewTreeFromLeveledList(leveledTree(tree, pterm.LeveledList{}, 0))
	return pterm.DefaultTree.WithRoot(root).Render()
}

func leveledTree(node *parser.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	if node.Type == parser.NodeTypeTerminal {
		return append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  fmt.Sprintf("%v %v", node.KindName, strconv.Quote(node.Text)),
		})
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  node.KindName,
	})
	for _, c := range node.Children {
		ll = leveledTree(c, ll, level+1)
	}
	return ll
}
