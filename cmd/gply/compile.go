package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nihei9/gply/generator"
	"github.com/nihei9/gply/grammar"
	gspec "github.com/nihei9/gply/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output   *string
	class    *string
	compress *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar into a parsing table",
		Example: `  gply compile calc.yaml -o calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.class = cmd.Flags().String("class", "", "table class [lalr|slr] (default: the class of the grammar)")
	compileFlags.compress = cmd.Flags().Bool("compress", false, "store compressed tables too")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	desc, err := readDescription(args[0])
	if err != nil {
		return err
	}

	var genOpts []generator.Option
	if *compileFlags.class != "" {
		genOpts = append(genOpts, generator.Class(gspec.Class(*compileFlags.class)))
	}
	g, err := generator.FromDescription(desc, genOpts...)
	if err != nil {
		return err
	}

	opts := []grammar.CompileOption{grammar.EnableReporting()}
	if *compileFlags.compress {
		opts = append(opts, grammar.Compress())
	}
	cgram, report, err := g.Compile(opts...)
	if err != nil {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	var implicitlyResolvedCount int
	for _, s := range report.States {
		for _, c := range s.SRConflict {
			if c.ResolvedBy == gspec.ResolvedByShift {
				implicitlyResolvedCount++
			}
		}
		for _, c := range s.RRConflict {
			if c.ResolvedBy == gspec.ResolvedByProdOrder {
				implicitlyResolvedCount++
			}
		}
	}
	if implicitlyResolvedCount > 0 {
		pterm.Warning.Println(fmt.Sprintf("%v conflicts", implicitlyResolvedCount))
	}

	return nil
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report. The output method depends on `path`.
//
//  1. When the path is a directory path, the compiled grammar and the report are written to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json respectively.
//  2. When the path is a file path or a non-existent path, the compiled grammar is written there and the
//     report goes to <grammar-name>-report.json in the same directory.
//  3. When the path is empty, the compiled grammar is written to stdout and the report goes to
//     <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *gspec.CompiledGrammar, report *gspec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	{
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(reportFile, "%v\n", string(b))
	}

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
