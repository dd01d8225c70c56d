package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	gspec "github.com/nihei9/gply/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <report file path>",
		Short:   "Print a report in a readable format",
		Example: `  gply show calc-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReport(os.Stdout, report)
	if err != nil {
		return err
	}

	return nil
}

func readReport(path string) (*gspec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &gspec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Class

{{ .Class }}

# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range .Terminals -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ if .Accept -}}
accept on $end
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end -}}
{{ if .Default -}}
{{ printDefault .Default }}
{{ end }}
{{ range .SRConflict -}}
{{ printSRConflict . }}
{{ end -}}
{{ range .RRConflict -}}
{{ printRRConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *gspec.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	assocName := func(assoc string) string {
		if assoc == "" {
			return "-"
		}
		return assoc
	}

	writeRHS := func(b *strings.Builder, rhs []int, dot int) {
		for i, e := range rhs {
			if i == dot {
				fmt.Fprintf(b, " ・")
			}
			if e > 0 {
				fmt.Fprintf(b, " %v", termName(e))
			} else {
				fmt.Fprintf(b, " %v", nonTermName(e*-1))
			}
		}
		if dot >= 0 && dot >= len(rhs) {
			fmt.Fprintf(b, " ・")
		} else if dot < 0 && len(rhs) == 0 {
			fmt.Fprintf(b, " ε")
		}
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *gspec.Report) string {
			var implicitlyResolvedCount int
			var explicitlyResolvedCount int
			for _, s := range report.States {
				for _, c := range s.SRConflict {
					if c.ResolvedBy == gspec.ResolvedByShift {
						implicitlyResolvedCount++
					} else {
						explicitlyResolvedCount++
					}
				}
				for _, c := range s.RRConflict {
					if c.ResolvedBy == gspec.ResolvedByProdOrder {
						implicitlyResolvedCount++
					} else {
						explicitlyResolvedCount++
					}
				}
			}

			var b strings.Builder
			if implicitlyResolvedCount == 1 {
				fmt.Fprintf(&b, "%v conflict occurred and resolved implicitly.\n", implicitlyResolvedCount)
			} else if implicitlyResolvedCount > 1 {
				fmt.Fprintf(&b, "%v conflicts occurred and resolved implicitly.\n", implicitlyResolvedCount)
			}
			if explicitlyResolvedCount == 1 {
				fmt.Fprintf(&b, "%v conflict occurred and resolved explicitly.\n", explicitlyResolvedCount)
			} else if explicitlyResolvedCount > 1 {
				fmt.Fprintf(&b, "%v conflicts occurred and resolved explicitly.\n", explicitlyResolvedCount)
			}
			if implicitlyResolvedCount == 0 && explicitlyResolvedCount == 0 {
				fmt.Fprintf(&b, "No conflict")
			}
			return b.String()
		},
		"printTerminal": func(term *gspec.Terminal) string {
			var prec string
			if term.Precedence != 0 {
				prec = fmt.Sprintf("%2v", term.Precedence)
			} else {
				prec = " -"
			}
			return fmt.Sprintf("%4v %v %v %v", term.Number, prec, assocName(term.Associativity), term.Name)
		},
		"printProduction": func(prod *gspec.RProduction) string {
			var prec string
			if prod.Precedence != 0 {
				prec = fmt.Sprintf("%2v", prod.Precedence)
			} else {
				prec = " -"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			writeRHS(&b, prod.RHS, -1)

			return fmt.Sprintf("%4v %v %v %v", prod.Number, prec, assocName(prod.Associativity), b.String())
		},
		"printItem": func(item *gspec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			writeRHS(&b, prod.RHS, item.Dot)

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *gspec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *gspec.Reduce) string {
			var b strings.Builder
			{
				fmt.Fprintf(&b, "%v", termName(reduce.LookAhead[0]))
				for _, a := range reduce.LookAhead[1:] {
					fmt.Fprintf(&b, ", %v", termName(a))
				}
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, b.String())
		},
		"printGoTo": func(tran *gspec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printDefault": func(prod int) string {
			return fmt.Sprintf("reduce %4v by default", prod)
		},
		"printSRConflict": func(sr *gspec.SRConflict) string {
			var adopted string
			switch {
			case sr.AdoptedState != nil:
				adopted = fmt.Sprintf("shift %v", *sr.AdoptedState)
			case sr.AdoptedProduction != nil:
				adopted = fmt.Sprintf("reduce %v", *sr.AdoptedProduction)
			default:
				adopted = "error"
			}
			var resolvedBy string
			switch sr.ResolvedBy {
			case gspec.ResolvedByPrec:
				if sr.AdoptedState != nil {
					resolvedBy = fmt.Sprintf("symbol %v has higher precedence than production %v", termName(sr.Symbol), sr.Production)
				} else {
					resolvedBy = fmt.Sprintf("production %v has higher precedence than symbol %v", sr.Production, termName(sr.Symbol))
				}
			case gspec.ResolvedByAssoc:
				resolvedBy = fmt.Sprintf("symbol %v and production %v have the same precedence, and the associativity is %v", termName(sr.Symbol), sr.Production, assocName(report.Productions[sr.Production].Associativity))
			case gspec.ResolvedByShift:
				resolvedBy = fmt.Sprintf("symbol %v and production %v don't define a precedence comparison (default rule)", termName(sr.Symbol), sr.Production)
			default:
				resolvedBy = "?"
			}
			return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: %v adopted because %v", sr.State, sr.Production, termName(sr.Symbol), adopted, resolvedBy)
		},
		"printRRConflict": func(rr *gspec.RRConflict) string {
			var resolvedBy string
			switch rr.ResolvedBy {
			case gspec.ResolvedByProdOrder:
				resolvedBy = fmt.Sprintf("production %v is declared before production %v (default rule)", rr.AdoptedProduction, otherProd(rr))
			default:
				resolvedBy = "?"
			}
			return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted because %v", rr.Production1, rr.Production2, termName(rr.Symbol), rr.AdoptedProduction, resolvedBy)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, report)
	if err != nil {
		return err
	}

	return nil
}

func otherProd(rr *gspec.RRConflict) int {
	if rr.AdoptedProduction == rr.Production1 {
		return rr.Production2
	}
	return rr.Production1
}
