package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/gply/tester"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	gen *genFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  gply test calc.yaml test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.gen = addGenFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	desc, err := readDescription(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				pterm.Error.Println(fmt.Sprintf("Failed to read a test case or a directory: %v\n%v", c.FilePath, c.Error))
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t, err := tester.NewTester(desc, cs, testFlags.gen.options()...)
	if err != nil {
		return err
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
