package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check schema.yaml",
	Short:        "Check a schema and report every problem found",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func init() {
	addAnalysisFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := analyzeFile(args[0])
	if err != nil {
		return err
	}
	if a.errs.HasError() {
		cmd.PrintErr(formatErrors(a.errs, a.fset))
		return fmt.Errorf("%d errors found in %s", a.errs.Len(), args[0])
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d declarations)\n", args[0], len(a.result.EvaluationOrder()))
	return nil
}
