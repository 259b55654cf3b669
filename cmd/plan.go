package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cottand/tenet/frontend"
	"github.com/cottand/tenet/frontend/analyzer"
	"github.com/cottand/tenet/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var PlanCmd = &cobra.Command{
	Use:          "plan schema.yaml",
	Short:        "Show the evaluation plan of a schema: order, types, broadcasting and loops",
	RunE:         runPlan,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var outputFormat string

func init() {
	addAnalysisFlags(PlanCmd)
	PlanCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format, text or yaml")
}

type planReport struct {
	EvaluationOrder []string   `yaml:"evaluation_order,flow"`
	Declarations    []declPlan `yaml:"declarations"`
}

type declPlan struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type,omitempty"`
	Broadcast string   `yaml:"broadcast"`
	Source    string   `yaml:"source,omitempty"`
	Dims      []string `yaml:"dims,flow,omitempty"`
	Reducer   string   `yaml:"reducer,omitempty"`
	Loops     []string `yaml:"loops,flow"`
	DependsOn []string `yaml:"depends_on,flow,omitempty"`
}

func buildPlan(res *frontend.Result) planReport {
	report := planReport{EvaluationOrder: res.EvaluationOrder()}
	declTypes := res.DeclTypes()
	classes := res.Broadcasts().Classifications
	contexts := res.ExecutionContexts()
	graph := res.DependencyGraph()

	for _, name := range res.EvaluationOrder() {
		class := classes[name]
		plan := declPlan{
			Name:      name,
			Broadcast: class.Kind.String(),
			Source:    class.Source,
			Dims:      class.Dims,
			Reducer:   class.Function,
			Loops:     contexts[name].Dims,
		}
		if t, ok := declTypes[name]; ok {
			plan.Type = t.TypeName()
		}
		deps := util.NewOrderedSet[string]()
		for _, e := range graph[name] {
			deps.Insert(e.To)
		}
		plan.DependsOn = deps.Slice()
		report.Declarations = append(report.Declarations, plan)
	}
	return report
}

func writePlan(w io.Writer, report planReport, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("could not encode plan: %w", err)
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "#\tDECLARATION\tTYPE\tBROADCAST\tLOOPS\tDEPENDS ON")
		for i, d := range report.Declarations {
			broadcast := d.Broadcast
			if d.Broadcast != analyzer.Scalar.String() {
				broadcast = fmt.Sprintf("%s[%s]", broadcast, strings.Join(d.Dims, "."))
			}
			if d.Reducer != "" {
				broadcast += " by " + d.Reducer
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1, d.Name, d.Type, broadcast, strings.Join(d.Loops, "."), strings.Join(d.DependsOn, ", "))
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := analyzeFile(args[0])
	if err != nil {
		return err
	}
	if a.errs.HasError() {
		cmd.PrintErr(formatErrors(a.errs, a.fset))
		return fmt.Errorf("%d errors found in %s", a.errs.Len(), args[0])
	}
	return writePlan(cmd.OutOrStdout(), buildPlan(a.result), outputFormat)
}
