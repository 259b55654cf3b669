package cmd

import (
	"fmt"
	"go/token"
	"os"
	"strings"

	"github.com/cottand/tenet/frontend"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/schemafile"
	"github.com/spf13/cobra"
)

var (
	registryPath string
	stopAfter    string
)

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&registryPath, "registry", "r", "", "YAML file of functions to register on top of the builtins")
	cmd.Flags().StringVar(&stopAfter, "stop-after", "", "name of the pass to stop the analysis after")
}

// loadRegistry returns the builtin functions, extended with those in the file at path if set
func loadRegistry(path string) (*registry.Registry, error) {
	builtins := registry.Builtins()
	if path == "" {
		return builtins, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open function registry: %w", err)
	}
	defer f.Close()
	fns, err := registry.LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("could not load function registry %s: %w", path, err)
	}
	return builtins.With(fns...)
}

type analysis struct {
	result *frontend.Result
	errs   *ilerr.Errors
	fset   *token.FileSet
}

func analyzeSource(name string, data []byte, settings frontend.Settings) (analysis, error) {
	schema, fset, err := schemafile.Parse(name, data)
	if err != nil {
		return analysis{}, err
	}
	res, errs, err := frontend.Analyze(schema, settings)
	if err != nil {
		return analysis{}, err
	}
	return analysis{result: res, errs: errs, fset: fset}, nil
}

func analyzeFile(path string) (analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis{}, fmt.Errorf("could not read schema: %w", err)
	}
	reg, err := loadRegistry(registryPath)
	if err != nil {
		return analysis{}, err
	}
	return analyzeSource(path, data, frontend.Settings{Registry: reg, StopAfter: stopAfter})
}

func formatErrors(errs *ilerr.Errors, fset *token.FileSet) string {
	sb := &strings.Builder{}
	for _, e := range errs.Errors() {
		sb.WriteString(ilerr.FormatWithPosition(e, fset))
		sb.WriteString("\n")
	}
	return sb.String()
}
