// Package frontend is the entry point to the analyzer: it wires the default
// pipeline of passes and exposes their results.
package frontend

import (
	"github.com/cottand/tenet/frontend/analyzer"
	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/types"
	"github.com/cottand/tenet/internal/log"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "frontend")

// Settings configure a call to Analyze
type Settings struct {
	// Registry resolves the functions a schema calls. Defaults to registry.Builtins.
	Registry *registry.Registry
	// StopAfter names a pass after which analysis halts cleanly
	StopAfter string
	Hooks     Hooks
}

// Hooks observe the state around each pass, eg: for debugging or tooling
type Hooks struct {
	BeforePass analyzer.Hook
	AfterPass  analyzer.Hook
}

// Result is the semantic model of a schema
type Result struct {
	State analyzer.State
	// Completed lists the passes that ran, in order
	Completed []string
}

// Analyze runs every analysis pass over schema.
//
// Problems with the schema are returned as *ilerr.Errors, alongside the partial Result
// built up to the failing pass. A non-nil error means the analyzer itself
// was misused or is broken, and is not a problem with the schema.
func Analyze(schema *ast.Schema, settings Settings) (*Result, *ilerr.Errors, error) {
	if schema == nil {
		return nil, nil, errors.New("nil schema")
	}
	reg := settings.Registry
	if reg == nil {
		reg = registry.Builtins()
	}
	m := analyzer.NewManager(analyzer.DefaultPasses(reg)...)
	exec, err := m.Run(schema, analyzer.NewState(), analyzer.Options{
		StopAfter:  settings.StopAfter,
		BeforePass: settings.Hooks.BeforePass,
		AfterPass:  settings.Hooks.AfterPass,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not run analysis (this is a bug and not a schema error)")
	}
	if exec.Failed {
		logger.Debug("analysis failed", "pass", exec.FailedPass, "errors", exec.Errors)
	}
	return &Result{State: exec.State, Completed: exec.Completed}, exec.Errors, nil
}

// EvaluationOrder is empty if analysis halted before the Toposorter
func (r *Result) EvaluationOrder() analyzer.EvaluationOrder {
	order, _ := analyzer.Lookup[analyzer.EvaluationOrder](r.State, analyzer.KeyEvaluationOrder)
	return order
}

func (r *Result) DeclTypes() analyzer.DeclTypes {
	declTypes, _ := analyzer.Lookup[analyzer.DeclTypes](r.State, analyzer.KeyDeclTypes)
	return declTypes
}

// TypeOf returns the inferred type of the declaration name
func (r *Result) TypeOf(name string) (types.Type, bool) {
	t, ok := r.DeclTypes()[name]
	return t, ok
}

func (r *Result) Broadcasts() analyzer.Broadcasts {
	broadcasts, _ := analyzer.Lookup[analyzer.Broadcasts](r.State, analyzer.KeyBroadcasts)
	return broadcasts
}

func (r *Result) ExecutionContexts() analyzer.ExecutionContexts {
	contexts, _ := analyzer.Lookup[analyzer.ExecutionContexts](r.State, analyzer.KeyExecutionContexts)
	return contexts
}

func (r *Result) DependencyGraph() analyzer.DependencyGraph {
	graph, _ := analyzer.Lookup[analyzer.DependencyGraph](r.State, analyzer.KeyDependencyGraph)
	return graph
}
