// Package analyzer turns a syntax tree into a typed, ordered and dimension-annotated
// semantic model.
//
// Analysis is a list of passes run in order by a Manager. Each Pass reads the
// artifacts of earlier passes from an immutable State and returns a new State
// with its own artifacts added, along with any diagnostics.
package analyzer

import (
	"log/slog"
	"slices"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/internal/log"
	"github.com/pkg/errors"
)

var logger = ast.ExprLogger(log.DefaultLogger).With("section", "analyzer")

// Pass is a single analysis step. Passes must not modify schema nor any value
// already stored in state, and report problems with the schema as errors rather than panicking.
type Pass interface {
	Name() string
	Run(schema *ast.Schema, state State) (State, *ilerr.Errors)
}

// Hook is called around each pass with its index in the pipeline
type Hook func(phase int, pass string, state State)

type Options struct {
	// StopAfter halts cleanly after the pass with this name
	StopAfter  string
	BeforePass Hook
	AfterPass  Hook
}

type ExecutionResult struct {
	// State is the last valid state, which is partial if the run halted early
	State  State
	Errors *ilerr.Errors
	Failed bool
	// FailedPass and Phase identify the pass the run halted at when Failed
	FailedPass string
	Phase      int
	// Failure is set when the pass faulted rather than reporting errors
	Failure   *ilerr.PassFailure
	Completed []string
}

// Manager runs an ordered list of passes
type Manager struct {
	passes []Pass
	logger *slog.Logger
}

func NewManager(passes ...Pass) *Manager {
	return &Manager{
		passes: passes,
		logger: logger,
	}
}

// Passes returns the names of the passes of m, in order
func (m *Manager) Passes() []string {
	names := make([]string, len(m.passes))
	for i, p := range m.passes {
		names[i] = p.Name()
	}
	return names
}

// Run executes every pass in order, starting from state, and halts after the first
// pass that reports errors or faults.
//
// Problems with the schema are reported in the ExecutionResult. The returned error
// is only non-nil when the Manager is misused or a pass breaks its contract:
// this is a bug in the analyzer rather than in the schema.
func (m *Manager) Run(schema *ast.Schema, state State, opts Options) (ExecutionResult, error) {
	if !state.Valid() {
		return ExecutionResult{}, errors.New("initial state is not valid: use NewState")
	}
	if opts.StopAfter != "" && !slices.Contains(m.Passes(), opts.StopAfter) {
		return ExecutionResult{}, errors.Errorf("unknown pass %q to stop after (known: %v)", opts.StopAfter, m.Passes())
	}

	result := ExecutionResult{State: state}
	for phase, pass := range m.passes {
		name := pass.Name()
		if opts.BeforePass != nil {
			opts.BeforePass(phase, name, result.State)
		}
		m.logger.Debug("running pass", "pass", name, "phase", phase)

		next, errs, failure := m.runPass(phase, pass, schema, result.State)
		if failure != nil {
			m.logger.Warn("pass failed", "pass", name, "phase", phase, "cause", failure.Cause)
			result.Errors = result.Errors.With(*failure)
			result.Failed = true
			result.FailedPass = name
			result.Phase = phase
			result.Failure = failure
			return result, nil
		}
		if err := checkContract(result.State, next); err != nil {
			return result, errors.Wrapf(err, "pass %s (phase %d)", name, phase)
		}
		result.State = next
		result.Errors = result.Errors.Merge(errs)
		result.Completed = append(result.Completed, name)

		if opts.AfterPass != nil {
			opts.AfterPass(phase, name, result.State)
		}
		if errs.HasError() {
			m.logger.Debug("pass reported errors", "pass", name, "phase", phase, "errors", errs)
			result.Failed = true
			result.FailedPass = name
			result.Phase = phase
			return result, nil
		}
		if name == opts.StopAfter {
			m.logger.Debug("stopping early", "pass", name)
			return result, nil
		}
	}
	return result, nil
}

func (m *Manager) runPass(phase int, pass Pass, schema *ast.Schema, state State) (next State, errs *ilerr.Errors, failure *ilerr.PassFailure) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var cause error
		if err, ok := r.(error); ok {
			cause = errors.WithStack(err)
		} else {
			cause = errors.Errorf("%v", r)
		}
		f := ilerr.PassFailure{
			Pass:  pass.Name(),
			Phase: phase,
			Cause: cause,
		}
		if p, ok := r.(ast.Positioner); ok {
			f.Range = ast.RangeOf(p)
		}
		asFailure := ilerr.New(f).(ilerr.PassFailure)
		failure = &asFailure
	}()
	next, errs = pass.Run(schema, state)
	return next, errs, nil
}

// checkContract verifies that next was derived from prev, which only ever grows
func checkContract(prev, next State) error {
	if !next.Valid() {
		return errors.New("returned an invalid state")
	}
	for _, k := range prev.Keys() {
		if !next.Has(k) {
			return errors.Errorf("returned a state without %q", k)
		}
	}
	return nil
}
