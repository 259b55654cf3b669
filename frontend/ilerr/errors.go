package ilerr

import (
	"fmt"
	"log/slog"
	"slices"
)

// Errors accumulates the diagnostics of one or more passes.
// A nil *Errors is a valid, empty accumulator.
type Errors struct {
	errs []IleError
}

func (r *Errors) With(err ...IleError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

// OfKind returns the accumulated errors whose code belongs to kind
func (r *Errors) OfKind(kind Kind) []IleError {
	var matching []IleError
	for _, e := range r.Errors() {
		if e.Code().Kind() == kind {
			matching = append(matching, e)
		}
	}
	return matching
}

// HasKind reports whether any accumulated error belongs to kind
func (r *Errors) HasKind(kind Kind) bool {
	return slices.ContainsFunc(r.Errors(), func(e IleError) bool {
		return e.Code().Kind() == kind
	})
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
