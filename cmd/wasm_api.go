//go:build js && wasm

package cmd

import (
	"bytes"
	"fmt"
	"syscall/js"

	"github.com/cottand/tenet/frontend"
)

// CheckAndShowPlan analyzes the YAML schema in its first argument and returns
// its evaluation plan, or the error messages if the schema is not valid
func CheckAndShowPlan(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "analyzer panicked: " + fmt.Sprint(r)
		}
	}()

	a, err := analyzeSource("schema.yaml", []byte(args[0].String()), frontend.Settings{})
	if err != nil {
		return fmt.Sprintf("the analyzer encountered a failure:\n\n%s", err)
	}
	if a.errs.HasError() {
		return "the schema has the following errors:\n" + formatErrors(a.errs, a.fset)
	}
	buf := &bytes.Buffer{}
	if err := writePlan(buf, buildPlan(a.result), "text"); err != nil {
		return fmt.Sprintf("the analyzer encountered a failure:\n%s", err)
	}
	return buf.String()
}
