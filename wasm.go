//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/tenet/cmd"
)

func main() {
	js.Global().Set("CheckAndShowPlan", js.FuncOf(cmd.CheckAndShowPlan))

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
