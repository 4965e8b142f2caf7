// Command tervm is the CLI front-end for the balanced-ternary VM
// toolchain: assemble, run, disassemble, analyze, and compile-to-WASM.
package main

import (
	"os"

	"github.com/tritvm/tervm/cmd/tervm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
