package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/assembler"
	"github.com/tritvm/tervm/internal/ir"
	"github.com/tritvm/tervm/internal/wasmgen"
)

var wasmOutput string

var wasmCmd = &cobra.Command{
	Use:   "wasm <file.tva>",
	Short: "Assemble then lower to a binary WebAssembly module",
	Args:  cobra.ExactArgs(1),
	RunE:  runWasm,
}

func init() {
	rootCmd.AddCommand(wasmCmd)
	wasmCmd.Flags().StringVarP(&wasmOutput, "output", "o", "", "output file (default: <input>.wasm)")
}

func runWasm(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	res := assembler.Assemble(string(content))
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(os.Stderr, asmerr.FormatDiagnostics(res.Diagnostics, true))
	}

	mod := ir.Lower(res.Instructions)
	out, err := wasmgen.Emit(mod)
	if err != nil {
		return fmt.Errorf("failed to emit wasm: %w", err)
	}

	outFile := wasmOutput
	if outFile == "" {
		outFile = strings.TrimSuffix(filename, ".tva") + ".wasm"
	}
	if err := os.WriteFile(outFile, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	fmt.Printf("emitted %d byte(s) -> %s\n", len(out), outFile)
	return nil
}
