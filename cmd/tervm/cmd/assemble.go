package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/assembler"
	"github.com/tritvm/tervm/internal/bytecode"
)

var assembleOutput string

var assembleCmd = &cobra.Command{
	Use:   "assemble <file>",
	Short: "Assemble source text to a bytecode file",
	Long: `Assemble a .tva source file into the compact binary bytecode format.

Examples:
  tervm assemble program.tva -o program.tvc`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "", "output file (default: <input>.tvc)")
}

func runAssemble(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "assembling %s...\n", filename)
	}

	res := assembler.Assemble(string(content))
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(os.Stderr, asmerr.FormatDiagnostics(res.Diagnostics, true))
	}

	out, err := bytecode.Serialize(res.Instructions)
	if err != nil {
		return fmt.Errorf("failed to serialize bytecode: %w", err)
	}

	outFile := assembleOutput
	if outFile == "" {
		outFile = strings.TrimSuffix(filename, ".tva") + ".tvc"
	}
	if err := os.WriteFile(outFile, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	fmt.Printf("assembled %d instruction(s) -> %s\n", len(res.Instructions), outFile)
	return nil
}
