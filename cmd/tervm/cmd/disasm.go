package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tritvm/tervm/internal/assembler"
	"github.com/tritvm/tervm/internal/bytecode"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.tvc>",
	Short: "Print the disassembly of a bytecode file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	instrs, err := bytecode.Deserialize(content)
	if err != nil {
		return fmt.Errorf("failed to deserialize %s: %w", filename, err)
	}

	fmt.Print(assembler.Text(instrs))
	return nil
}
