package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tritvm/tervm/internal/bytecode"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.tvc>",
	Short: "Report the bytecode codec's header summary without a full decode",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	a, err := bytecode.Analyze(content)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", filename, err)
	}

	fmt.Printf("version:              %d\n", a.Version)
	fmt.Printf("instruction count:    %d\n", a.InstructionCount)
	fmt.Printf("total bytes:          %d\n", a.TotalBytes)
	fmt.Printf("mean bytes/instr:     %.2f\n", a.MeanBytesPerInstr)
	return nil
}
