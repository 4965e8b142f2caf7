package cmd

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tervm",
	Short: "Balanced-ternary VM assembler, runner, and WASM compiler",
	Long: `tervm assembles the ternary-flavored source dialect into bytecode,
runs it on the stack VM, serializes/analyzes the compact binary
bytecode format, and lowers assembled programs to a binary WebAssembly
module.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
