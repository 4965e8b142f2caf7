package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/assembler"
	"github.com/tritvm/tervm/internal/bytecode"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/vm"
)

var maxCycles uint64

var runCmd = &cobra.Command{
	Use:   "run <file.tva|file.tvc>",
	Short: "Assemble (if source) or load (if bytecode) and run to halt",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "cycle budget (0 = unbounded)")
}

func runRun(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	instrs, err := loadProgram(filename, content)
	if err != nil {
		return err
	}

	stdinReader := bufio.NewReader(os.Stdin)
	machine := vm.New(
		vm.WithSink(vm.WriterSink(os.Stdout)),
		vm.WithSource(func() (string, error) {
			line, err := stdinReader.ReadString('\n')
			return strings.TrimRight(line, "\r\n"), err
		}),
		vm.WithMaxCycles(maxCycles),
	)
	machine.Load(instrs)

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		top, _ := machine.StackTop()
		fmt.Printf("state: N  top: %s\n", top.Display())
		return err
	}

	top, ok := machine.StackTop()
	state := "P"
	if !ok {
		fmt.Printf("state: %s  (empty stack)\n", state)
		return nil
	}
	fmt.Printf("state: %s  top: %s\n", state, top.Display())
	return nil
}

// loadProgram assembles filename's content if it looks like source
// (extension other than .tvc), otherwise deserializes it as bytecode.
func loadProgram(filename string, content []byte) ([]opcode.Instruction, error) {
	if strings.HasSuffix(filename, ".tvc") {
		instrs, err := bytecode.Deserialize(content)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize %s: %w", filename, err)
		}
		return instrs, nil
	}

	res := assembler.Assemble(string(content))
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(os.Stderr, asmerr.FormatDiagnostics(res.Diagnostics, true))
	}
	return res.Instructions, nil
}
