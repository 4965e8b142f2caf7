package asmerr

import "fmt"

// Kind enumerates the VM/codec error taxonomy from the runtime facade's
// error-handling design.
type Kind int

const (
	MagicMismatch Kind = iota
	UnsupportedVersion
	Truncated
	UnknownTag
	StackUnderflow
	TypeMismatch
	DivisionByZero
	InvalidAddress
	BudgetExceeded
	InvalidJumpTarget
	MissingOperand
	Custom
)

var kindNames = [...]string{
	"MagicMismatch",
	"UnsupportedVersion",
	"Truncated",
	"UnknownTag",
	"StackUnderflow",
	"TypeMismatch",
	"DivisionByZero",
	"InvalidAddress",
	"BudgetExceeded",
	"InvalidJumpTarget",
	"MissingOperand",
	"Custom",
}

// String renders the kind's name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// VmError is a typed runtime error raised by a failing step. It pins the
// instruction pointer and the failing address so a debugger (or a test)
// can report exactly where execution stopped.
type VmError struct {
	Kind    Kind
	Message string
	IP      int
	Sector  int
	Group   int
	Command int
	Trace   StackTrace
}

// NewVmError builds a VmError for the instruction at ip with address
// (sector,group,command).
func NewVmError(kind Kind, ip, sector, group, command int, format string, args ...interface{}) *VmError {
	return &VmError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		IP:      ip,
		Sector:  sector,
		Group:   group,
		Command: command,
	}
}

// Error implements the error interface.
func (e *VmError) Error() string {
	return e.Format(false)
}

// Format renders the error as one header line giving the ip, the failing
// address, the message and the kind, followed by the call-frame trace
// (newest frame first) when one is attached. Unlike a Diagnostic it
// shows no source line or caret.
func (e *VmError) Format(color bool) string {
	header := fmt.Sprintf("runtime error at ip=%d (%d,%d,%d): %s [%s]",
		e.IP, e.Sector, e.Group, e.Command, e.Message, e.Kind)
	if len(e.Trace) == 0 {
		return header
	}
	return header + "\n" + e.Trace.String()
}
