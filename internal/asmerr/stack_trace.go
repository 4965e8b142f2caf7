package asmerr

import (
	"fmt"
	"strings"
)

// StackFrame is a single call-frame entry captured for a VM trace: the
// instruction pointer the call returns to, and the function's entry
// address when known.
type StackFrame struct {
	ReturnIP     int
	FunctionName string
	EntryAddress int
}

// String renders a frame as "FunctionName [return ip: N]".
func (sf StackFrame) String() string {
	if sf.FunctionName == "" {
		return fmt.Sprintf("[return ip: %d]", sf.ReturnIP)
	}
	return fmt.Sprintf("%s [return ip: %d]", sf.FunctionName, sf.ReturnIP)
}

// StackTrace is a call stack, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String prints newest frame first, one per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Reverse returns a copy with frames newest-first.
func (st StackTrace) Reverse() StackTrace {
	reversed := make(StackTrace, len(st))
	for i, frame := range st {
		reversed[len(st)-1-i] = frame
	}
	return reversed
}

// Top returns the most recent frame, or nil if empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Bottom returns the oldest frame, or nil if empty.
func (st StackTrace) Bottom() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[0]
}

// Depth returns the number of frames.
func (st StackTrace) Depth() int {
	return len(st)
}

// NewStackFrame builds a frame for a CALL at returnIP into entryAddress.
func NewStackFrame(functionName string, returnIP, entryAddress int) StackFrame {
	return StackFrame{
		FunctionName: functionName,
		ReturnIP:     returnIP,
		EntryAddress: entryAddress,
	}
}

// NewStackTrace creates an empty trace.
func NewStackTrace() StackTrace {
	return make(StackTrace, 0)
}
