package asmerr

import (
	"strings"
	"testing"
)

func TestDiagnosticFormat(t *testing.T) {
	d := NewDiagnostic(Position{Line: 2, Column: 5}, "unknown mnemonic WIBBLE", "PUSH 1\nWIBBLE 2\nHALT", "")
	out := d.Format(false)
	if !strings.Contains(out, "line 2:5") {
		t.Fatalf("expected header with line:column, got %q", out)
	}
	if !strings.Contains(out, "WIBBLE 2") {
		t.Fatalf("expected source line echoed, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret, got %q", out)
	}
}

func TestDiagnosticNoSource(t *testing.T) {
	d := NewDiagnostic(Position{Line: 1, Column: 1}, "boom", "", "")
	out := d.Format(false)
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected message present, got %q", out)
	}
}

func TestFormatDiagnosticsMultiple(t *testing.T) {
	d1 := NewDiagnostic(Position{Line: 1}, "first", "", "")
	d2 := NewDiagnostic(Position{Line: 2}, "second", "", "")
	out := FormatDiagnostics([]*Diagnostic{d1, d2}, false)
	if !strings.Contains(out, "2 diagnostic(s)") {
		t.Fatalf("expected count header, got %q", out)
	}
}

func TestVmErrorFormat(t *testing.T) {
	err := NewVmError(DivisionByZero, 3, 0, 1, 3, "division by zero")
	out := err.Error()
	if !strings.Contains(out, "ip=3") || !strings.Contains(out, "DivisionByZero") {
		t.Fatalf("unexpected VmError format: %q", out)
	}
}

func TestVmErrorWithTrace(t *testing.T) {
	err := NewVmError(StackUnderflow, 10, 0, 3, 1, "pop on empty stack")
	err.Trace = StackTrace{
		NewStackFrame("main", 0, 0),
		NewStackFrame("helper", 5, 20),
	}
	out := err.Format(false)
	if !strings.Contains(out, "helper") || !strings.Contains(out, "main") {
		t.Fatalf("expected trace frames in output: %q", out)
	}
}

func TestKindString(t *testing.T) {
	if BudgetExceeded.String() != "BudgetExceeded" {
		t.Fatalf("unexpected kind string: %s", BudgetExceeded.String())
	}
	if Kind(999).String() != "Unknown" {
		t.Fatal("expected Unknown for out-of-range kind")
	}
}
