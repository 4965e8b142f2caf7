// Package asmerr formats assembler diagnostics and VM runtime errors with
// source context: a header line, the offending source line, and a caret
// pointing at the error column.
package asmerr

import (
	"fmt"
	"strings"
)

// Position locates a diagnostic within source text. Column is 1-based and
// may be zero when only a line is known.
type Position struct {
	Line   int
	Column int
}

// Diagnostic is a single assembler or VM error with position and source
// context.
type Diagnostic struct {
	Message string
	Source  string
	File    string
	Pos     Position
}

// NewDiagnostic creates a diagnostic at pos.
func NewDiagnostic(pos Position, message, source, file string) *Diagnostic {
	return &Diagnostic{
		Pos:     pos,
		Message: message,
		Source:  source,
		File:    file,
	}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source-line gutter and a caret
// under the error column. If color is true, ANSI codes highlight the
// caret and message for terminal output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", d.File, d.Pos.Line, d.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", d.Pos.Line, d.Pos.Column))
	}

	sourceLine := d.getSourceLine(d.Pos.Line)
	if sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		if d.Pos.Column > 0 {
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

// getSourceLine extracts a 1-indexed line from Source.
func (d *Diagnostic) getSourceLine(lineNum int) string {
	if d.Source == "" {
		return ""
	}

	lines := strings.Split(d.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}

	return lines[lineNum-1]
}

// getSourceContext returns lines from (lineNum-before) to (lineNum+after).
func (d *Diagnostic) getSourceContext(lineNum, before, after int) []string {
	if d.Source == "" {
		return nil
	}

	lines := strings.Split(d.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return nil
	}

	start := lineNum - before
	if start < 1 {
		start = 1
	}

	end := lineNum + after
	if end > len(lines) {
		end = len(lines)
	}

	return lines[start-1 : end]
}

// FormatWithContext formats the diagnostic with surrounding source lines.
func (d *Diagnostic) FormatWithContext(contextLines int, color bool) string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", d.File, d.Pos.Line, d.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", d.Pos.Line, d.Pos.Column))
	}

	lines := d.getSourceContext(d.Pos.Line, contextLines, contextLines)
	if len(lines) == 0 {
		return d.Format(color)
	}

	startLine := d.Pos.Line - contextLines
	if startLine < 1 {
		startLine = 1
	}

	for i, line := range lines {
		currentLine := startLine + i
		lineNumStr := fmt.Sprintf("%4d | ", currentLine)

		if currentLine == d.Pos.Line {
			if color {
				sb.WriteString("\033[1m")
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")

			if d.Pos.Column > 0 {
				sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Pos.Column-1))
				if color {
					sb.WriteString("\033[1;31m")
				}
				sb.WriteString("^")
				if color {
					sb.WriteString("\033[0m")
				}
				sb.WriteString("\n")
			}
		} else {
			if color {
				sb.WriteString("\033[2m")
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

// FormatDiagnostics formats a batch of diagnostics, numbering them when
// there is more than one.
func FormatDiagnostics(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}

	if len(diags) == 1 {
		return diags[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("assembly produced %d diagnostic(s):\n\n", len(diags)))

	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}
