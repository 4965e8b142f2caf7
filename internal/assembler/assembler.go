// Package assembler turns the ternary-flavored text dialect into an
// ordered instruction list, and renders instructions back to that same
// textual presentation for disassembly.
package assembler

import (
	"strconv"
	"strings"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/ternary"
	"github.com/tritvm/tervm/internal/value"
)

// stringPool interns NFC-normalized string literals within one Assemble
// call: repeated occurrences of the same literal share one normalized
// backing string rather than each carrying its own unnormalized copy.
type stringPool struct {
	seen map[string]string
}

func newStringPool() *stringPool {
	return &stringPool{seen: make(map[string]string)}
}

func (p *stringPool) intern(s string) string {
	norm := value.NormalizeStr(s)
	if existing, ok := p.seen[norm]; ok {
		return existing
	}
	p.seen[norm] = norm
	return norm
}

// Result is the output of Assemble: the instructions that were
// successfully resolved, plus one diagnostic per unknown mnemonic. A
// non-empty Diagnostics does not mean Instructions is empty — assembly
// never fails fatally on a bad mnemonic, it just skips that line.
type Result struct {
	Instructions []opcode.Instruction
	Diagnostics  []*asmerr.Diagnostic
}

var nilWords = map[string]bool{"없다": true, "없음": true, "nil": true, "NIL": true}
var trueWords = map[string]bool{"참": true, "true": true, "TRUE": true}
var falseWords = map[string]bool{"거짓": true, "false": true, "FALSE": true}

// tritLetters is the assembler's own single-letter Trit literal set,
// narrower than ternary.ParseTrit's full alias set: only the bare
// uppercase letters P/O/T, not digits or lowercase forms, so a numeric
// token like "0" still parses as Int(0).
var tritLetters = map[string]ternary.Trit{"P": ternary.P, "O": ternary.Z, "T": ternary.N}

// Assemble parses source text per line: strip whitespace, skip comments,
// truncate inline comments, resolve the mnemonic, and tokenize operands.
func Assemble(source string) Result {
	var res Result
	pool := newStringPool()

	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimLeft(raw, " \t")

		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}

		mnemonic, operandRegion := splitMnemonic(line)

		addr, ok := opcode.Resolve(mnemonic)
		if !ok {
			res.Diagnostics = append(res.Diagnostics, asmerr.NewDiagnostic(
				asmerr.Position{Line: lineNum},
				"unknown mnemonic "+mnemonic,
				source, "",
			))
			continue
		}

		operands := tokenizeOperands(operandRegion, pool)
		res.Instructions = append(res.Instructions, opcode.New(addr, operands...))
	}

	return res
}

// splitMnemonic splits a comment-stripped, trimmed line into its
// mnemonic and the remaining operand region at the first whitespace.
func splitMnemonic(line string) (string, string) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimLeft(line[idx+1:], " \t")
}

// tokenizeOperands splits the operand region by commas then whitespace,
// parsing each token in turn. Tokens that are empty after trimming
// produce no operand.
func tokenizeOperands(region string, pool *stringPool) []value.Value {
	if region == "" {
		return nil
	}

	var tokens []string
	for _, part := range strings.Split(region, ",") {
		tokens = append(tokens, strings.Fields(part)...)
	}

	operands := make([]value.Value, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		operands = append(operands, parseToken(tok, pool))
	}
	return operands
}

// parseToken applies the first-match-wins operand grammar.
func parseToken(tok string, pool *stringPool) value.Value {
	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value.Str(pool.intern(tok[1 : len(tok)-1]))
		}
	}

	if nilWords[tok] {
		return value.Nil()
	}
	if trueWords[tok] {
		return value.Bool(true)
	}
	if falseWords[tok] {
		return value.Bool(false)
	}
	if t, ok := tritLetters[tok]; ok {
		return value.TritValue(t)
	}

	if strings.Contains(tok, ".") {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return value.Float(f)
		}
	}

	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return value.Int(i)
	}

	return value.Str(pool.intern(tok))
}
