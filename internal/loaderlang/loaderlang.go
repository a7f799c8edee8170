// Package loaderlang implements the gld request language's surface
// syntax (spec.md §6.2): splitting a stream of line-terminated commands
// that may embed literal newlines inside parentheses or quotes,
// resolving `$var`/`$var.N1.N2…` references with signed,
// overflow-checked, negative-from-end indexing, recognizing `var =
// (expr)` and conditional `var => (expr)` assignment forms, and
// rewriting a bare expression to a `write` command.
//
// Grounded on pkg/utils/validation.go's small hand-written lexical
// helpers (teacher repo 2lar-b2/backend2) — ValidateUUID's byte-by-byte
// regex-free structural check and ValidateStringLength's length-bound
// pattern — generalized from fixed-shape validators into the gld
// tokenizer's paren/quote-depth scan and dot_number's signed bounds
// check.
package loaderlang

import (
	"strconv"
	"strings"
)

// NextExpression splits the leading command off input: a line-terminated
// command whose embedded newlines inside `(...)` or `"..."` do not
// terminate it. It returns the command (without its trailing newline),
// the remainder of input, and ok=false if input holds no complete
// command (the caller should read more bytes).
func NextExpression(input string) (expr string, rest string, ok bool) {
	depth := 0
	inQuote := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '"' && (i == 0 || input[i-1] != '\\'):
			inQuote = !inQuote
		case inQuote:
			// newline and parens inside a quote are literal.
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == '\n' && depth == 0:
			return input[:i], input[i+1:], true
		}
	}
	return "", input, false
}

// dotNumber parses one signed path segment of a $var.N1.N2… reference.
// It rejects an empty digit run and reports an overflow the same way
// strconv does (spec.md §8: "dot_number rejects empty digits, detects
// overflow, supports signed").
func dotNumber(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "" {
		return 0, false
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VarRef is a parsed `$var` or `$var.N1.N2…` reference.
type VarRef struct {
	Name string
	Path []int64
}

// ParseVarRef parses tok as a variable reference. ok is false if tok
// does not start with "$", or any dot-path segment fails dotNumber.
func ParseVarRef(tok string) (VarRef, bool) {
	if len(tok) == 0 || tok[0] != '$' {
		return VarRef{}, false
	}
	parts := strings.Split(tok[1:], ".")
	ref := VarRef{Name: parts[0]}
	for _, seg := range parts[1:] {
		n, ok := dotNumber(seg)
		if !ok {
			return VarRef{}, false
		}
		ref.Path = append(ref.Path, n)
	}
	return ref, true
}

// ResolveIndex maps a dot_number path segment n against a list of the
// given length: non-negative n indexes from the front, negative n
// indexes from the end (len+n). Out of range reports ok=false; the
// caller logs and returns null, per spec.md §6.2/§8 — ResolveIndex
// itself never errors.
func ResolveIndex(length int, n int64) (index int, ok bool) {
	idx := n
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

// AssignmentKind distinguishes an unconditional from a conditional
// assignment.
type AssignmentKind int

const (
	// NotAssignment means the line is not of either assignment shape.
	NotAssignment AssignmentKind = iota
	Unconditional
	Conditional
)

// Assignment is a parsed `var = (expr)` or `var => (expr)` command.
type Assignment struct {
	Var  string
	Expr string
	Kind AssignmentKind
}

// ParseAssignment recognizes the two assignment forms. Conditional
// assignment (`=>`) means "skip the send if var already exists," which
// ParseAssignment only tags; evaluating that condition is the caller's
// job (it owns the variable table).
func ParseAssignment(line string) (Assignment, bool) {
	if idx := strings.Index(line, "=>"); idx >= 0 {
		return Assignment{
			Var:  strings.TrimSpace(line[:idx]),
			Expr: strings.TrimSpace(line[idx+2:]),
			Kind: Conditional,
		}, true
	}
	if idx := strings.Index(line, "="); idx >= 0 {
		return Assignment{
			Var:  strings.TrimSpace(line[:idx]),
			Expr: strings.TrimSpace(line[idx+1:]),
			Kind: Unconditional,
		}, true
	}
	return Assignment{}, false
}

// explicitVerbs are the request verbs a command may already start with;
// anything else gets rewritten with a "write " prefix (spec.md §6.2).
var explicitVerbs = map[string]bool{"read": true, "write": true, "set": true, "status": true}

// RewriteImplicitWrite prepends "write " to line if its first
// whitespace-delimited token is not one of read/write/set/status.
func RewriteImplicitWrite(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	first := trimmed
	if sp := strings.IndexAny(trimmed, " \t"); sp >= 0 {
		first = trimmed[:sp]
	}
	if explicitVerbs[first] {
		return line
	}
	return "write " + line
}

// Outstanding-request window bounds (spec.md §6.2).
const (
	MinOutstanding = 512
	MaxOutstanding = 1024
)

// Window bounds the number of requests in flight between MinOutstanding
// and MaxOutstanding: Admit refuses once the high watermark is reached,
// and the caller is expected to keep issuing new requests once the
// count drops back toward MinOutstanding rather than stalling at zero.
type Window struct {
	outstanding int
}

// NewWindow creates an empty Window.
func NewWindow() *Window { return &Window{} }

// Admit reports whether one more request may be sent, bumping the
// outstanding count if so.
func (w *Window) Admit() bool {
	if w.outstanding >= MaxOutstanding {
		return false
	}
	w.outstanding++
	return true
}

// Release records that one outstanding request completed.
func (w *Window) Release() {
	if w.outstanding > 0 {
		w.outstanding--
	}
}

// Outstanding reports the current in-flight count.
func (w *Window) Outstanding() int { return w.outstanding }

// BelowLowWatermark reports whether the window has room to refill well
// below the ceiling, the point at which a driver loop should start
// issuing new requests again.
func (w *Window) BelowLowWatermark() bool { return w.outstanding < MinOutstanding }
