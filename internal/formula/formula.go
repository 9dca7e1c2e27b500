// Package formula wraps github.com/expr-lang/expr so the rest of the engine
// can treat "parse an expression, list what it references, evaluate it
// against a lookup callback" as a single black box, exactly the contract the
// core spreadsheet package is designed against. Nothing outside this package
// imports expr directly.
package formula

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Ref is a zero-based (row, col) coordinate extracted from an expression's
// identifiers. It mirrors spreadsheet.Position without importing it, so this
// package stays a leaf with no dependency back on its caller.
type Ref struct {
	Row int
	Col int
}

// ValueKind tags the alternative held by a CellValue supplied to Evaluate,
// or an EvalResult returned from it.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindText
	KindError
)

// ErrorCategory mirrors spreadsheet.ErrorCategory.
type ErrorCategory uint8

const (
	ErrRef ErrorCategory = iota + 1
	ErrValue
	ErrArithmetic
)

// CellValue is what a lookup callback hands back for a referenced cell.
type CellValue struct {
	Kind   ValueKind
	Number float64
	Text   string
	Err    ErrorCategory
}

// EvalResult is what Evaluate produces: either a Number or an Error, never
// Text (a formula can only ever resolve to a number or fail).
type EvalResult struct {
	Kind   ValueKind
	Number float64
	Err    ErrorCategory
}

func numberResult(n float64) EvalResult { return EvalResult{Kind: KindNumber, Number: n} }
func errorResult(c ErrorCategory) EvalResult {
	return EvalResult{Kind: KindError, Err: c}
}

// numberPattern is the exact accepted textual-number grammar from
// SPEC_FULL.md's coercion rule: optional leading '-', no leading zeros
// except a bare "0", optional fractional part. Leading '+', exponents, and
// whitespace are all rejected.
var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// identifier is one distinct variable name the parsed expression references,
// tagged with whether it resolves to a valid Ref.
type identifier struct {
	name     string
	ref      Ref
	inBounds bool
}

// Formula is a parsed, not-yet-evaluated expression together with its
// dependency list and a single-slot memoized numeric result.
type Formula struct {
	source      string // original text after the leading '='
	canonical   string
	program     *vm.Program
	identifiers []identifier
	refs        []Ref // in-bounds identifiers only, deduped + row-major sorted

	cached   bool
	cacheVal float64
}

// Parse parses expression (the text following a cell's leading '='),
// extracts its referenced identifiers, and returns a Formula ready for
// References()/CanonicalExpression()/Evaluate(). It never evaluates
// anything.
func Parse(expression string, maxRows, maxCols int) (*Formula, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}

	names := collectIdentifiers(tree)

	f := &Formula{
		source:    expression,
		canonical: normalizeWhitespace(expression),
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		row, col, ok := parseCellName(name)
		inBounds := ok && row >= 0 && row < maxRows && col >= 0 && col < maxCols
		f.identifiers = append(f.identifiers, identifier{
			name:     name,
			ref:      Ref{Row: row, Col: col},
			inBounds: inBounds,
		})
		if inBounds {
			f.refs = append(f.refs, Ref{Row: row, Col: col})
		}
	}

	sort.Slice(f.refs, func(i, j int) bool {
		if f.refs[i].Row != f.refs[j].Row {
			return f.refs[i].Row < f.refs[j].Row
		}
		return f.refs[i].Col < f.refs[j].Col
	})

	return f, nil
}

// References returns the ordered, unique, row-major-sorted set of in-bounds
// positions this formula reads from.
func (f *Formula) References() []Ref {
	out := make([]Ref, len(f.refs))
	copy(out, f.refs)
	return out
}

// CanonicalExpression returns the parsed source with whitespace normalized.
func (f *Formula) CanonicalExpression() string {
	return f.canonical
}

// InvalidateCache drops the memoized numeric result, if any.
func (f *Formula) InvalidateCache() {
	f.cached = false
}

// Evaluate resolves every referenced cell through lookup, coerces each to a
// number per SPEC_FULL.md's rules, and — only once every reference is a
// plain float64 — compiles and runs the expression. The Number cache is
// consulted first and populated on a successful (non-error) result.
func (f *Formula) Evaluate(lookup func(Ref) CellValue) EvalResult {
	if f.cached {
		return numberResult(f.cacheVal)
	}

	for _, id := range f.identifiers {
		if !id.inBounds {
			return errorResult(ErrRef)
		}
	}

	env := make(map[string]float64, len(f.identifiers))
	for _, id := range f.identifiers {
		value := lookup(id.ref)
		n, errCat, ok := coerceToNumber(value)
		if !ok {
			return errorResult(errCat)
		}
		env[id.name] = n
	}

	if f.program == nil {
		program, err := expr.Compile(f.source, expr.Env(env), expr.AllowUndefinedVariables())
		if err != nil {
			return errorResult(ErrArithmetic)
		}
		f.program = program
	}

	out, err := expr.Run(f.program, env)
	if err != nil {
		return errorResult(ErrArithmetic)
	}

	n, ok := toFloat(out)
	if !ok {
		return errorResult(ErrValue)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return errorResult(ErrArithmetic)
	}

	f.cached = true
	f.cacheVal = n
	return numberResult(n)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// coerceToNumber implements the numeric coercion rule from SPEC_FULL.md
// §4.3: numbers pass through, text is parsed against numberPattern or fails
// as Value, and errors propagate as-is.
func coerceToNumber(v CellValue) (float64, ErrorCategory, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, 0, true
	case KindText:
		if !numberPattern.MatchString(v.Text) {
			return 0, ErrValue, false
		}
		n, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return 0, ErrValue, false
		}
		return n, 0, true
	case KindError:
		return 0, v.Err, false
	default:
		return 0, ErrValue, false
	}
}

// identifierVisitor collects every *ast.IdentifierNode in first-appearance
// order. The Visit(node *ast.Node) shape is expr-lang's ast.Visitor
// contract.
type identifierVisitor struct {
	names []string
}

func (v *identifierVisitor) Visit(node *ast.Node) {
	if ident, ok := (*node).(*ast.IdentifierNode); ok {
		v.names = append(v.names, ident.Value)
	}
}

func collectIdentifiers(tree *parser.Tree) []string {
	visitor := &identifierVisitor{}
	ast.Walk(&tree.Node, visitor)
	return visitor.names
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// parseCellName splits an identifier like "BC204" into a zero-based (row,
// col) pair, the same A1 grammar spreadsheet.ParseAddress accepts. It is
// duplicated rather than imported: this package must stay a leaf with no
// dependency back on the root package that imports it.
func parseCellName(name string) (row, col int, ok bool) {
	i := 0
	for i < len(name) && isAddressLetter(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, false
	}
	colPart, rowPart := name[:i], name[i:]
	for j := 0; j < len(rowPart); j++ {
		if rowPart[j] < '0' || rowPart[j] > '9' {
			return 0, 0, false
		}
	}

	col = 0
	for j := 0; j < len(colPart); j++ {
		col = col*26 + int(upperByte(colPart[j])-'A'+1)
	}
	col--

	rowNum, err := strconv.Atoi(rowPart)
	if err != nil || rowNum < 1 {
		return 0, 0, false
	}
	return rowNum - 1, col, true
}

func isAddressLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
