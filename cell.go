package spreadsheet

import (
	"strings"

	"github.com/Chelicerae-dev/cpp-spreadsheet/internal/formula"
)

// contentKind tags which alternative of Cell.content is live.
type contentKind uint8

const (
	contentEmpty contentKind = iota
	contentText
	contentFormula
)

// Cell owns its content and the two edge sets that make up the dependency
// graph. Edges live here, not inside the formula adapter, so replacing a
// Formula with Text never loses the reverse edges other cells hold into
// this one.
type Cell struct {
	sheet *Sheet
	pos   Position

	kind     contentKind
	textID   uint32 // valid when kind == contentText; interned via sheet.strings
	formula  *formula.Formula
	cache    Value
	hasCache bool

	// outgoing holds the cells this cell's formula directly references.
	// incoming holds the cells whose formulas directly reference this one.
	// outgoing is nil for a non-formula cell; incoming is nil or empty when
	// no formula references this cell.
	outgoing map[*Cell]struct{}
	incoming map[*Cell]struct{}
}

func newCell(sheet *Sheet, pos Position) *Cell {
	return &Cell{sheet: sheet, pos: pos, kind: contentEmpty}
}

// Position returns the cell's owning coordinate.
func (c *Cell) Position() Position { return c.pos }

// isEmpty reports whether c holds the Empty content variant. Used by
// GetPrintableSize to exclude auto-materialized or cleared-but-referenced
// cells from the printable region.
func (c *Cell) isEmpty() bool { return c.kind == contentEmpty }

// GetText returns the cell's stored text: "" for Empty, the literal text
// (including a preserved leading apostrophe) for Text, or "=" + the
// canonicalized expression for Formula.
func (c *Cell) GetText() string {
	switch c.kind {
	case contentText:
		s, _ := c.sheet.strings.get(c.textID)
		return s
	case contentFormula:
		return "=" + c.formula.CanonicalExpression()
	default:
		return ""
	}
}

// GetValue returns the cell's computed value, evaluating and caching a
// Formula cell's result on a cache miss.
func (c *Cell) GetValue() Value {
	switch c.kind {
	case contentEmpty:
		return NumberValue(0)
	case contentText:
		s, _ := c.sheet.strings.get(c.textID)
		return TextValue(strings.TrimPrefix(s, "'"))
	case contentFormula:
		if c.hasCache {
			return c.cache
		}
		v := c.evaluate()
		if v.Kind == ValueNumber {
			c.cache = v
			c.hasCache = true
		}
		return v
	default:
		return NumberValue(0)
	}
}

// GetReferencedCells returns the cells this cell's formula directly
// references, in the formula adapter's stable row-major order. It is empty
// for non-formula cells.
func (c *Cell) GetReferencedCells() []Position {
	if c.kind != contentFormula {
		return nil
	}
	refs := c.formula.References()
	out := make([]Position, len(refs))
	for i, r := range refs {
		out[i] = Position{Row: r.Row, Col: r.Col}
	}
	return out
}

func (c *Cell) evaluate() Value {
	result := c.formula.Evaluate(func(r formula.Ref) formula.CellValue {
		referent := c.sheet.cellAt(Position{Row: r.Row, Col: r.Col})
		if referent == nil {
			return formula.CellValue{Kind: formula.KindNumber, Number: 0}
		}
		return toFormulaCellValue(referent.GetValue())
	})
	return fromEvalResult(result)
}

func toFormulaCellValue(v Value) formula.CellValue {
	switch v.Kind {
	case ValueNumber:
		return formula.CellValue{Kind: formula.KindNumber, Number: v.Number}
	case ValueText:
		return formula.CellValue{Kind: formula.KindText, Text: v.Text}
	case ValueError:
		return formula.CellValue{Kind: formula.KindError, Err: toFormulaErrCategory(v.Err.Category)}
	default:
		return formula.CellValue{Kind: formula.KindNumber, Number: 0}
	}
}

func fromEvalResult(r formula.EvalResult) Value {
	switch r.Kind {
	case formula.KindNumber:
		return NumberValue(r.Number)
	default:
		return NewErrorValue(fromFormulaErrCategory(r.Err))
	}
}

func toFormulaErrCategory(c ErrorCategory) formula.ErrorCategory {
	switch c {
	case ErrorRef:
		return formula.ErrRef
	case ErrorArithmetic:
		return formula.ErrArithmetic
	default:
		return formula.ErrValue
	}
}

func fromFormulaErrCategory(c formula.ErrorCategory) ErrorCategory {
	switch c {
	case formula.ErrRef:
		return ErrorRef
	case formula.ErrArithmetic:
		return ErrorArithmetic
	default:
		return ErrorValue
	}
}

// set runs the six-step atomic editor protocol: build tentative content,
// materialize formula referents, cycle-check, commit, rewire edges,
// invalidate dependents. On any failure c is left completely unchanged.
func (c *Cell) set(text string) error {
	if text == "" {
		c.clear()
		return nil
	}
	if text[0] != '=' || len(text) == 1 {
		c.commitText(text)
		return nil
	}

	expr := text[1:]
	parsed, err := formula.Parse(expr, MaxRows, MaxCols)
	if err != nil {
		return newFormulaException(err)
	}

	referents := make([]*Cell, 0, len(parsed.References()))
	for _, r := range parsed.References() {
		referents = append(referents, c.sheet.ensureCell(Position{Row: r.Row, Col: r.Col}))
	}

	for _, referent := range referents {
		if hasPathTo(referent, c) {
			return newCircularDependency(c.pos)
		}
	}

	c.detachOutgoing()
	c.kind = contentFormula
	c.formula = parsed
	c.hasCache = false
	c.textID = 0

	for _, referent := range referents {
		c.addOutgoing(referent)
	}

	invalidate(c)
	return nil
}

// clear is the tentative-Empty specialization of set: steps 4-6 only, per
// the distilled protocol (an Empty cell has no referents to materialize or
// cycle-check).
func (c *Cell) clear() {
	c.detachOutgoing()
	if c.kind == contentText && c.textID != 0 {
		c.sheet.strings.release(c.textID)
	}
	c.kind = contentEmpty
	c.formula = nil
	c.hasCache = false
	c.textID = 0
	invalidate(c)
}

func (c *Cell) commitText(text string) {
	c.detachOutgoing()
	if c.kind == contentText && c.textID != 0 {
		c.sheet.strings.release(c.textID)
	}
	c.kind = contentText
	c.textID = c.sheet.strings.intern(text)
	c.formula = nil
	c.hasCache = false
	invalidate(c)
}

func (c *Cell) addOutgoing(referent *Cell) {
	if c.outgoing == nil {
		c.outgoing = make(map[*Cell]struct{})
	}
	c.outgoing[referent] = struct{}{}
	if referent.incoming == nil {
		referent.incoming = make(map[*Cell]struct{})
	}
	referent.incoming[c] = struct{}{}
}

// detachOutgoing removes every edge c currently holds as a source,
// preserving incoming edges held by other cells (they still need to know a
// formula elsewhere depends on this one's new content).
func (c *Cell) detachOutgoing() {
	for referent := range c.outgoing {
		delete(referent.incoming, c)
	}
	c.outgoing = nil
}
