package eval

import (
	"strconv"
	"strings"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/sheet"
)

// Evaluate is the public entry point (spec §4.5 "Entry"): evaluate the
// formula or literal stored at (row, col) on sht, honoring the result
// cache. Returns a scratch-allocated node.
func Evaluate(rt Runtime, sht *sheet.Sheet, row, col int32) *arena.Node {
	return evalNode(rt, sht, row, col, nil)
}

// EvalNode evaluates a pre-parsed expression tree in the context of
// (row, col) on sht, without consulting that cell's own content. Exported
// for evaluate_string (spec §4.7), which parses ad-hoc formula text and
// evaluates it as if it were written into a cell it never actually owns.
func EvalNode(rt Runtime, sht *sheet.Sheet, row, col int32, node *arena.Node) *arena.Node {
	return evalNode(rt, sht, row, col, node)
}

// evalNode evaluates either the cell at (row, col) (when node is nil, the
// top-level entry path) or a pre-parsed expression node in that cell's
// context (the recursive path used by range resolution and builtins).
func evalNode(rt Runtime, sht *sheet.Sheet, row, col int32, node *arena.Node) *arena.Node {
	a := rt.Scratch()
	table := rt.Table()

	if !rt.EnterCall() {
		return ErrorNode(a, table, "recursion limit exceeded")
	}
	defer rt.ExitCall()

	if node != nil {
		return evalExpr(rt, sht, row, col, node)
	}

	// Function-sheet argument-binding slots take priority over the cell's
	// own content (spec §4.5 step 2). The bound value was already evaluated
	// in the caller's context, so it is returned as-is, not re-evaluated.
	if sht.HasFlag(sheet.IsFunction) {
		if bound, ok := sht.SlotFor(row, col); ok {
			return bound
		}
	}

	cellAtom := sht.Cell(row, col)
	if cellAtom.IsNil() {
		return BlankNode(a)
	}
	raw := table.Bytes(cellAtom)
	if len(raw) == 0 {
		return BlankNode(a)
	}

	if raw[0] == '=' {
		return evalFormula(rt, sht, row, col, cellAtom)
	}
	if isNumberLead(raw[0]) {
		if v, ok := parseNumberLiteral(raw); ok {
			return NumberNode(a, v)
		}
	}
	return StringNode(a, table.Intern(raw))
}

func isNumberLead(b byte) bool {
	return b == '-' || b == '.' || (b >= '0' && b <= '9')
}

// parseNumberLiteral converts a literal cell's text with strconv.ParseFloat,
// so besides plain decimal and exponent forms it also accepts the other
// forms ParseFloat does, such as hex floats ("0x1p4") and "-Inf".
func parseNumberLiteral(raw []byte) (float64, bool) {
	s := string(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func evalFormula(rt Runtime, sht *sheet.Sheet, row, col int32, formula atom.Atom) *arena.Node {
	a := rt.Scratch()
	table := rt.Table()

	if cached, ok := sht.Result(row, col); ok {
		return synthFromCache(a, cached)
	}

	tree := rt.ParseCache().Parse(formula, table)
	scratchTree := arena.Clone(a, tree)
	result := evalExpr(rt, sht, row, col, scratchTree)

	if result.Kind != arena.KindComputedArray {
		if cr, ok := toCachedResult(result); ok {
			if cr.Kind != sheet.CachedError {
				sht.SetResult(row, col, cr)
			}
		}
	}
	return result
}

func synthFromCache(a *arena.Arena, cr sheet.CachedResult) *arena.Node {
	switch cr.Kind {
	case sheet.CachedNumber:
		return NumberNode(a, cr.Num)
	case sheet.CachedString:
		return StringNode(a, cr.Str)
	case sheet.CachedError:
		n := a.Alloc()
		n.Kind = arena.KindError
		n.Str = cr.Str
		return n
	default:
		return BlankNode(a)
	}
}

// ToCachedResult converts a scalar result node to its cache form. Exported
// for the driver, which projects an array result to a scalar before
// notifying the host and needs the same conversion.
func ToCachedResult(n *arena.Node) (sheet.CachedResult, bool) {
	return toCachedResult(n)
}

// toCachedResult converts a scalar result node to its cache form. Arrays are
// never cached (spec §4.5: "scalars only — arrays are never cached").
func toCachedResult(n *arena.Node) (sheet.CachedResult, bool) {
	switch n.Kind {
	case arena.KindNumber:
		return sheet.CachedResult{Kind: sheet.CachedNumber, Num: n.Num}, true
	case arena.KindString:
		return sheet.CachedResult{Kind: sheet.CachedString, Str: n.Str}, true
	case arena.KindBlank:
		return sheet.CachedResult{Kind: sheet.CachedNull}, true
	case arena.KindError:
		return sheet.CachedResult{Kind: sheet.CachedError, Str: n.Str}, true
	default:
		return sheet.CachedResult{}, false
	}
}

// DisplayString renders a cached result the way the driver emits it to the
// host (spec §6, §9): whole numbers without a trailing ".0", otherwise a
// shortest round-trip decimal, grounded on original_source/drspread_types.c.
func DisplayString(table *atom.Table, cr sheet.CachedResult) (kind sheet.CachedKind, num float64, str string) {
	switch cr.Kind {
	case sheet.CachedNumber:
		return cr.Kind, cr.Num, formatNumber(cr.Num)
	case sheet.CachedString:
		return cr.Kind, 0, table.String(cr.Str)
	case sheet.CachedError:
		s := table.String(cr.Str)
		if s == "" {
			s = "error"
		}
		return cr.Kind, 0, s
	default:
		return sheet.CachedNull, 0, ""
	}
}

// FormatNumber renders v the way the display path (DisplayString) does:
// whole numbers with no trailing ".0", otherwise the shortest round-trip
// decimal.
func FormatNumber(v float64) string { return formatNumber(v) }

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}
