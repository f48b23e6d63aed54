package eval

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/sheet"
)

// resolveSheet decodes the Range* node's target sheet: itself for the local
// variants, rt.SheetByName for the Foreign* variants. A foreign hit records
// the current sheet as a dependant of the target, per spec §9's "foreign
// dependants" tracking, so the host can selectively re-evaluate callers
// when a referenced sheet changes.
func resolveSheet(rt Runtime, local *sheet.Sheet, foreign bool, name atom.Atom) (*sheet.Sheet, *arena.Node) {
	if !foreign {
		return local, nil
	}
	target, ok := rt.SheetByName(name)
	if !ok {
		return nil, ErrorNode(rt.Scratch(), rt.Table(), "unknown sheet")
	}
	target.AddDependant(local.Handle)
	return target, nil
}

func evalRange0D(f *Frame, node *arena.Node, foreign bool) *arena.Node {
	rt, a, table := f.Rt, f.Rt.Scratch(), f.Rt.Table()
	target, errN := resolveSheet(rt, f.Sht, foreign, node.Sheet)
	if errN != nil {
		return errN
	}
	col := target.ColIdx(node.ColName, table)
	if col == sheet.NotFound {
		return ErrorNode(a, table, "unknown column")
	}
	row := resolveRow(f, node.Row)
	return evalNode(rt, target, row, int32(col), nil)
}

func evalRange1DColumn(f *Frame, node *arena.Node, foreign bool) *arena.Node {
	rt, a, table := f.Rt, f.Rt.Scratch(), f.Rt.Table()
	target, errN := resolveSheet(rt, f.Sht, foreign, node.Sheet)
	if errN != nil {
		return errN
	}
	col := target.ColIdx(node.ColName, table)
	if col == sheet.NotFound {
		// The bare "[col]" / "a" shape, with no column found, falls back to
		// the named-cell map before erroring (spec §9).
		if node.Row == 0 && node.RowEnd == arena.NoEnd {
			if pos, ok := target.NamedCell(node.ColName); ok {
				return evalNode(rt, target, pos.Row, pos.Col, nil)
			}
		}
		return ErrorNode(a, table, "unknown column")
	}

	start := resolveRow(f, node.Row)
	var end int32
	if node.RowEnd == arena.NoEnd {
		end = target.Height - 1
	} else {
		end = resolveRow(f, node.RowEnd)
	}
	if end < start {
		return ArrayNode(a, nil)
	}

	elems := make([]*arena.Node, 0, end-start+1)
	for row := start; row <= end; row++ {
		elems = append(elems, evalNode(rt, target, row, int32(col), nil))
	}
	return ArrayNode(a, elems)
}

func evalRange1DRow(f *Frame, node *arena.Node, foreign bool) *arena.Node {
	rt, a, table := f.Rt, f.Rt.Scratch(), f.Rt.Table()
	target, errN := resolveSheet(rt, f.Sht, foreign, node.Sheet)
	if errN != nil {
		return errN
	}
	colStart := target.ColIdx(node.ColName, table)
	colEnd := target.ColIdx(node.ColEnd, table)
	if colStart == sheet.NotFound || colEnd == sheet.NotFound {
		return ErrorNode(a, table, "unknown column")
	}
	if colEnd < colStart {
		colStart, colEnd = colEnd, colStart
	}
	row := resolveRow(f, node.Row)

	elems := make([]*arena.Node, 0, colEnd-colStart+1)
	for col := colStart; col <= colEnd; col++ {
		elems = append(elems, evalNode(rt, target, row, int32(col), nil))
	}
	return ArrayNode(a, elems)
}

// resolveRow substitutes the caller's own row for the Dollar sentinel,
// passing any other value through unchanged (spec §3 "$" substitution).
func resolveRow(f *Frame, row int32) int32 {
	if row == arena.Dollar {
		return f.Row
	}
	return row
}
