package builtins

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
	"github.com/cellengine/cellengine/internal/parser"
	"github.com/cellengine/cellengine/internal/sheet"
)

func init() {
	eval.Register("cell", biCell)
	eval.Register("col", biCol)
	eval.Register("row", biRow)
	eval.Register("eval", biEval)
	eval.Register("call", biCall)
}

func stringArg(f *eval.Frame, arg *arena.Node) (string, *arena.Node) {
	v := f.Eval(arg)
	if eval.IsError(v) {
		return "", v
	}
	if v.Kind != arena.KindString {
		return "", eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "expected a string")
	}
	return f.Rt.Table().String(v.Str), nil
}

// biCell resolves and evaluates a cell address built at runtime from its
// arguments: cell(col, row) on the current sheet, or cell(sheetName, col,
// row) on another one. Unlike a "[col, n]" range literal, the column and
// sheet names here are ordinary string values, so a formula can compute
// which cell to read.
func biCell(f *eval.Frame, args []*arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()
	var target *sheet.Sheet
	var colArg, rowArg *arena.Node

	switch len(args) {
	case 2:
		target = f.Sht
		colArg, rowArg = args[0], args[1]
	case 3:
		sheetName, errN := stringArg(f, args[0])
		if errN != nil {
			return errN
		}
		t, ok := f.Rt.SheetByName(table.InternLower([]byte(sheetName)))
		if !ok {
			return eval.ErrorNode(a, table, "unknown sheet: "+sheetName)
		}
		t.AddDependant(f.Sht.Handle)
		target = t
		colArg, rowArg = args[1], args[2]
	default:
		return eval.ErrorNode(a, table, "cell expects two or three arguments")
	}

	colName, errN := stringArg(f, colArg)
	if errN != nil {
		return errN
	}
	rowNum, errN := scalarNumber(f, rowArg)
	if errN != nil {
		return errN
	}

	col := target.ColIdx(table.InternLower([]byte(colName)), table)
	if col == sheet.NotFound {
		return eval.ErrorNode(a, table, "unknown column: "+colName)
	}
	return eval.Evaluate(f.Rt, target, int32(rowNum)-1, int32(col))
}

// biCol reports the current cell's 1-based column, or resolves name's
// column index when given an explicit column-name argument.
func biCol(f *eval.Frame, args []*arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()
	switch len(args) {
	case 0:
		return eval.NumberNode(a, float64(f.Col+1))
	case 1:
		name, errN := stringArg(f, args[0])
		if errN != nil {
			return errN
		}
		idx := f.Sht.ColIdx(table.InternLower([]byte(name)), table)
		if idx == sheet.NotFound {
			return eval.ErrorNode(a, table, "unknown column: "+name)
		}
		return eval.NumberNode(a, float64(idx+1))
	default:
		return eval.ErrorNode(a, table, "col expects zero or one arguments")
	}
}

// biRow reports the current cell's 1-based row.
func biRow(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "row expects no arguments")
	}
	return eval.NumberNode(f.Rt.Scratch(), float64(f.Row+1))
}

// biEval parses its string argument as formula text and evaluates it in the
// calling cell's context, the way evaluate_string does for the driver but
// reachable from inside a formula.
func biEval(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "eval expects one argument")
	}
	src, errN := stringArg(f, args[0])
	if errN != nil {
		return errN
	}
	tree := parser.Parse(src, f.Rt.Table(), f.Rt.Scratch())
	return f.Eval(tree)
}

// biCall invokes a user-defined function sheet named by a runtime-computed
// string, passing through the remaining (up to three) arguments.
func biCall(f *eval.Frame, args []*arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()
	if len(args) == 0 {
		return eval.ErrorNode(a, table, "call expects a function name")
	}
	name, errN := stringArg(f, args[0])
	if errN != nil {
		return errN
	}
	target, ok := f.Rt.SheetByName(table.InternLower([]byte(name)))
	if !ok || !target.HasFlag(sheet.IsFunction) {
		return eval.ErrorNode(a, table, "unknown function: "+name)
	}
	return eval.CallUserFunction(f, target, args[1:])
}
