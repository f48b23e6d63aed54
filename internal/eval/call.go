package eval

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/sheet"
)

// evalCall dispatches a function-call node to a registered builtin, or to a
// user-defined function sheet of the same name, in that order (spec §4.5,
// §4.6: a sheet named the same as a builtin is never reachable as a
// function — builtins always win).
func evalCall(f *Frame, node *arena.Node) *arena.Node {
	table := f.Rt.Table()
	args := node.Kids[:node.Argc]

	if fn, ok := lookupBuiltin(table.String(node.Name)); ok {
		return fn(f, args)
	}

	target, ok := f.Rt.SheetByName(node.Name)
	if !ok || !target.HasFlag(sheet.IsFunction) {
		return ErrorNode(f.Rt.Scratch(), table, "unknown function: "+table.String(node.Name))
	}
	return evalUserFunctionCall(f, target, args)
}

// CallUserFunction invokes target as a user-defined function with argExprs
// as its arguments, evaluated in f's context. Exported for internal/builtins'
// call(), which resolves the target sheet by a runtime-computed name rather
// than a parse-time one.
func CallUserFunction(f *Frame, target *sheet.Sheet, argExprs []*arena.Node) *arena.Node {
	return evalUserFunctionCall(f, target, argExprs)
}

// evalUserFunctionCall evaluates each argument in the caller's context,
// binds the results into target's argument slots, evaluates target's
// configured output cell, and unbinds the slots before returning (spec
// §4.5 "User-defined functions"). Binding fails, without side effects,
// if the sheet is already mid-call on any of the needed slots — the
// engine's only recursion guard for user functions, since ordinary
// self-reference through a formula would otherwise deadlock the
// argument-binding mechanism rather than merely recurse.
func evalUserFunctionCall(f *Frame, target *sheet.Sheet, argExprs []*arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()

	if target.ParamCount != len(argExprs) {
		return ErrorNode(a, table, "wrong number of arguments")
	}

	bound := make([]int, 0, len(argExprs))
	unbindAll := func() {
		for _, i := range bound {
			target.UnbindSlot(i)
		}
	}

	for i, expr := range argExprs {
		val := f.Eval(expr)
		if IsError(val) {
			unbindAll()
			return val
		}
		if !target.BindSlot(i, target.Params[i], val) {
			unbindAll()
			return ErrorNode(a, table, "recursive function call")
		}
		bound = append(bound, i)
	}

	result := evalNode(f.Rt, target, target.Output.Row, target.Output.Col, nil)
	unbindAll()
	return result
}
