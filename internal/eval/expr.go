package eval

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/sheet"
)

// evalExpr dispatches a single expression-tree node to its evaluation rule
// (spec §4.5). node is always scratch-arena memory (either cloned from the
// parse cache, or built by a previous evalExpr call in this same pass).
func evalExpr(rt Runtime, sht *sheet.Sheet, row, col int32, node *arena.Node) *arena.Node {
	f := &Frame{Rt: rt, Sht: sht, Row: row, Col: col}

	switch node.Kind {
	case arena.KindNumber, arena.KindString, arena.KindBlank, arena.KindError, arena.KindComputedArray:
		return node

	case arena.KindGroup:
		return f.Eval(node.Kids[0])

	case arena.KindUnary:
		return evalUnary(f, node.Op, node.Kids[0])

	case arena.KindBinary:
		return evalBinary(f, node.Op, node.Kids[0], node.Kids[1])

	case arena.KindRange0D:
		return evalRange0D(f, node, false)
	case arena.KindForeignRange0D:
		return evalRange0D(f, node, true)
	case arena.KindRange1DColumn:
		return evalRange1DColumn(f, node, false)
	case arena.KindForeignRange1DColumn:
		return evalRange1DColumn(f, node, true)
	case arena.KindRange1DRow:
		return evalRange1DRow(f, node, false)
	case arena.KindForeignRange1DRow:
		return evalRange1DRow(f, node, true)

	case arena.KindFunctionCall, arena.KindUserFunctionCall:
		return evalCall(f, node)

	default:
		return ErrorNode(rt.Scratch(), rt.Table(), "malformed expression")
	}
}

// evalUnary implements "-" (negation) and "!" (logical not), both requiring
// a numeric operand; blank propagates unchanged (spec §4.5, §4.6).
func evalUnary(f *Frame, op arena.Op, childExpr *arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()
	v := f.Eval(childExpr)
	if IsError(v) || IsBlank(v) {
		return v
	}
	switch op {
	case arena.OpNeg:
		if v.Kind != arena.KindNumber {
			return ErrorNode(a, table, "unary - requires a number")
		}
		return NumberNode(a, -v.Num)
	case arena.OpNot:
		if v.Kind != arena.KindNumber {
			return ErrorNode(a, table, "unary ! requires a number")
		}
		return NumberNode(a, boolNum(v.Num == 0))
	default:
		return v
	}
}

// evalBinary implements the comparison and arithmetic operators, including
// the scalar/array broadcasting table of spec §4.5. The left operand is
// evaluated first; if it is blank, the right operand's cells are never
// touched at all, since the result is blank regardless of what they hold
// (grounded on original_source/drspread_evaluate.c's "both_blank" fast path,
// generalized to cover any right-hand value, not only another blank).
func evalBinary(f *Frame, op arena.Op, lExpr, rExpr *arena.Node) *arena.Node {
	a := f.Rt.Scratch()
	l := f.Eval(lExpr)
	if IsError(l) {
		return l
	}
	if IsBlank(l) {
		return l
	}
	r := f.Eval(rExpr)
	if IsError(r) {
		return r
	}

	lArr, rArr := IsArray(l), IsArray(r)
	switch {
	case lArr && rArr:
		if len(l.Array) != len(r.Array) {
			return ErrorNode(a, f.Rt.Table(), "array operands have different lengths")
		}
		elems := make([]*arena.Node, len(l.Array))
		for i := range elems {
			e := binaryScalar(f, op, l.Array[i], r.Array[i])
			if IsError(e) {
				return e
			}
			elems[i] = e
		}
		return ArrayNode(a, elems)
	case lArr:
		elems := make([]*arena.Node, len(l.Array))
		for i := range elems {
			e := binaryScalar(f, op, l.Array[i], r)
			if IsError(e) {
				return e
			}
			elems[i] = e
		}
		return ArrayNode(a, elems)
	case rArr:
		elems := make([]*arena.Node, len(r.Array))
		for i := range elems {
			e := binaryScalar(f, op, l, r.Array[i])
			if IsError(e) {
				return e
			}
			elems[i] = e
		}
		return ArrayNode(a, elems)
	default:
		return binaryScalar(f, op, l, r)
	}
}

// binaryScalar combines two already-evaluated, non-array operands.
func binaryScalar(f *Frame, op arena.Op, l, r *arena.Node) *arena.Node {
	a, table := f.Rt.Scratch(), f.Rt.Table()
	if IsError(l) {
		return l
	}
	if IsError(r) {
		return r
	}
	if IsBlank(l) || IsBlank(r) {
		return BlankNode(a)
	}

	switch op {
	case arena.OpAdd, arena.OpSub, arena.OpMul, arena.OpDiv:
		if l.Kind != arena.KindNumber || r.Kind != arena.KindNumber {
			return ErrorNode(a, table, "arithmetic requires numbers")
		}
		switch op {
		case arena.OpAdd:
			return NumberNode(a, l.Num+r.Num)
		case arena.OpSub:
			return NumberNode(a, l.Num-r.Num)
		case arena.OpMul:
			return NumberNode(a, l.Num*r.Num)
		case arena.OpDiv:
			if r.Num == 0 {
				return ErrorNode(a, table, "division by zero")
			}
			return NumberNode(a, l.Num/r.Num)
		}
	case arena.OpEq, arena.OpNe:
		return compareEq(a, table, op, l, r)
	case arena.OpLt, arena.OpLe, arena.OpGt, arena.OpGe:
		if l.Kind != arena.KindNumber || r.Kind != arena.KindNumber {
			return ErrorNode(a, table, "ordering comparisons require numbers")
		}
		var v bool
		switch op {
		case arena.OpLt:
			v = l.Num < r.Num
		case arena.OpLe:
			v = l.Num <= r.Num
		case arena.OpGt:
			v = l.Num > r.Num
		case arena.OpGe:
			v = l.Num >= r.Num
		}
		return NumberNode(a, boolNum(v))
	}
	return ErrorNode(a, table, "unsupported operator")
}

// compareEq implements "=" and "!=": numbers compare by value, strings by
// atom identity, and comparing across types is a type error (spec §4.6).
func compareEq(a *arena.Arena, table *atom.Table, op arena.Op, l, r *arena.Node) *arena.Node {
	var eq bool
	switch {
	case l.Kind == arena.KindNumber && r.Kind == arena.KindNumber:
		eq = l.Num == r.Num
	case l.Kind == arena.KindString && r.Kind == arena.KindString:
		eq = atom.Equal(l.Str, r.Str)
	default:
		return ErrorNode(a, table, "cannot compare values of different types")
	}
	if op == arena.OpNe {
		eq = !eq
	}
	return NumberNode(a, boolNum(eq))
}

func boolNum(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
