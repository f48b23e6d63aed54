package builtins

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
)

func init() {
	eval.Register("if", biIf)
	eval.Register("try", biTry)
}

// biIf evaluates only the branch selected by cond's truthiness when cond is
// a scalar (spec §4.6): a nonzero number or nonempty string is true,
// everything else is false. When cond is array-like, it instead returns a
// computed array the same length, selecting per-element from t/f (ranges
// indexed positionally, a scalar replicated across every position); both
// branches are evaluated in that case since different elements may select
// different branches.
func biIf(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 3 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "if expects three arguments")
	}
	cond := f.Eval(args[0])
	if eval.IsError(cond) {
		return cond
	}
	if !eval.IsArray(cond) {
		if eval.Truthy(f.Rt.Table(), cond) {
			return f.Eval(args[1])
		}
		return f.Eval(args[2])
	}

	t := f.Eval(args[1])
	if eval.IsError(t) {
		return t
	}
	fv := f.Eval(args[2])
	if eval.IsError(fv) {
		return fv
	}
	pick := func(branch *arena.Node, i int) (*arena.Node, *arena.Node) {
		if !eval.IsArray(branch) {
			return branch, nil
		}
		if i >= len(branch.Array) {
			return nil, eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "if: branch range shorter than cond")
		}
		return branch.Array[i], nil
	}
	elems := make([]*arena.Node, len(cond.Array))
	for i, c := range cond.Array {
		if eval.IsError(c) {
			return c
		}
		var branch *arena.Node
		var errN *arena.Node
		if eval.Truthy(f.Rt.Table(), c) {
			branch, errN = pick(t, i)
		} else {
			branch, errN = pick(fv, i)
		}
		if errN != nil {
			return errN
		}
		elems[i] = branch
	}
	return eval.ArrayNode(f.Rt.Scratch(), elems)
}

// biTry evaluates its first argument and substitutes the second only if the
// first produced an error, letting a formula recover from a malformed
// dependency instead of propagating the error upward.
func biTry(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "try expects two arguments")
	}
	v := f.Eval(args[0])
	if eval.IsError(v) {
		return f.Eval(args[1])
	}
	return v
}
