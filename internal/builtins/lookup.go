package builtins

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/eval"
)

func init() {
	eval.Register("tlu", biTlu)
	eval.Register("find", biFind)
}

func equalScalar(l, r *arena.Node) bool {
	switch {
	case l.Kind == arena.KindNumber && r.Kind == arena.KindNumber:
		return l.Num == r.Num
	case l.Kind == arena.KindString && r.Kind == arena.KindString:
		return atom.Equal(l.Str, r.Str)
	default:
		return false
	}
}

func toArray(n *arena.Node) []*arena.Node {
	if eval.IsArray(n) {
		return n.Array
	}
	return []*arena.Node{n}
}

// biTlu implements tlu(needle, haystack, values, default?): a table lookup
// over two parallel arrays, returning default (evaluated lazily, at most
// once) on a miss, or erroring on a miss if default was omitted (spec §4.6;
// original_source/drspread_formula_funcs.c's drsp_tablelookup). If needle
// is array-like, the lookup maps over it element-wise.
func biTlu(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 3 && len(args) != 4 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "tlu expects three or four arguments")
	}
	needle := f.Eval(args[0])
	if eval.IsError(needle) {
		return needle
	}
	keys := f.Eval(args[1])
	if eval.IsError(keys) {
		return keys
	}
	values := f.Eval(args[2])
	if eval.IsError(values) {
		return values
	}
	keyList, valList := toArray(keys), toArray(values)

	if eval.IsArray(needle) {
		elems := make([]*arena.Node, len(needle.Array))
		var def *arena.Node
		for i, n := range needle.Array {
			if eval.IsError(n) {
				return n
			}
			if eval.IsBlank(n) {
				elems[i] = n
				continue
			}
			idx := -1
			for j, k := range keyList {
				if equalScalar(n, k) {
					idx = j
					break
				}
			}
			if idx < 0 {
				if len(args) != 4 {
					return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "needle not found in haystack in call to tlu()")
				}
				if def == nil {
					def = f.Eval(args[3])
					if eval.IsError(def) {
						return def
					}
				}
				elems[i] = def
				continue
			}
			if idx >= len(valList) {
				return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "position of needle in haystack outside the bounds of values in tlu()")
			}
			elems[i] = valList[idx]
		}
		return eval.ArrayNode(f.Rt.Scratch(), elems)
	}

	idx := -1
	for i, k := range keyList {
		if equalScalar(needle, k) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(args) == 4 {
			return f.Eval(args[3])
		}
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "needle not found in haystack in call to tlu()")
	}
	if idx >= len(valList) {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "position of needle in haystack outside the bounds of values in tlu()")
	}
	return valList[idx]
}

// biFind returns the 1-based position of needle within haystack, or
// default (if given) else an error when needle is absent (spec §4.6;
// original_source/drspread_formula_funcs.c's drsp_find).
func biFind(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 2 && len(args) != 3 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "find expects two or three arguments")
	}
	needle := f.Eval(args[0])
	if eval.IsError(needle) {
		return needle
	}
	haystack := f.Eval(args[1])
	if eval.IsError(haystack) {
		return haystack
	}
	idx := -1
	for i, e := range toArray(haystack) {
		if eval.IsError(e) {
			return e
		}
		if eval.IsBlank(needle) {
			if eval.IsBlank(e) {
				idx = i
				break
			}
			continue
		}
		if e.Kind != needle.Kind {
			continue
		}
		if equalScalar(needle, e) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(args) == 3 {
			return f.Eval(args[2])
		}
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "needle not found in haystack in call to find()")
	}
	return eval.NumberNode(f.Rt.Scratch(), float64(idx+1))
}
