// Package eval walks a parsed expression tree to produce a scalar or
// array-valued result, implementing the broadcasting, range-resolution, and
// user-defined-function-call semantics of spec §4.5.
package eval

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/parser"
	"github.com/cellengine/cellengine/internal/sheet"
)

// MaxDepth is the recursion ceiling substituting for the reference
// implementation's approximate frame-address-subtraction guard (spec §9):
// a per-context call counter, not a stack-pointer comparison.
const MaxDepth = 300

// Runtime is the slice of context state the evaluator needs. engine.Context
// implements this; eval never imports engine, avoiding a cycle.
type Runtime interface {
	Table() *atom.Table
	Sheet(h sheet.Handle) (*sheet.Sheet, bool)
	SheetByName(name atom.Atom) (*sheet.Sheet, bool)
	ParseCache() *parser.Cache
	Scratch() *arena.Arena
	EnterCall() bool
	ExitCall()
}

// Frame is the per-call evaluation context passed down through recursive
// Evaluate calls and into builtin functions: which sheet and (row, col) the
// current expression is being evaluated for (for "$" substitution).
type Frame struct {
	Rt   Runtime
	Sht  *sheet.Sheet
	Row  int32
	Col  int32
}

// Eval evaluates node in the context of f, returning a scratch-allocated
// result node (Number, String, Blank, Error, or ComputedArray).
func (f *Frame) Eval(node *arena.Node) *arena.Node {
	return evalNode(f.Rt, f.Sht, f.Row, f.Col, node)
}

// With returns a copy of f addressing a different (row, col) on the same
// sheet.
func (f *Frame) With(row, col int32) *Frame {
	return &Frame{Rt: f.Rt, Sht: f.Sht, Row: row, Col: col}
}

// ErrorNode allocates an error-valued result carrying msg. Exported for use
// by the internal/builtins package, which has no other way to construct
// error results.
func ErrorNode(a *arena.Arena, table *atom.Table, msg string) *arena.Node {
	n := a.Alloc()
	n.Kind = arena.KindError
	n.Str = table.InternString(msg)
	return n
}

// BlankNode allocates a blank-valued result.
func BlankNode(a *arena.Arena) *arena.Node {
	n := a.Alloc()
	n.Kind = arena.KindBlank
	return n
}

// NumberNode allocates a number-valued result.
func NumberNode(a *arena.Arena, v float64) *arena.Node {
	n := a.Alloc()
	n.Kind = arena.KindNumber
	n.Num = v
	return n
}

// StringNode allocates a string-valued result from an already-interned atom.
func StringNode(a *arena.Arena, s atom.Atom) *arena.Node {
	n := a.Alloc()
	n.Kind = arena.KindString
	n.Str = s
	return n
}

// ArrayNode allocates a computed-array result over elems.
func ArrayNode(a *arena.Arena, elems []*arena.Node) *arena.Node {
	n := a.Alloc()
	n.Kind = arena.KindComputedArray
	n.Array = elems
	return n
}

// IsError reports whether n is an error-valued result.
func IsError(n *arena.Node) bool { return n != nil && n.Kind == arena.KindError }

// IsBlank reports whether n is a blank-valued result.
func IsBlank(n *arena.Node) bool { return n != nil && n.Kind == arena.KindBlank }

// IsArray reports whether n is a computed-array result.
func IsArray(n *arena.Node) bool { return n != nil && n.Kind == arena.KindComputedArray }

// Truthy implements the engine's boolean-coercion rule (spec §4.6 "if"):
// a nonzero number or a nonempty string is true; blank and zero/"" are false.
func Truthy(table *atom.Table, n *arena.Node) bool {
	switch n.Kind {
	case arena.KindNumber:
		return n.Num != 0
	case arena.KindString:
		return len(table.Bytes(n.Str)) != 0
	default:
		return false
	}
}
