// Package engine assembles the atom table, sheet store, parse cache, and
// evaluator into the single object a host program drives (spec §4.7,
// §6): create sheets, populate cells, and call the EvaluateFormulas /
// EvaluateString / EvaluateFunction trio to get display values back out.
package engine

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
	_ "github.com/cellengine/cellengine/internal/builtins" // self-registers into eval's dispatch table
	"github.com/cellengine/cellengine/internal/eval"
	"github.com/cellengine/cellengine/internal/parser"
	"github.com/cellengine/cellengine/internal/sheet"
)

// Ops is the set of host callbacks the driver invokes as a cell's displayed
// value changes (spec §4.7). A host normally implements this by writing
// into its own grid widget or forwarding a message over a transport such
// as sheetserve's websocket connection.
type Ops interface {
	SetDisplayNumber(h sheet.Handle, row, col int32, v float64)
	SetDisplayString(h sheet.Handle, row, col int32, s string)
	SetDisplayError(h sheet.Handle, row, col int32, msg string)
}

// Context is one complete evaluation context: an atom table, a set of
// sheets, a parse cache, and the scratch arena the evaluator allocates
// from. It implements eval.Runtime directly, so internal/eval never needs
// to import this package.
type Context struct {
	table *atom.Table
	cache *parser.Cache
	scratch *arena.Arena

	sheets map[sheet.Handle]*sheet.Sheet
	byName map[atom.Atom]sheet.Handle
	next   sheet.Handle

	depth int
	ops   Ops
}

// NewContext creates an empty context reporting display changes to ops.
func NewContext(ops Ops) *Context {
	return &Context{
		table:   atom.New(),
		cache:   parser.NewCache(),
		scratch: arena.New(),
		sheets:  make(map[sheet.Handle]*sheet.Sheet),
		byName:  make(map[atom.Atom]sheet.Handle),
		ops:     ops,
	}
}

// Table returns the context's atom table (eval.Runtime).
func (c *Context) Table() *atom.Table { return c.table }

// Sheet resolves a sheet by handle (eval.Runtime).
func (c *Context) Sheet(h sheet.Handle) (*sheet.Sheet, bool) {
	s, ok := c.sheets[h]
	return s, ok
}

// SheetByName resolves a sheet by its (already-lowercased) name or alias
// atom (eval.Runtime).
func (c *Context) SheetByName(name atom.Atom) (*sheet.Sheet, bool) {
	h, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.sheets[h], true
}

// ParseCache returns the shared formula parse cache (eval.Runtime).
func (c *Context) ParseCache() *parser.Cache { return c.cache }

// Scratch returns the per-context scratch arena (eval.Runtime).
func (c *Context) Scratch() *arena.Arena { return c.scratch }

// EnterCall and ExitCall implement the recursion guard (eval.Runtime),
// substituting a call-depth counter for the reference implementation's
// frame-address comparison (spec §9).
func (c *Context) EnterCall() bool {
	c.depth++
	return c.depth <= eval.MaxDepth
}

func (c *Context) ExitCall() { c.depth-- }

// Atomize interns s, exposing the atom table to hosts that want to build
// formula text or cell values without repeated string conversions.
func (c *Context) Atomize(s string) atom.Atom { return c.table.InternString(s) }

// AtomGetStr returns the string backing a, the inverse of Atomize.
func (c *Context) AtomGetStr(a atom.Atom) string { return c.table.String(a) }
