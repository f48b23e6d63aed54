package engine

import (
	"github.com/cellengine/cellengine/internal/atom"
	"github.com/cellengine/cellengine/internal/sheet"
)

// CreateSheet allocates a new, empty sheet named name and returns its
// handle.
func (c *Context) CreateSheet(name string) sheet.Handle {
	c.next++
	h := c.next
	nameAtom := c.table.InternLower([]byte(name))
	s := sheet.New(h, nameAtom)
	c.sheets[h] = s
	c.byName[nameAtom] = h
	return h
}

// SetSheetName renames h, rebinding the name-lookup table.
func (c *Context) SetSheetName(h sheet.Handle, name string) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	delete(c.byName, s.Name)
	s.Name = c.table.InternLower([]byte(name))
	c.byName[s.Name] = h
}

// SetSheetAlias binds an additional lookup name for h (spec §4.3): a
// formula may reference the sheet by either its name or its alias.
func (c *Context) SetSheetAlias(h sheet.Handle, alias string) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	if !s.Alias.IsNil() {
		delete(c.byName, s.Alias)
	}
	s.Alias = c.table.InternLower([]byte(alias))
	c.byName[s.Alias] = h
}

// DeleteSheet removes h and its name and alias bindings. Other sheets'
// dependants sets are left as they are and may still list h.
func (c *Context) DeleteSheet(h sheet.Handle) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	delete(c.byName, s.Name)
	if !s.Alias.IsNil() {
		delete(c.byName, s.Alias)
	}
	delete(c.sheets, h)
}

// SetSheetFlags replaces h's entire flag set.
func (c *Context) SetSheetFlags(h sheet.Handle, flags sheet.Flag) {
	if s, ok := c.sheets[h]; ok {
		s.Flags = flags
	}
}

// SetSheetFlag sets or clears a single flag bit on h.
func (c *Context) SetSheetFlag(h sheet.Handle, f sheet.Flag, on bool) {
	if s, ok := c.sheets[h]; ok {
		s.SetFlag(f, on)
	}
}

// SetCellStr stores text as the raw content of (row, col) on h, clearing
// that cell's cached result. An empty string clears the cell entirely.
func (c *Context) SetCellStr(h sheet.Handle, row, col int32, text string) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	if text == "" {
		s.SetCell(row, col, atom.Nil)
	} else {
		s.SetCell(row, col, c.table.InternString(text))
	}
	s.ClearResult(row, col)
}

// SetCellAtom stores an already-interned atom as (row, col)'s raw content.
func (c *Context) SetCellAtom(h sheet.Handle, row, col int32, a atom.Atom) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	s.SetCell(row, col, a)
	s.ClearResult(row, col)
}

// SetExtraDimensionalStr stores text at the off-grid position keyed by id
// (spec §3 "extra-dimensional" cells, used for sheet-level metadata that
// does not belong to any visible row/column).
func (c *Context) SetExtraDimensionalStr(h sheet.Handle, id int32, text string) {
	if s, ok := c.sheets[h]; ok {
		s.SetExtraDimensional(id, c.table.InternString(text))
	}
}

// SetColName binds name to col on h.
func (c *Context) SetColName(h sheet.Handle, col int32, name string) {
	if s, ok := c.sheets[h]; ok {
		s.SetColName(col, c.table.InternLower([]byte(name)))
	}
}

// SetNamedCell binds name to (row, col) on h.
func (c *Context) SetNamedCell(h sheet.Handle, name string, row, col int32) {
	if s, ok := c.sheets[h]; ok {
		s.SetNamedCell(c.table.InternLower([]byte(name)), row, col)
	}
}

// ClearNamedCell removes name's binding on h, if any.
func (c *Context) ClearNamedCell(h sheet.Handle, name string) {
	if s, ok := c.sheets[h]; ok {
		s.ClearNamedCell(c.table.InternLower([]byte(name)))
	}
}

// SetFunctionSheet configures h as a user-defined function (spec §4.5):
// up to four (row, col) argument positions and one output cell. Flags h
// with sheet.IsFunction so the evaluator routes calls to it.
func (c *Context) SetFunctionSheet(h sheet.Handle, paramRows, paramCols []int32, outRow, outCol int32) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	s.SetFunctionParams(paramRows, paramCols)
	s.SetFunctionOutput(outRow, outCol)
	s.SetFlag(sheet.IsFunction, true)
}

// ClearFunctionSheet removes h's function-sheet configuration, returning it
// to an ordinary data sheet.
func (c *Context) ClearFunctionSheet(h sheet.Handle) {
	s, ok := c.sheets[h]
	if !ok {
		return
	}
	s.ClearFunctionParams()
	s.SetFlag(sheet.IsFunction, false)
}
