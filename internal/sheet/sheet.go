// Package sheet implements per-sheet storage: the cell table, column-name
// cache, named-cell map, output-result cache, and dependants set described
// in spec §4.3. Sheet holds no evaluation logic; it is pure storage plus the
// small amount of lookup logic (column-name resolution, named-cell
// resolution) that is naturally sheet-local.
package sheet

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
)

// Sentinel row/col values, per spec §3. Defined in arena (the shared leaf
// package) so both the parser and the sheet store reference one source.
const (
	ExtraDimensional = arena.ExtraDimensional
	Dollar           = arena.Dollar
	Unset            = arena.Unset
	Blank            = arena.BlankPos
)

// NotFound is returned by column-name resolution on a miss.
const NotFound = -1

// RowCol addresses a single cell position.
type RowCol struct {
	Row, Col int32
}

// Handle is the host-supplied opaque sheet identifier.
type Handle uint64

// Flag is a bit in Sheet.Flags.
type Flag uint32

const (
	IsFunction Flag = 1 << iota
)

// CachedKind tags a CachedResult.
type CachedKind uint8

const (
	CachedNull CachedKind = iota
	CachedNumber
	CachedString
	CachedError
)

// CachedResult is the compact display-form of one cell's computed value,
// per spec §3 "Cached result".
type CachedResult struct {
	Kind CachedKind
	Num  float64
	Str  atom.Atom
}

// Equal reports whether two cached results are display-identical.
func (c CachedResult) Equal(o CachedResult) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case CachedNumber:
		return c.Num == o.Num
	case CachedString, CachedError:
		return atom.Equal(c.Str, o.Str)
	default:
		return true
	}
}

type colNameEntry struct {
	name atom.Atom
	idx  int
}

type namedCellEntry struct {
	name atom.Atom
	pos  RowCol
}

// Sheet is one sheet's complete storage.
type Sheet struct {
	Handle Handle
	Name   atom.Atom // lowercased
	Alias  atom.Atom

	Width, Height int32

	cells map[RowCol]atom.Atom

	colNames []colNameEntry
	lastName atom.Atom // one-entry MRU ahead of the linear scan
	lastIdx  int

	namedCells []namedCellEntry

	results map[RowCol]CachedResult

	dependants map[Handle]struct{}

	Flags Flag

	// Function-sheet configuration (spec §3, §4.5 user-defined functions).
	ParamCount int
	Params     [4]RowCol
	Output     RowCol

	// Transient call-frame slots: argument bindings used while this sheet
	// is executing as a user-defined function body.
	slotActive [4]bool
	slotPos    [4]RowCol
	slotExpr   [4]*arena.Node

	Dirty bool
}

// New creates an empty sheet bound to handle with the given (already
// lowercased) name atom.
func New(h Handle, name atom.Atom) *Sheet {
	return &Sheet{
		Handle:     h,
		Name:       name,
		cells:      make(map[RowCol]atom.Atom),
		results:    make(map[RowCol]CachedResult),
		dependants: make(map[Handle]struct{}),
		lastIdx:    NotFound,
	}
}

// SetCell stores a into (row,col), growing the bounding box. It does not
// itself invalidate the result cache — the driver performs change detection
// by comparing freshly computed results against the cache instead.
func (s *Sheet) SetCell(row, col int32, a atom.Atom) {
	if a.IsNil() {
		delete(s.cells, RowCol{row, col})
	} else {
		s.cells[RowCol{row, col}] = a
	}
	if row >= 0 && row+1 > s.Height {
		s.Height = row + 1
	}
	if col >= 0 && col+1 > s.Width {
		s.Width = col + 1
	}
	s.Dirty = true
}

// Cell returns the atom stored at (row,col), or the nil atom if empty.
func (s *Sheet) Cell(row, col int32) atom.Atom {
	return s.cells[RowCol{row, col}]
}

// Cells exposes the full cell table for iteration by the driver (spec
// §4.7 "evaluate_formulas" walks every formula cell on a sheet). Callers
// must not mutate the returned map.
func (s *Sheet) Cells() map[RowCol]atom.Atom {
	return s.cells
}

// SetExtraDimensional sets the off-grid cell keyed by id, stored internally
// at row ExtraDimensional, column id; GetExtraDimensional reads it back.
func (s *Sheet) SetExtraDimensional(id int32, a atom.Atom) {
	s.cells[RowCol{ExtraDimensional, id}] = a
}

func (s *Sheet) GetExtraDimensional(id int32) atom.Atom {
	return s.cells[RowCol{ExtraDimensional, id}]
}

// SetColName binds name to col. If name is already bound to a different
// column, that column loses the binding (spec §4.3). An empty name removes
// col's binding.
func (s *Sheet) SetColName(col int32, name atom.Atom) {
	if name.IsNil() {
		for i, e := range s.colNames {
			if e.idx == int(col) {
				s.colNames = append(s.colNames[:i], s.colNames[i+1:]...)
				break
			}
		}
		if s.lastIdx == int(col) {
			s.lastName, s.lastIdx = atom.Nil, NotFound
		}
		return
	}
	for i, e := range s.colNames {
		if atom.Equal(e.name, name) {
			s.colNames[i].idx = int(col)
			s.lastName, s.lastIdx = name, int(col)
			return
		}
	}
	for i, e := range s.colNames {
		if e.idx == int(col) {
			s.colNames[i].name = name
			s.lastName, s.lastIdx = name, int(col)
			return
		}
	}
	s.colNames = append(s.colNames, colNameEntry{name: name, idx: int(col)})
	s.lastName, s.lastIdx = name, int(col)
}

// ColIdx resolves a (lowercased) column-name atom to a column index,
// falling back to the A..Z, AA..ZZ base-26 interpretation for short names,
// per spec §4.3.
func (s *Sheet) ColIdx(name atom.Atom, table *atom.Table) int {
	if atom.Equal(name, s.lastName) && s.lastIdx != NotFound {
		return s.lastIdx
	}
	for _, e := range s.colNames {
		if atom.Equal(e.name, name) {
			s.lastName, s.lastIdx = name, e.idx
			return e.idx
		}
	}
	b := table.Bytes(name)
	if len(b) >= 1 && len(b) <= 2 {
		idx := 0
		for _, c := range b {
			if c < 'a' || c > 'z' {
				return NotFound
			}
			idx = idx*26 + int(c-'a') + 1
		}
		idx--
		s.lastName, s.lastIdx = name, idx
		return idx
	}
	return NotFound
}

// SetNamedCell binds name (length >= 2) to (row,col).
func (s *Sheet) SetNamedCell(name atom.Atom, row, col int32) {
	for i, e := range s.namedCells {
		if atom.Equal(e.name, name) {
			s.namedCells[i].pos = RowCol{row, col}
			return
		}
	}
	s.namedCells = append(s.namedCells, namedCellEntry{name: name, pos: RowCol{row, col}})
}

// ClearNamedCell removes name's binding, if any.
func (s *Sheet) ClearNamedCell(name atom.Atom) {
	for i, e := range s.namedCells {
		if atom.Equal(e.name, name) {
			s.namedCells = append(s.namedCells[:i], s.namedCells[i+1:]...)
			return
		}
	}
}

// NamedCell looks up name, returning (pos, true) on a hit.
func (s *Sheet) NamedCell(name atom.Atom) (RowCol, bool) {
	for _, e := range s.namedCells {
		if atom.Equal(e.name, name) {
			return e.pos, true
		}
	}
	return RowCol{}, false
}

// Result returns the cached display result for (row,col), if any.
func (s *Sheet) Result(row, col int32) (CachedResult, bool) {
	r, ok := s.results[RowCol{row, col}]
	return r, ok
}

// SetResult stores a (non-error) cached display result. Errors are never
// memoized (spec §7): callers must not call SetResult for an error result.
func (s *Sheet) SetResult(row, col int32, r CachedResult) {
	s.results[RowCol{row, col}] = r
}

// ClearResult drops any cached result for (row,col), forcing recomputation.
func (s *Sheet) ClearResult(row, col int32) {
	delete(s.results, RowCol{row, col})
}

// SnapshotResults copies the current result cache, for the driver to diff
// against after a recompute pass (spec §4.7: the host is notified only of
// cells whose displayed value actually changed).
func (s *Sheet) SnapshotResults() map[RowCol]CachedResult {
	out := make(map[RowCol]CachedResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// ClearAllResults drops every cached result, forcing a full recompute of
// the sheet on the next pass.
func (s *Sheet) ClearAllResults() {
	s.results = make(map[RowCol]CachedResult)
}

// AddDependant records that caller referenced a cell on this sheet.
func (s *Sheet) AddDependant(caller Handle) {
	s.dependants[caller] = struct{}{}
}

// Dependants returns the set of sheet handles that have referenced this
// sheet. Entries are added during evaluation and never removed, so the set
// also keeps sheets whose reference has since been edited away or deleted.
// Exposed for host-side selective re-evaluation (spec §9 "Foreign
// dependants").
func (s *Sheet) Dependants() []Handle {
	out := make([]Handle, 0, len(s.dependants))
	for h := range s.dependants {
		out = append(out, h)
	}
	return out
}

// HasFlag reports whether f is set.
func (s *Sheet) HasFlag(f Flag) bool { return s.Flags&f != 0 }

// SetFlag sets or clears f.
func (s *Sheet) SetFlag(f Flag, on bool) {
	if on {
		s.Flags |= f
	} else {
		s.Flags &^= f
	}
}

// SetFunctionParams configures up to four parameter positions.
func (s *Sheet) SetFunctionParams(rows, cols []int32) {
	n := len(rows)
	if len(cols) < n {
		n = len(cols)
	}
	if n > 4 {
		n = 4
	}
	s.ParamCount = n
	for i := 0; i < n; i++ {
		s.Params[i] = RowCol{rows[i], cols[i]}
	}
}

// ClearFunctionParams removes all parameter bindings.
func (s *Sheet) ClearFunctionParams() { s.ParamCount = 0 }

// SetFunctionOutput configures the output cell.
func (s *Sheet) SetFunctionOutput(row, col int32) { s.Output = RowCol{row, col} }

// BindSlot binds argument index i (caller-resolved position pos) to expr for
// the duration of one user-defined function call. Returns false if the slot
// is already active (recursion guard, spec §4.5).
func (s *Sheet) BindSlot(i int, pos RowCol, expr *arena.Node) bool {
	if s.slotActive[i] {
		return false
	}
	s.slotActive[i] = true
	s.slotPos[i] = pos
	s.slotExpr[i] = expr
	return true
}

// UnbindSlot clears argument slot i after a call completes.
func (s *Sheet) UnbindSlot(i int) {
	s.slotActive[i] = false
	s.slotExpr[i] = nil
}

// SlotFor returns the bound expression for (row,col) if any of the active
// argument slots cover that position.
func (s *Sheet) SlotFor(row, col int32) (*arena.Node, bool) {
	for i := 0; i < 4; i++ {
		if s.slotActive[i] && s.slotPos[i] == (RowCol{row, col}) {
			return s.slotExpr[i], true
		}
	}
	return nil, false
}
