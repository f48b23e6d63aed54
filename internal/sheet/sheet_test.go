package sheet

import (
	"testing"

	"github.com/cellengine/cellengine/internal/atom"
)

func TestSetCellGrowsBoundingBox(t *testing.T) {
	s := New(1, atom.Nil)
	s.SetCell(3, 5, atom.Dollar)
	if s.Height != 4 || s.Width != 6 {
		t.Fatalf("expected bounding box (4,6), got (%d,%d)", s.Height, s.Width)
	}
	if s.Cell(3, 5) != atom.Dollar {
		t.Fatalf("Cell did not return the stored atom")
	}
}

func TestSetCellNilClears(t *testing.T) {
	s := New(1, atom.Nil)
	s.SetCell(0, 0, atom.Dollar)
	s.SetCell(0, 0, atom.Nil)
	if !s.Cell(0, 0).IsNil() {
		t.Fatalf("expected cell cleared after setting the nil atom")
	}
}

func TestColIdxFallsBackToBase26(t *testing.T) {
	table := atom.New()
	s := New(1, atom.Nil)
	if idx := s.ColIdx(table.InternString("b"), table); idx != 1 {
		t.Fatalf("expected base-26 fallback b->1, got %d", idx)
	}
	if idx := s.ColIdx(table.InternString("aa"), table); idx != 26 {
		t.Fatalf("expected base-26 fallback aa->26, got %d", idx)
	}
}

func TestColIdxExplicitNameOverridesFallback(t *testing.T) {
	table := atom.New()
	s := New(1, atom.Nil)
	revenue := table.InternString("revenue")
	s.SetColName(9, revenue)
	if idx := s.ColIdx(revenue, table); idx != 9 {
		t.Fatalf("expected explicit column name to resolve to 9, got %d", idx)
	}
}

func TestNamedCellRoundTrip(t *testing.T) {
	table := atom.New()
	s := New(1, atom.Nil)
	name := table.InternString("total")
	s.SetNamedCell(name, 4, 2)
	pos, ok := s.NamedCell(name)
	if !ok || pos != (RowCol{4, 2}) {
		t.Fatalf("expected named cell at (4,2), got %+v ok=%v", pos, ok)
	}
	s.ClearNamedCell(name)
	if _, ok := s.NamedCell(name); ok {
		t.Fatalf("expected named cell cleared")
	}
}

func TestResultCacheAndSnapshot(t *testing.T) {
	s := New(1, atom.Nil)
	s.SetResult(0, 0, CachedResult{Kind: CachedNumber, Num: 42})
	snap := s.SnapshotResults()
	if snap[RowCol{0, 0}].Num != 42 {
		t.Fatalf("snapshot did not capture stored result")
	}
	s.ClearAllResults()
	if _, ok := s.Result(0, 0); ok {
		t.Fatalf("expected result cache cleared")
	}
	// Mutating the snapshot must not affect the live sheet.
	snap[RowCol{1, 1}] = CachedResult{Kind: CachedNumber, Num: 7}
	if _, ok := s.Result(1, 1); ok {
		t.Fatalf("mutating the snapshot must not affect the live sheet")
	}
}

func TestBindSlotRecursionGuard(t *testing.T) {
	s := New(1, atom.Nil)
	ok := s.BindSlot(0, RowCol{0, 0}, nil)
	if !ok {
		t.Fatalf("first bind should succeed")
	}
	if s.BindSlot(0, RowCol{0, 0}, nil) {
		t.Fatalf("second bind of an active slot must fail (recursion guard)")
	}
	s.UnbindSlot(0)
	if !s.BindSlot(0, RowCol{0, 0}, nil) {
		t.Fatalf("bind should succeed again after unbind")
	}
}

func TestDependantsTracksForeignCallers(t *testing.T) {
	s := New(1, atom.Nil)
	s.AddDependant(2)
	s.AddDependant(3)
	s.AddDependant(2)
	deps := s.Dependants()
	if len(deps) != 2 {
		t.Fatalf("expected 2 distinct dependants, got %d", len(deps))
	}
}
