package sheetserve

import "testing"

func TestParseCellID(t *testing.T) {
	cases := []struct {
		id       string
		row, col int32
		ok       bool
	}{
		{"A1", 0, 0, true},
		{"B1", 0, 1, true},
		{"A2", 1, 0, true},
		{"Z1", 0, 25, true},
		{"AA1", 0, 26, true},
		{"", 0, 0, false},
		{"1", 0, 0, false},
		{"A", 0, 0, false},
		{"A0", 0, 0, false},
	}
	for _, c := range cases {
		row, col, ok := parseCellID(c.id)
		if ok != c.ok {
			t.Fatalf("parseCellID(%q) ok=%v, want %v", c.id, ok, c.ok)
		}
		if !ok {
			continue
		}
		if row != c.row || col != c.col {
			t.Errorf("parseCellID(%q) = (%d,%d), want (%d,%d)", c.id, row, col, c.row, c.col)
		}
	}
}

func TestFormatCellIDRoundTrip(t *testing.T) {
	for _, id := range []string{"A1", "B1", "Z9", "AA1", "AB12"} {
		row, col, ok := parseCellID(id)
		if !ok {
			t.Fatalf("parseCellID(%q) failed", id)
		}
		if got := formatCellID(row, col); got != id {
			t.Errorf("formatCellID(%d,%d) = %q, want %q", row, col, got, id)
		}
	}
}
