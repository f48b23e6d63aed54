package atom

import "testing"

func TestInternIdentity(t *testing.T) {
	table := New()
	a := table.InternString("hello")
	b := table.InternString("hello")
	if a != b {
		t.Fatalf("expected identical atoms for repeated interning, got %v and %v", a, b)
	}
	c := table.InternString("world")
	if a == c {
		t.Fatalf("distinct strings must not share an atom")
	}
}

func TestInternEmptyIsNil(t *testing.T) {
	table := New()
	if got := table.InternString(""); got != Nil {
		t.Fatalf("empty string must intern to Nil, got %v", got)
	}
	if !Nil.IsNil() {
		t.Fatalf("Nil.IsNil() must be true")
	}
}

func TestInternLowerCaseInsensitive(t *testing.T) {
	table := New()
	a := table.InternLower([]byte("Sheet1"))
	b := table.InternLower([]byte("SHEET1"))
	if a != b {
		t.Fatalf("InternLower must fold case, got distinct atoms")
	}
	if table.String(a) != "sheet1" {
		t.Fatalf("expected lowercased bytes, got %q", table.String(a))
	}
}

func TestBytesRoundTrip(t *testing.T) {
	table := New()
	a := table.InternString("formula text")
	if got := table.String(a); got != "formula text" {
		t.Fatalf("String roundtrip failed: got %q", got)
	}
}

func TestPreallocatedDollarAtom(t *testing.T) {
	table := New()
	if got := table.InternString("$"); got != Dollar {
		t.Fatalf("expected InternString(\"$\") == Dollar")
	}
}
