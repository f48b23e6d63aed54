package arena

import "testing"

func TestCheckpointRestore(t *testing.T) {
	a := New()
	a.Alloc()
	a.Alloc()
	mark := a.Checkpoint()
	a.Alloc()
	a.Alloc()
	a.Alloc()
	if a.Len() != 5 {
		t.Fatalf("expected 5 live nodes, got %d", a.Len())
	}
	a.Restore(mark)
	if a.Len() != 2 {
		t.Fatalf("expected 2 live nodes after restore, got %d", a.Len())
	}
}

func TestCloneDeepCopiesBinary(t *testing.T) {
	src := New()
	lhs := src.Alloc()
	lhs.Kind = KindNumber
	lhs.Num = 1

	rhs := src.Alloc()
	rhs.Kind = KindNumber
	rhs.Num = 2

	bin := src.Alloc()
	bin.Kind = KindBinary
	bin.Op = OpAdd
	bin.Kids[0] = lhs
	bin.Kids[1] = rhs

	dst := New()
	clone := Clone(dst, bin)

	if clone == bin || clone.Kids[0] == lhs || clone.Kids[1] == rhs {
		t.Fatalf("Clone must allocate new nodes, not alias the source tree")
	}
	if clone.Kids[0].Num != 1 || clone.Kids[1].Num != 2 {
		t.Fatalf("clone did not preserve child values")
	}

	// Mutating the clone must never affect the cached source tree.
	clone.Kids[0].Num = 99
	if lhs.Num != 1 {
		t.Fatalf("mutating a clone corrupted the source node")
	}
}

func TestCloneNilIsNil(t *testing.T) {
	dst := New()
	if got := Clone(dst, nil); got != nil {
		t.Fatalf("Clone(nil) must return nil")
	}
}
