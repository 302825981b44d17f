package pack

import "testing"

func acctSet(width uint, idxs ...AcctIdx) SmallSet {
	s := NewSmallSet(width)
	for _, i := range idxs {
		s.Insert(i)
	}
	return s
}

func TestGapRing_NoConflictWhenEmpty(t *testing.T) {
	r := NewGapRing(4)
	read := acctSet(64, 1)
	write := acctSet(64, 2)
	if r.HasConflict(read, write) {
		t.Fatal("empty ring must never conflict")
	}
}

func TestGapRing_WriteWriteConflict(t *testing.T) {
	r := NewGapRing(4)
	r.Advance(acctSet(64), acctSet(64, 5))
	if !r.HasConflict(acctSet(64), acctSet(64, 5)) {
		t.Fatal("expected conflict: candidate writes an account a recent microblock wrote")
	}
}

func TestGapRing_ReadWriteConflict(t *testing.T) {
	r := NewGapRing(4)
	r.Advance(acctSet(64, 9), acctSet(64))
	if !r.HasConflict(acctSet(64), acctSet(64, 9)) {
		t.Fatal("expected conflict: candidate writes an account a recent microblock read")
	}
	if !r.HasConflict(acctSet(64, 9), acctSet(64)) {
		t.Fatal("expected conflict: candidate reads an account a recent microblock wrote")
	}
}

func TestGapRing_NoConflictDisjointAccounts(t *testing.T) {
	r := NewGapRing(4)
	r.Advance(acctSet(64, 1), acctSet(64, 2))
	if r.HasConflict(acctSet(64, 3), acctSet(64, 4)) {
		t.Fatal("disjoint accounts must not conflict")
	}
}

func TestGapRing_EvictsOldestBeyondWindow(t *testing.T) {
	r := NewGapRing(3) // window = gap-1 = 2

	r.Advance(acctSet(64), acctSet(64, 1)) // will be evicted
	r.Advance(acctSet(64), acctSet(64, 2))
	r.Advance(acctSet(64), acctSet(64, 3))
	if r.HasConflict(acctSet(64), acctSet(64, 1)) {
		t.Fatal("account written 3 microblocks ago (window=2) should have aged out")
	}
	if !r.HasConflict(acctSet(64), acctSet(64, 2)) {
		t.Fatal("account written 2 microblocks ago should still conflict")
	}
}

func TestGapRing_ResetClearsHistory(t *testing.T) {
	r := NewGapRing(4)
	r.Advance(acctSet(64), acctSet(64, 7))
	r.Reset()
	if r.HasConflict(acctSet(64), acctSet(64, 7)) {
		t.Fatal("reset must clear all prior microblock footprints")
	}
}

func TestGapRing_ZeroWidthIsNoop(t *testing.T) {
	r := NewGapRing(0)
	r.Advance(acctSet(64, 1), acctSet(64, 2)) // must not panic
	if r.HasConflict(acctSet(64, 1), acctSet(64, 2)) {
		t.Fatal("zero-width ring holds no history")
	}
}

// Gap=1 means a transaction need not avoid conflicting with anything: the
// downstream pipeline has already drained by the time the next microblock
// is scheduled (§4.6, §9's rationale: m+gap-1 == m when gap==1).
func TestGapRing_GapOneNeverConflicts(t *testing.T) {
	r := NewGapRing(1)
	r.Advance(acctSet(64, 1), acctSet(64, 2))
	if r.HasConflict(acctSet(64, 1), acctSet(64, 2)) {
		t.Fatal("gap=1 must retain no conflict history at all")
	}
}
