// smallset.go implements SmallSet, a fixed-width bitset of account-slot
// indices used throughout the pack for conflict detection (§4.1). It wraps
// github.com/bits-and-blooms/bitset rather than hand-rolling a word array:
// the library already gives us O(words) Union/Intersection/Test with a
// well-tested implementation, and it is a dependency the wider ecosystem
// already trusts for exactly this shape of problem.
package pack

import "github.com/bits-and-blooms/bitset"

// SmallSet is a fixed-width bitset over account-slot indices (width K,
// chosen at Scheduler construction via Config.SmallSetWidth). Two distinct
// accounts project onto the same bit with probability roughly 1/K; such
// collisions only ever cause a transaction's scheduling to be delayed, never
// an incorrect emission (§9).
type SmallSet struct {
	bits *bitset.BitSet
	k    uint
}

// NewSmallSet returns an empty SmallSet of width k.
func NewSmallSet(k uint) SmallSet {
	return SmallSet{bits: bitset.New(k), k: k}
}

// Width returns K, the configured bit width.
func (s SmallSet) Width() uint { return s.k }

// Insert sets bit i. i must be < Width(); callers project account
// identities through AcctIdx before calling Insert.
func (s SmallSet) Insert(i AcctIdx) {
	s.bits.Set(uint(i))
}

// Test reports whether bit i is set.
func (s SmallSet) Test(i AcctIdx) bool {
	return s.bits.Test(uint(i))
}

// IsEmpty reports whether no bits are set.
func (s SmallSet) IsEmpty() bool {
	return s.bits.None()
}

// Clear resets every bit to zero, so the SmallSet can be reused without a
// fresh allocation (used when recycling a freed pool slot).
func (s SmallSet) Clear() {
	s.bits.ClearAll()
}

// Clone returns an independent copy of s.
func (s SmallSet) Clone() SmallSet {
	return SmallSet{bits: s.bits.Clone(), k: s.k}
}

// Union returns a new SmallSet containing the union of s and other.
func (s SmallSet) Union(other SmallSet) SmallSet {
	return SmallSet{bits: s.bits.Union(other.bits), k: s.k}
}

// InPlaceUnion mutates s to be the union of s and other.
func (s SmallSet) InPlaceUnion(other SmallSet) {
	s.bits.InPlaceUnion(other.bits)
}

// Intersects reports whether s and other share any set bit, without
// allocating an intermediate set.
func (s SmallSet) Intersects(other SmallSet) bool {
	return s.bits.IntersectionCardinality(other.bits) > 0
}
