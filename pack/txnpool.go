// txnpool.go implements TxnPool (§4.4): a bounded slab of resident
// transaction entries plus a signature-indexed lookup table for duplicate
// detection and deletion. The C original's insert_init/insert_fini split
// exists to hand the caller a stable scratch address to copy payload bytes
// into before committing; in Go, Insert's argument is already an owned
// value (the GC, not a caller-managed arena, owns it), so the two phases
// collapse into one call without losing any of §4.4's guarantees: the slab
// is still statically sized at construction (entries never grows or
// shrinks) and slots are still reused via a free list rather than
// reallocated.
package pack

// PoolEntry is one resident transaction record (§3, "Transaction entry").
type PoolEntry struct {
	Signature Signature
	View      TxnView
	Cost      CostResult
}

// TxnPool is a slab of at most depth resident entries, addressed by a
// stable pool index, plus a signature -> index lookup table.
type TxnPool struct {
	entries []PoolEntry
	live    []bool
	free    []int // free slot indices (LIFO)
	bySig   map[Signature]int
	depth   int
}

// NewTxnPool returns an empty TxnPool with room for depth resident
// transactions.
func NewTxnPool(depth int) *TxnPool {
	p := &TxnPool{
		entries: make([]PoolEntry, depth),
		live:    make([]bool, depth),
		free:    make([]int, depth),
		bySig:   make(map[Signature]int, depth),
		depth:   depth,
	}
	for i := 0; i < depth; i++ {
		p.free[i] = depth - 1 - i
	}
	return p
}

// Len returns the number of resident entries (the Scheduler's
// avail_txn_cnt).
func (p *TxnPool) Len() int { return len(p.bySig) }

// Full reports whether the slab has no free slots.
func (p *TxnPool) Full() bool { return len(p.free) == 0 }

// Lookup returns the pool index for sig, if resident.
func (p *TxnPool) Lookup(sig Signature) (int, bool) {
	idx, ok := p.bySig[sig]
	return idx, ok
}

// Get returns a pointer to the entry at idx. idx must refer to a live
// slot (checked by the caller via Lookup or a value returned from Insert).
func (p *TxnPool) Get(idx int) *PoolEntry {
	return &p.entries[idx]
}

// Insert allocates a free slot, stores the entry, and indexes it by
// signature. The caller must have already checked !Full() and that sig is
// not a Lookup hit (Invariant 3: the signature index holds exactly the
// resident signatures).
func (p *TxnPool) Insert(sig Signature, view TxnView, cost CostResult) int {
	n := len(p.free)
	idx := p.free[n-1]
	p.free = p.free[:n-1]

	p.entries[idx] = PoolEntry{Signature: sig, View: view, Cost: cost}
	p.live[idx] = true
	p.bySig[sig] = idx
	return idx
}

// Remove frees the slot at idx and removes its signature index entry.
// idx must refer to a currently live slot.
func (p *TxnPool) Remove(idx int) {
	sig := p.entries[idx].Signature
	delete(p.bySig, sig)
	p.entries[idx] = PoolEntry{}
	p.live[idx] = false
	p.free = append(p.free, idx)
}
