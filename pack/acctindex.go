// acctindex.go projects account identities into the small-set index space
// described in spec §3: "a stable hash modulo K". We use xxhash rather than
// a hand-rolled mix; it is already the corpus's hash of choice for exactly
// this kind of high-volume, non-cryptographic bucketing.
package pack

import "github.com/cespare/xxhash/v2"

// AcctIdx is a small-set bit index, the projection of a Pubkey modulo K.
type AcctIdx uint32

// acctIndexer projects Pubkeys into the [0, k) small-set index space with a
// stable hash. The same Pubkey always maps to the same AcctIdx for the
// lifetime of a given width k; two distinct keys collide with probability
// roughly 1/k, which is by design (§4.1, §9) and only ever delays
// scheduling, never corrupts it.
type acctIndexer struct {
	k uint64
}

func newAcctIndexer(k uint) acctIndexer {
	return acctIndexer{k: uint64(k)}
}

// width returns K as a uint, suitable for constructing a SmallSet.
func (a acctIndexer) width() uint {
	return uint(a.k)
}

func (a acctIndexer) index(p Pubkey) AcctIdx {
	h := xxhash.Sum64(p[:])
	return AcctIdx(h % a.k)
}
