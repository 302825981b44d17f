// blockbudget.go implements BlockBudget (§4.7): the block-scoped cost
// accounting that enforces three independent caps — total cost, vote cost,
// and per-account write cost — all reset at end_block. Grounded on the
// teacher's blob_fee_tracker.go, which tracks several independent
// running-total counters (a total and per-category breakdowns) rather than
// a single scalar.
package pack

// BlockBudget accumulates cost spent in the block currently being built.
type BlockBudget struct {
	maxTotal      uint64
	maxVote       uint64
	maxPerAccount uint64

	totalCost uint64
	voteCost  uint64
	writeCost map[AcctIdx]uint64
}

// NewBlockBudget returns an empty BlockBudget with the given caps.
func NewBlockBudget(maxTotal, maxVote, maxPerAccount uint64) *BlockBudget {
	return &BlockBudget{
		maxTotal:      maxTotal,
		maxVote:       maxVote,
		maxPerAccount: maxPerAccount,
		writeCost:     make(map[AcctIdx]uint64),
	}
}

// TotalCost returns the cost committed to the block so far.
func (b *BlockBudget) TotalCost() uint64 { return b.totalCost }

// VoteCost returns the vote-category cost committed to the block so far.
func (b *BlockBudget) VoteCost() uint64 { return b.voteCost }

// CanAdmit reports whether a transaction of the given cost, vote
// classification, and write-account footprint would fit within every
// independent cap without committing anything (§4.7, §4.8 step 5, invariant
// 6): totalCost must stay within maxTotal, voteCost must stay within maxVote
// for vote transactions, and writeCost[idx] must stay within maxPerAccount
// for every account the transaction writes to. The three caps are
// independent; there is no derived non-vote ceiling.
func (b *BlockBudget) CanAdmit(cost uint64, isVote bool, writeIdxs []AcctIdx) bool {
	if b.totalCost+cost > b.maxTotal {
		return false
	}
	if isVote && b.voteCost+cost > b.maxVote {
		return false
	}
	for _, idx := range writeIdxs {
		if b.writeCost[idx]+cost > b.maxPerAccount {
			return false
		}
	}
	return true
}

// Reserve commits cost against every relevant sub-budget. The caller must
// have already confirmed CanAdmit for the same arguments; Reserve does not
// re-check and will push counters past their caps if misused.
func (b *BlockBudget) Reserve(cost uint64, isVote bool, writeIdxs []AcctIdx) {
	b.totalCost += cost
	if isVote {
		b.voteCost += cost
	}
	for _, idx := range writeIdxs {
		b.writeCost[idx] += cost
	}
}

// Reset clears all accumulated cost, as done at end_block (§4.8).
func (b *BlockBudget) Reset() {
	b.totalCost = 0
	b.voteCost = 0
	b.writeCost = make(map[AcctIdx]uint64)
}
