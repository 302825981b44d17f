// costmodel.go implements the cost model (§4.3): a deterministic, pure
// function from a parsed transaction's shape to a total cost-unit count and
// a vote classification. Grounded on the teacher's fee/cost accounting
// style in fee_estimator.go and blob_fee_tracker.go (named constants,
// additive cost components, no hidden state).
package pack

const (
	// SignatureCost is the cost, in cost units, of verifying one signature.
	SignatureCost uint64 = 720

	// WriteLockCost is the cost of holding a write lock on one account for
	// the duration of the transaction.
	WriteLockCost uint64 = 300

	// PrecompileInvocationCost is the cost of one secp256k1/ed25519
	// precompile invocation.
	PrecompileInvocationCost uint64 = 1_000
)

// CostInputs are the raw shape facts the cost model needs, independent of
// how they were obtained (a real TxnView plus ComputeBudgetDecoder output,
// or synthetic values from a test).
type CostInputs struct {
	RequestedCU          uint32
	PriorityFeeLamports  uint64
	NumSignatures        int
	NumWritableAccounts  int
	NumPrecompileInvokes int
	IsVote               bool
}

// CostResult is the cost model's output: the modeled total cost and the
// read/write SmallSets a transaction touches, ready for conflict detection
// and block-budget accounting.
type CostResult struct {
	TotalCU     uint64
	IsVote      bool
	PriorityFee uint64
	WriteSet    SmallSet
	ReadSet     SmallSet
	WriteIdxs   []AcctIdx // small-set indices backing WriteSet, for BlockBudget's per-account tracking
}

// Score is the heap ordering key (§3): priority_fee / max(total_cu, 1).
func (c CostResult) Score() float64 {
	cu := c.TotalCU
	if cu == 0 {
		cu = 1
	}
	return float64(c.PriorityFee) / float64(cu)
}

// CostModel maps parsed transactions to CostResult. It holds no mutable
// state; Compute is a pure function of its inputs.
type CostModel struct {
	indexer acctIndexer
}

// NewCostModel returns a CostModel that projects accounts into a
// small-set index space of width k.
func NewCostModel(k uint) CostModel {
	return CostModel{indexer: newAcctIndexer(k)}
}

// Compute models the cost of a transaction given its shape and its write
// and read account lists. total_cu is NOT clamped to MAX_COST_PER_TXN here;
// the caller (Scheduler.Insert) decides whether to reject an oversized
// result, per §4.8 step 2.
func (m CostModel) Compute(in CostInputs, writeAccts, readAccts []Pubkey) CostResult {
	total := uint64(in.RequestedCU) +
		uint64(in.NumSignatures)*SignatureCost +
		uint64(in.NumWritableAccounts)*WriteLockCost +
		uint64(in.NumPrecompileInvokes)*PrecompileInvocationCost

	writeSet := NewSmallSet(m.indexer.width())
	writeIdxs := make([]AcctIdx, 0, len(writeAccts))
	for _, a := range writeAccts {
		idx := m.indexer.index(a)
		writeSet.Insert(idx)
		writeIdxs = append(writeIdxs, idx)
	}
	readSet := NewSmallSet(m.indexer.width())
	for _, a := range readAccts {
		readSet.Insert(m.indexer.index(a))
	}

	return CostResult{
		TotalCU:     total,
		IsVote:      in.IsVote,
		PriorityFee: in.PriorityFeeLamports,
		WriteSet:    writeSet,
		ReadSet:     readSet,
		WriteIdxs:   writeIdxs,
	}
}
