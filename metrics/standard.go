package metrics

// Pre-defined metrics for the pack scheduler. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- Pool metrics ----

	// PackAvailTxnCnt tracks the number of resident transactions (avail_txn_cnt).
	PackAvailTxnCnt = DefaultRegistry.Gauge("pack.avail_txn_cnt")
	// PackInserted counts transactions accepted by insert.
	PackInserted = DefaultRegistry.Counter("pack.inserted")
	// PackRejected counts transactions rejected by insert, for any reason.
	PackRejected = DefaultRegistry.Counter("pack.rejected")
	// PackEvicted counts transactions evicted on heap replacement.
	PackEvicted = DefaultRegistry.Counter("pack.evicted")
	// PackDeleted counts transactions removed via delete.
	PackDeleted = DefaultRegistry.Counter("pack.deleted")

	// ---- Scheduling metrics ----

	// PackMicroblocksScheduled counts calls to schedule_next_microblock.
	PackMicroblocksScheduled = DefaultRegistry.Counter("pack.microblocks_scheduled")
	// PackTxnEmitted counts transactions emitted across all microblocks.
	PackTxnEmitted = DefaultRegistry.Counter("pack.txn_emitted")
	// PackTxnDeferred counts per-attempt deferrals within a microblock build.
	PackTxnDeferred = DefaultRegistry.Counter("pack.txn_deferred")
	// PackMicroblockSize records the emitted count per microblock.
	PackMicroblockSize = DefaultRegistry.Histogram("pack.microblock_size")

	// ---- Block budget metrics ----

	// PackBlockCostTotal tracks the current block's total cost units consumed.
	PackBlockCostTotal = DefaultRegistry.Gauge("pack.block_cost_total")
	// PackBlockVoteCost tracks the current block's vote-category cost units.
	PackBlockVoteCost = DefaultRegistry.Gauge("pack.block_vote_cost")
	// PackBlocksEnded counts calls to end_block.
	PackBlocksEnded = DefaultRegistry.Counter("pack.blocks_ended")

	// ---- Gap ring metrics ----

	// PackGapConflicts counts candidates rejected by the gap ring check.
	PackGapConflicts = DefaultRegistry.Counter("pack.gap_conflicts")

	// ---- Host metrics ----

	// PackHostCPUPercent tracks this process's CPU utilization, sampled
	// periodically by a CPUTracker in cmd/packsched.
	PackHostCPUPercent = DefaultRegistry.Gauge("pack.host_cpu_percent")
)
