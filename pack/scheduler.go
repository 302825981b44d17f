// scheduler.go implements the Scheduler (§4.8): the orchestrator that
// composes TxnPool, PriorityHeap, GapRing, and BlockBudget behind the four
// public operations insert / schedule_next_microblock / delete / end_block,
// plus avail_txn_cnt. Grounded on the teacher's txpool.go, which plays the
// same orchestrator role over its own pending_list/price_heap/nonce_tracker
// components.
package pack

import (
	"github.com/firedancer-go/packsched/log"
	"github.com/firedancer-go/packsched/metrics"
)

// OutputEntry is one emitted transaction, written into schedule_next_microblock's
// out_buffer (§6).
type OutputEntry struct {
	Payload      []byte
	View         TxnView
	IsSimpleVote bool
}

// deferredEntry is a peeked-but-not-emitted transaction set aside during one
// schedule_next_microblock call, to be re-inserted into the heap before
// returning (§4.8 step 3, step 5).
type deferredEntry struct {
	poolIdx int
	score   float64
}

// Scheduler is the bounded, priority-ordered pending-transaction pool and
// microblock scheduling loop described by §4.8. It is not safe for
// concurrent use; callers wanting parallelism run multiple independently
// owned Schedulers (§5).
type Scheduler struct {
	cfg Config

	parser    Parser
	cbDecoder ComputeBudgetDecoder
	costModel CostModel

	pool        *TxnPool
	heap        *PriorityHeap
	gapRing     *GapRing
	blockBudget *BlockBudget

	microblockCount uint64

	insertMeter *metrics.Meter
	emitMeter   *metrics.Meter
	trace       *metrics.MetricsCollector

	log *log.Logger
}

// Stats is a point-in-time snapshot of scheduler counters, supplementing
// the spec's required avail_txn_cnt with the rest of the state a caller
// would want to export (SPEC_FULL §4).
type Stats struct {
	AvailTxnCnt     uint64
	MicroblockCount uint64
	BlockCostTotal  uint64
	BlockVoteCost   uint64

	// InsertRate1/EmitRate1 are 1-minute EWMA rates (events/sec) of Insert
	// calls that admitted a transaction and of transactions emitted by
	// ScheduleNextMicroblock, respectively.
	InsertRate1 float64
	EmitRate1   float64
}

// NewScheduler constructs a Scheduler. parser and cbDecoder are the
// external collaborators named in §1; pass WireParser{} and
// DefaultComputeBudgetDecoder{} for the reference implementations.
func NewScheduler(cfg Config, parser Parser, cbDecoder ComputeBudgetDecoder) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		cfg:         cfg,
		parser:      parser,
		cbDecoder:   cbDecoder,
		costModel:   NewCostModel(cfg.SmallSetWidth),
		pool:        NewTxnPool(int(cfg.PackDepth)),
		heap:        NewPriorityHeap(int(cfg.PackDepth)),
		gapRing:     NewGapRing(int(cfg.Gap)),
		blockBudget: NewBlockBudget(cfg.MaxCostPerBlock, cfg.MaxVoteCostPerBlock, cfg.MaxWriteCostPerAcct),
		insertMeter: metrics.NewMeter(),
		emitMeter:   metrics.NewMeter(),
		trace: metrics.NewMetricsCollector(metrics.CollectorConfig{
			MaxMetrics:       admissionTraceCapacity,
			EnableHistograms: true,
		}),
		log: log.Default().Module("pack"),
	}, nil
}

// admissionTraceCapacity bounds the Scheduler's admission trace log: it
// keeps the first admissionTraceCapacity entries and drops later ones. The
// microblock-size histogram values behind MicroblockSizeP50 are not capped.
const admissionTraceCapacity = 4096

// Insert parses payload, cost-models it, and admits it to the pool
// (§4.8, insert).
func (s *Scheduler) Insert(payload []byte) error {
	view, err := s.parser.Parse(payload)
	if err != nil {
		metrics.PackRejected.Inc()
		return ErrParse
	}
	if view.NumSignatures() == 0 {
		metrics.PackRejected.Inc()
		return ErrOversizedTxn
	}
	sig, _ := view.PrimarySignature()

	if _, resident := s.pool.Lookup(sig); resident {
		metrics.PackRejected.Inc()
		return ErrDuplicate
	}

	requestedCU, priorityFee, ok := s.cbDecoder.Decode(&view)
	if !ok {
		requestedCU = s.cfg.DefaultCUPerInstr * uint32(len(view.Instructions))
		priorityFee = 0
	}

	writeAccts := view.WriteAccounts()
	readAccts := view.ReadAccounts()
	isVote := view.IsSimpleVote()

	cost := s.costModel.Compute(CostInputs{
		RequestedCU:          requestedCU,
		PriorityFeeLamports:  priorityFee,
		NumSignatures:        view.NumSignatures(),
		NumWritableAccounts:  len(writeAccts),
		NumPrecompileInvokes: 0,
		IsVote:               isVote,
	}, writeAccts, readAccts)

	if cost.TotalCU > s.cfg.MaxCostPerTxn {
		metrics.PackRejected.Inc()
		return ErrOversizedTxn
	}

	score := cost.Score()

	if !s.pool.Full() {
		idx := s.pool.Insert(sig, view, cost)
		s.heap.Push(idx, score)
		metrics.PackInserted.Inc()
		metrics.PackAvailTxnCnt.Set(int64(s.pool.Len()))
		s.insertMeter.Mark(1)
		return nil
	}

	minIdx, minScore, ok := s.heap.MinScore()
	if !ok || score <= minScore {
		metrics.PackRejected.Inc()
		return ErrPriorityTooLow
	}

	s.heap.Remove(minIdx)
	s.pool.Remove(minIdx)
	idx := s.pool.Insert(sig, view, cost)
	s.heap.Push(idx, score)
	metrics.PackEvicted.Inc()
	metrics.PackInserted.Inc()
	s.insertMeter.Mark(1)
	return nil
}

// ScheduleNextMicroblock emits the highest-score set of pairwise
// non-conflicting resident transactions into outBuffer, subject to cuLimit,
// voteFraction, the gap constraint, and the block budget (§4.8). It
// returns the number of slots written; len(outBuffer) bounds the microblock
// size in addition to max_txn_per_microblock.
func (s *Scheduler) ScheduleNextMicroblock(cuLimit uint64, voteFraction float64, outBuffer []OutputEntry) int {
	voteCUBudget := uint64(float64(cuLimit) * voteFraction)
	nonVoteCUBudget := cuLimit - voteCUBudget

	maxEmit := int(s.cfg.MaxTxnPerMicroblock)
	if len(outBuffer) < maxEmit {
		maxEmit = len(outBuffer)
	}

	mbRead := NewSmallSet(s.cfg.SmallSetWidth)
	mbWrite := NewSmallSet(s.cfg.SmallSetWidth)
	emitted := 0

	var deferred []deferredEntry

	for emitted < maxEmit && s.heap.Len() > 0 {
		poolIdx, ok := s.heap.Pop()
		if !ok {
			break
		}
		entry := s.pool.Get(poolIdx)
		cost := entry.Cost
		score := cost.Score()

		if cost.IsVote {
			if cost.TotalCU > voteCUBudget {
				deferred = append(deferred, deferredEntry{poolIdx, score})
				s.trace.Record("pack.deferral", 1, map[string]string{"reason": "vote_cu_budget"})
				continue
			}
		} else {
			if cost.TotalCU > nonVoteCUBudget {
				deferred = append(deferred, deferredEntry{poolIdx, score})
				s.trace.Record("pack.deferral", 1, map[string]string{"reason": "nonvote_cu_budget"})
				continue
			}
		}

		if cost.WriteSet.Intersects(mbRead) || cost.WriteSet.Intersects(mbWrite) || cost.ReadSet.Intersects(mbWrite) {
			deferred = append(deferred, deferredEntry{poolIdx, score})
			s.trace.Record("pack.deferral", 1, map[string]string{"reason": "conflict"})
			continue
		}

		if s.gapRing.HasConflict(cost.ReadSet, cost.WriteSet) {
			deferred = append(deferred, deferredEntry{poolIdx, score})
			metrics.PackGapConflicts.Inc()
			s.trace.Record("pack.deferral", 1, map[string]string{"reason": "gap_conflict"})
			continue
		}

		if !s.blockBudget.CanAdmit(cost.TotalCU, cost.IsVote, cost.WriteIdxs) {
			deferred = append(deferred, deferredEntry{poolIdx, score})
			s.trace.Record("pack.deferral", 1, map[string]string{"reason": "block_budget"})
			continue
		}

		s.blockBudget.Reserve(cost.TotalCU, cost.IsVote, cost.WriteIdxs)
		if cost.IsVote {
			voteCUBudget -= cost.TotalCU
		} else {
			nonVoteCUBudget -= cost.TotalCU
		}
		mbRead.InPlaceUnion(cost.ReadSet)
		mbWrite.InPlaceUnion(cost.WriteSet)

		outBuffer[emitted] = OutputEntry{
			Payload:      entry.View.Raw,
			View:         entry.View,
			IsSimpleVote: cost.IsVote,
		}
		emitted++
		s.pool.Remove(poolIdx)
		metrics.PackTxnEmitted.Inc()
		s.emitMeter.Mark(1)
	}

	for _, d := range deferred {
		s.heap.Push(d.poolIdx, d.score)
		metrics.PackTxnDeferred.Inc()
	}

	s.gapRing.Advance(mbRead, mbWrite)
	s.microblockCount++

	metrics.PackMicroblocksScheduled.Inc()
	metrics.PackMicroblockSize.Observe(float64(emitted))
	metrics.PackAvailTxnCnt.Set(int64(s.pool.Len()))
	metrics.PackBlockCostTotal.Set(int64(s.blockBudget.TotalCost()))
	metrics.PackBlockVoteCost.Set(int64(s.blockBudget.VoteCost()))
	s.trace.RecordHistogram("pack.microblock_size", float64(emitted))

	s.log.Debug("scheduled microblock", "emitted", emitted, "cu_limit", cuLimit, "vote_fraction", voteFraction)
	return emitted
}

// AdmissionTrace returns a bounded, point-in-time copy of the earliest
// admissionTraceCapacity scheduling decisions (microblock-size observations
// and per-attempt deferral reasons); later decisions are not in it. It is
// useful for diagnosing why a scheduler's throughput dropped.
func (s *Scheduler) AdmissionTrace() []metrics.MetricEntry {
	return s.trace.GetAll()
}

// DeferralReasonCounts tallies deferrals by reason (vote_cu_budget,
// nonvote_cu_budget, conflict, gap_conflict, block_budget) from the bounded
// admission trace, so it counts only deferrals recorded before that trace
// filled up.
func (s *Scheduler) DeferralReasonCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range s.trace.GetAll() {
		if e.Name != "pack.deferral" {
			continue
		}
		reason := e.Tags["reason"]
		counts[reason]++
	}
	return counts
}

// MicroblockSizeP50 returns the median emitted-count across every
// ScheduleNextMicroblock call so far, from the admission trace's
// histogram values.
func (s *Scheduler) MicroblockSizeP50() float64 {
	return s.trace.HistogramPercentile("pack.microblock_size", 50)
}

// Delete removes a resident, not-yet-emitted entry by signature (§4.8).
func (s *Scheduler) Delete(sig Signature) bool {
	idx, ok := s.pool.Lookup(sig)
	if !ok {
		return false
	}
	if !s.heap.Remove(idx) {
		// Resident in the pool's signature index but not the heap: should
		// not happen under Invariant 2, but deletion can never panic on
		// malformed internal state (§7), so fail closed.
		return false
	}
	s.pool.Remove(idx)
	metrics.PackDeleted.Inc()
	metrics.PackAvailTxnCnt.Set(int64(s.pool.Len()))
	return true
}

// EndBlock resets the BlockBudget. The GapRing, pool, and heap are
// untouched (§4.8): the execution pipeline may straddle block boundaries.
func (s *Scheduler) EndBlock() {
	s.blockBudget.Reset()
	metrics.PackBlocksEnded.Inc()
	metrics.PackBlockCostTotal.Set(0)
	metrics.PackBlockVoteCost.Set(0)
}

// AvailTxnCnt returns the number of resident transactions.
func (s *Scheduler) AvailTxnCnt() uint64 {
	return uint64(s.pool.Len())
}

// Stats returns a snapshot of scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		AvailTxnCnt:     s.AvailTxnCnt(),
		MicroblockCount: s.microblockCount,
		BlockCostTotal:  s.blockBudget.TotalCost(),
		BlockVoteCost:   s.blockBudget.VoteCost(),
		InsertRate1:     s.insertMeter.Rate1(),
		EmitRate1:       s.emitMeter.Rate1(),
	}
}
