// runner.go implements Runner, a fan-out wrapper over N independently
// owned Scheduler instances (SPEC_FULL §3). Each Scheduler is
// single-threaded by design (§5: "no sharing across instances"); Runner
// never lets two goroutines touch the same instance concurrently — it
// buckets work by a consistent hash of the payload bytes first, then runs
// one goroutine per non-empty bucket. Grounded on the teacher's
// sharding.go (ShardedPool: consistent-hash routing across N independently
// locked shards), generalized from per-shard mutexes to per-instance
// goroutine exclusivity since a Scheduler, unlike a TxShard, must never be
// touched by more than one goroutine at all.
package pack

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// Runner owns NumInstances independent Schedulers and routes work to them.
type Runner struct {
	instances []*Scheduler
}

// NewRunner constructs n independently owned Schedulers, each built from
// the same cfg/parser/cbDecoder.
func NewRunner(n int, cfg Config, parser Parser, cbDecoder ComputeBudgetDecoder) (*Runner, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pack: Runner requires at least one instance, got %d", n)
	}
	instances := make([]*Scheduler, n)
	for i := range instances {
		s, err := NewScheduler(cfg, parser, cbDecoder)
		if err != nil {
			return nil, fmt.Errorf("pack: constructing instance %d: %w", i, err)
		}
		instances[i] = s
	}
	return &Runner{instances: instances}, nil
}

// NumInstances returns the number of owned Scheduler instances.
func (r *Runner) NumInstances() int { return len(r.instances) }

// Instance returns the i'th owned Scheduler, for callers that want direct
// access (e.g. to call Delete, which is routed by signature rather than by
// payload bytes and so cannot be load-balanced the same way as Insert).
func (r *Runner) Instance(i int) *Scheduler { return r.instances[i] }

// routeIndex maps payload bytes to an instance index by a stable hash, so
// repeated inserts of the same bytes are always routed consistently.
func (r *Runner) routeIndex(payload []byte) int {
	return int(xxhash.Sum64(payload) % uint64(len(r.instances)))
}

// InsertBatch routes each payload to an instance by routeIndex and inserts
// concurrently, one goroutine per instance that has at least one payload
// assigned to it (never more than one goroutine per instance). Returns one
// error per payload, aligned by index with payloads.
func (r *Runner) InsertBatch(ctx context.Context, payloads [][]byte) []error {
	buckets := make([][]int, len(r.instances))
	for i, p := range payloads {
		idx := r.routeIndex(p)
		buckets[idx] = append(buckets[idx], i)
	}

	errs := make([]error, len(payloads))
	g, _ := errgroup.WithContext(ctx)
	for instIdx, indices := range buckets {
		if len(indices) == 0 {
			continue
		}
		instIdx, indices := instIdx, indices
		g.Go(func() error {
			inst := r.instances[instIdx]
			for _, i := range indices {
				errs[i] = inst.Insert(payloads[i])
			}
			return nil
		})
	}
	_ = g.Wait() // per-payload errors are carried in errs, not the group error
	return errs
}

// ScheduleAll calls ScheduleNextMicroblock on every instance concurrently.
// outBuffers must have one slice per instance; the returned counts slice is
// aligned with r.instances.
func (r *Runner) ScheduleAll(ctx context.Context, cuLimit uint64, voteFraction float64, outBuffers [][]OutputEntry) ([]int, error) {
	if len(outBuffers) != len(r.instances) {
		return nil, fmt.Errorf("pack: ScheduleAll needs %d out buffers, got %d", len(r.instances), len(outBuffers))
	}
	counts := make([]int, len(r.instances))
	g, _ := errgroup.WithContext(ctx)
	for i := range r.instances {
		i := i
		g.Go(func() error {
			counts[i] = r.instances[i].ScheduleNextMicroblock(cuLimit, voteFraction, outBuffers[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// EndBlockAll resets every instance's BlockBudget concurrently.
func (r *Runner) EndBlockAll(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for i := range r.instances {
		i := i
		g.Go(func() error {
			r.instances[i].EndBlock()
			return nil
		})
	}
	return g.Wait()
}

// AvailTxnCnt sums avail_txn_cnt across every instance.
func (r *Runner) AvailTxnCnt() uint64 {
	var total uint64
	for _, inst := range r.instances {
		total += inst.AvailTxnCnt()
	}
	return total
}
