package pack

import "fmt"

// Block-level cost constants (§6). These are construction-time parameters,
// not renegotiated per transaction.
const (
	// MaxCostPerBlock is the default total cost-unit budget for one block.
	MaxCostPerBlock uint64 = 48_000_000

	// MaxVoteCostPerBlock is the default vote-category cost-unit budget
	// for one block.
	MaxVoteCostPerBlock uint64 = 36_000_000

	// MaxWriteCostPerAcct is the default per-writable-account cost-unit
	// budget for one block.
	MaxWriteCostPerAcct uint64 = 12_000_000

	// MaxCostPerTxn is the default per-transaction cost-unit ceiling;
	// transactions modeled above this are rejected at insert.
	MaxCostPerTxn uint64 = 1_400_000

	// GMax is the maximum supported gap; a GapRing retains gap-1 slots.
	GMax = 16

	// DefaultCUPerInstr is the assumed compute cost of one instruction
	// when the compute-budget decoder fails to decode a requested unit
	// count.
	DefaultCUPerInstr uint32 = 150
)

// Config collects the constructor inputs named in spec §6: pack_depth, gap,
// max_txn_per_microblock, plus the block-level cost constants and the
// SmallSet width. There is no footprint/alignment query here (unlike the
// original C implementation) because Go's allocator, not a caller-supplied
// arena, owns the backing memory; every slice below is sized once at
// construction and never grows.
type Config struct {
	// PackDepth is the maximum number of resident transactions (TxnPool
	// slab size / PriorityHeap capacity).
	PackDepth int

	// Gap is the pipeline depth against which new microblocks are checked
	// for conflicts with recently emitted ones. 1 <= Gap <= GMax.
	Gap int

	// MaxTxnPerMicroblock bounds how many transactions a single
	// schedule_next_microblock call may emit.
	MaxTxnPerMicroblock int

	// SmallSetWidth is K, the bit width of the account-identity projection
	// used throughout conflict detection (§4.1). Larger values reduce the
	// false-positive collision rate at the cost of more memory per set.
	SmallSetWidth uint

	MaxCostPerBlock     uint64
	MaxVoteCostPerBlock uint64
	MaxWriteCostPerAcct uint64
	MaxCostPerTxn       uint64
	DefaultCUPerInstr   uint32
}

// DefaultConfig returns sensible defaults for a moderate-throughput
// scheduler instance.
func DefaultConfig() Config {
	return Config{
		PackDepth:           8192,
		Gap:                 4,
		MaxTxnPerMicroblock: 64,
		SmallSetWidth:       65536,
		MaxCostPerBlock:     MaxCostPerBlock,
		MaxVoteCostPerBlock: MaxVoteCostPerBlock,
		MaxWriteCostPerAcct: MaxWriteCostPerAcct,
		MaxCostPerTxn:       MaxCostPerTxn,
		DefaultCUPerInstr:   DefaultCUPerInstr,
	}
}

// Validate checks the configuration for internal consistency before a
// Scheduler is constructed from it.
func (c Config) Validate() error {
	if c.PackDepth <= 0 {
		return fmt.Errorf("pack: PackDepth must be positive, got %d", c.PackDepth)
	}
	if c.Gap < 1 || c.Gap > GMax {
		return fmt.Errorf("pack: Gap must be in [1, %d], got %d", GMax, c.Gap)
	}
	if c.MaxTxnPerMicroblock <= 0 {
		return fmt.Errorf("pack: MaxTxnPerMicroblock must be positive, got %d", c.MaxTxnPerMicroblock)
	}
	if c.SmallSetWidth == 0 {
		return fmt.Errorf("pack: SmallSetWidth must be positive")
	}
	if c.MaxCostPerTxn == 0 || c.MaxCostPerTxn > c.MaxCostPerBlock {
		return fmt.Errorf("pack: MaxCostPerTxn must be positive and <= MaxCostPerBlock")
	}
	return nil
}
