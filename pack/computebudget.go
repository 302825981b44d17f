// computebudget.go implements the compute-budget instruction decoder
// (§4.2): given the data bytes of a compute-budget instruction, it extracts
// the requested compute unit count and the priority fee. The instruction's
// byte layout is an implementation convention private to this package (the
// compute-budget *program* that emits it is, per spec §1, external); on any
// decode failure the scheduler falls back to the spec's documented default
// of DEFAULT_CU_PER_INSTR * instr_count with a zero priority fee.
package pack

import "encoding/binary"

// ComputeBudgetProgramID is the well-known program id that owns
// compute-budget instructions.
var ComputeBudgetProgramID = Pubkey{0xC0, 0x3D, 0xB0, 0x6E}

const (
	cbTagSetComputeUnitLimit uint8 = 0
	cbTagSetComputeUnitPrice uint8 = 1
)

// ComputeBudgetDecoder extracts (requested_cu, priority_fee_lamports) from a
// transaction's compute-budget instructions.
type ComputeBudgetDecoder interface {
	Decode(view *TxnView) (requestedCU uint32, priorityFeeLamports uint64, ok bool)
}

// DefaultComputeBudgetDecoder is the reference decoder for this package's
// compute-budget wire layout: a one-byte tag followed by a big-endian
// payload, where tag cbTagSetComputeUnitLimit carries a u32 unit count
// (5 bytes in all) and tag cbTagSetComputeUnitPrice a u64 micro-lamports
// per CU price (9 bytes in all). If a transaction carries more than one
// SetComputeUnitLimit or SetComputeUnitPrice instruction, later occurrences
// overwrite earlier ones, matching the real compute budget program's
// last-instruction-wins behavior.
type DefaultComputeBudgetDecoder struct{}

// Decode implements ComputeBudgetDecoder.
func (DefaultComputeBudgetDecoder) Decode(view *TxnView) (uint32, uint64, bool) {
	instrs := view.ComputeBudgetInstructions(ComputeBudgetProgramID)
	if len(instrs) == 0 {
		return 0, 0, false
	}

	var (
		units       uint32
		microLamports uint64
		sawUnits    bool
	)
	for _, instr := range instrs {
		if len(instr.Data) == 0 {
			continue
		}
		switch instr.Data[0] {
		case cbTagSetComputeUnitLimit:
			if len(instr.Data) < 5 {
				continue
			}
			units = binary.BigEndian.Uint32(instr.Data[1:5])
			sawUnits = true
		case cbTagSetComputeUnitPrice:
			if len(instr.Data) < 9 {
				continue
			}
			microLamports = binary.BigEndian.Uint64(instr.Data[1:9])
		}
	}
	if !sawUnits {
		return 0, 0, false
	}

	// priority_fee_lamports = ceil(requested_cu * microLamportsPerCU / 1e6),
	// mirroring the real network's micro-lamport compute unit pricing.
	fee := (uint64(units)*microLamports + 999_999) / 1_000_000
	return units, fee, true
}
