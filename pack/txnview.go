// txnview.go defines TxnView, the zero-copy descriptor over a parsed
// transaction payload (§4.3 of the component table). The byte-level parser
// that produces a TxnView from raw wire bytes is, per spec §1, an external
// collaborator referenced only by interface: production callers inject
// their own. wireformat.go ships a concrete reference Parser so the package
// is self-contained and testable without that external component.
package pack

import "errors"

// ErrMalformedTxn is returned by a Parser when payload bytes cannot be
// decoded into a well-formed TxnView.
var ErrMalformedTxn = errors.New("pack: malformed transaction payload")

// VoteProgramID is the well-known program id used to structurally
// fingerprint simple vote transactions (§4.3, §9).
var VoteProgramID = Pubkey{0xFE, 0xED, 0xFA, 0xCE}

// Instruction is one instruction within a transaction's message: the index
// of its program id in AccountKeys, the indices of the accounts it
// references, and its opaque instruction data.
type Instruction struct {
	ProgramIDIndex uint8
	AccountIndices []uint8
	Data           []byte
}

// MessageHeader carries the three counts needed to classify each account in
// AccountKeys as writable-signer, readonly-signer, writable-non-signer, or
// readonly-non-signer, following the compact account-privilege encoding
// common to account-based ledgers.
type MessageHeader struct {
	NumRequiredSignatures      uint8
	NumReadonlySignedAccounts  uint8
	NumReadonlyUnsignedAccounts uint8
}

// TxnView is a zero-copy descriptor over a parsed transaction: it never
// copies Data slices out of the backing payload, only slices into it.
type TxnView struct {
	Raw          []byte // the original payload, retained for re-verification/logging
	Signatures   []Signature
	Header       MessageHeader
	AccountKeys  []Pubkey
	Instructions []Instruction
}

// NumSignatures returns the number of signatures carried by the
// transaction.
func (v *TxnView) NumSignatures() int { return len(v.Signatures) }

// PrimarySignature returns the transaction's stable signature-derived
// identity (§3): its first signature.
func (v *TxnView) PrimarySignature() (Signature, bool) {
	if len(v.Signatures) == 0 {
		return Signature{}, false
	}
	return v.Signatures[0], true
}

// IsWritable reports whether the account at AccountKeys[i] carries a write
// lock for this transaction.
func (v *TxnView) IsWritable(i int) bool {
	n := len(v.AccountKeys)
	if i < 0 || i >= n {
		return false
	}
	numSigned := int(v.Header.NumRequiredSignatures)
	numReadonlySigned := int(v.Header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(v.Header.NumReadonlyUnsignedAccounts)

	if i < numSigned {
		return i < numSigned-numReadonlySigned
	}
	return i < n-numReadonlyUnsigned
}

// WriteAccounts returns every account key this transaction holds a write
// lock on.
func (v *TxnView) WriteAccounts() []Pubkey {
	out := make([]Pubkey, 0, len(v.AccountKeys))
	for i, k := range v.AccountKeys {
		if v.IsWritable(i) {
			out = append(out, k)
		}
	}
	return out
}

// ReadAccounts returns every account key this transaction holds only a
// read lock on.
func (v *TxnView) ReadAccounts() []Pubkey {
	out := make([]Pubkey, 0, len(v.AccountKeys))
	for i, k := range v.AccountKeys {
		if !v.IsWritable(i) {
			out = append(out, k)
		}
	}
	return out
}

// ProgramID returns the program id referenced by an instruction, or the
// zero Pubkey if the instruction's ProgramIDIndex is out of range.
func (v *TxnView) ProgramID(instr Instruction) Pubkey {
	if int(instr.ProgramIDIndex) >= len(v.AccountKeys) {
		return Pubkey{}
	}
	return v.AccountKeys[instr.ProgramIDIndex]
}

// ComputeBudgetInstructions returns the subset of Instructions whose
// program id is cbProgramID.
func (v *TxnView) ComputeBudgetInstructions(cbProgramID Pubkey) []Instruction {
	var out []Instruction
	for _, instr := range v.Instructions {
		if v.ProgramID(instr) == cbProgramID {
			out = append(out, instr)
		}
	}
	return out
}

// IsSimpleVote applies the structural fingerprint from §4.3/§9: exactly one
// instruction, targeting the well-known vote program, with exactly one
// signature and exactly one writable account (the vote account itself).
// The classifier is intentionally pluggable — callers that need a different
// fingerprint can skip this helper and classify a CostResult directly.
func (v *TxnView) IsSimpleVote() bool {
	if len(v.Instructions) != 1 {
		return false
	}
	if v.ProgramID(v.Instructions[0]) != VoteProgramID {
		return false
	}
	if v.NumSignatures() != 1 {
		return false
	}
	writable := 0
	for i := range v.AccountKeys {
		if v.IsWritable(i) {
			writable++
		}
	}
	return writable == 1
}

// Parser decodes raw wire bytes into a TxnView. Per spec §1 this is an
// external collaborator (transaction wire parsing lives outside the
// scheduler); Scheduler accepts one as a NewScheduler argument so
// production callers can inject a real implementation while tests and the
// cmd/packsched demo use the reference WireParser.
type Parser interface {
	Parse(payload []byte) (TxnView, error)
}
