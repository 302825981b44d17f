// wireformat.go provides WireParser, a reference implementation of the
// Parser interface declared in txnview.go. The real wire format is owned by
// an external collaborator (spec §1); this is a simple, fully self-contained
// compact encoding used by cmd/packsched and by this package's own tests so
// the whole insert -> schedule path is exercisable without that external
// component.
//
// Layout (all multi-byte integers big-endian):
//
//	u8               num_signatures
//	  [64]byte       x num_signatures
//	u8               num_required_signatures
//	u8               num_readonly_signed_accounts
//	u8               num_readonly_unsigned_accounts
//	u8               num_account_keys
//	  [32]byte       x num_account_keys
//	u8               num_instructions
//	  u8             program_id_index
//	  u8             num_account_indices
//	    u8           x num_account_indices
//	  u16            data_len
//	    byte         x data_len
package pack

import "encoding/binary"

// WireParser is the reference Parser implementation described above.
type WireParser struct{}

// Parse implements Parser.
func (WireParser) Parse(payload []byte) (TxnView, error) {
	r := byteReader{buf: payload}

	numSigs, ok := r.u8()
	if !ok || numSigs == 0 {
		return TxnView{}, ErrMalformedTxn
	}
	sigs := make([]Signature, numSigs)
	for i := range sigs {
		b, ok := r.take(64)
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		copy(sigs[i][:], b)
	}

	numReq, ok1 := r.u8()
	numROSigned, ok2 := r.u8()
	numROUnsigned, ok3 := r.u8()
	if !ok1 || !ok2 || !ok3 {
		return TxnView{}, ErrMalformedTxn
	}

	numKeys, ok := r.u8()
	if !ok {
		return TxnView{}, ErrMalformedTxn
	}
	keys := make([]Pubkey, numKeys)
	for i := range keys {
		b, ok := r.take(32)
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		copy(keys[i][:], b)
	}

	numInstr, ok := r.u8()
	if !ok {
		return TxnView{}, ErrMalformedTxn
	}
	instrs := make([]Instruction, numInstr)
	for i := range instrs {
		progIdx, ok := r.u8()
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		numAccts, ok := r.u8()
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		acctIdxBytes, ok := r.take(int(numAccts))
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		dataLen, ok := r.u16()
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		data, ok := r.take(int(dataLen))
		if !ok {
			return TxnView{}, ErrMalformedTxn
		}
		instrs[i] = Instruction{
			ProgramIDIndex: progIdx,
			AccountIndices: append([]uint8(nil), acctIdxBytes...),
			Data:           data,
		}
	}

	if int(numReq) > len(keys) {
		return TxnView{}, ErrMalformedTxn
	}

	return TxnView{
		Raw:        payload,
		Signatures: sigs,
		Header: MessageHeader{
			NumRequiredSignatures:       numReq,
			NumReadonlySignedAccounts:   numROSigned,
			NumReadonlyUnsignedAccounts: numROUnsigned,
		},
		AccountKeys:  keys,
		Instructions: instrs,
	}, nil
}

// byteReader is a minimal cursor over a byte slice. It never copies data it
// does not have to, matching TxnView's zero-copy intent: Instruction.Data
// slices reference the original payload.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) u8() (uint8, bool) {
	if r.pos >= len(r.buf) {
		return 0, false
	}
	v := r.buf[r.pos]
	r.pos++
	return v, true
}

func (r *byteReader) u16() (uint16, bool) {
	b, ok := r.take(2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

func (r *byteReader) take(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}
