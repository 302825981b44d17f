package pack

import "encoding/binary"

// encodeTxn builds a wire payload (matching wireformat.go's layout) for a
// simple transaction: one signer/payer account (writable), a set of
// additional writable accounts, a set of read-only accounts, and a
// compute-budget instruction pair requesting cuUnits at microLamportsPerCU.
// sigByte and payerByte uniquely identify the transaction's signature and
// payer account across a test; write/read account identities come from the
// caller's own byte slices so tests can name shared accounts across
// transactions (mirroring spec §8's "letters name per-byte-repeated account
// identifiers").
func encodeTxn(sigByte byte, payerByte byte, writeAccts []byte, readAccts []byte, cuUnits uint32, microLamportsPerCU uint64) []byte {
	var buf []byte

	buf = append(buf, 1) // num_signatures
	sig := make([]byte, 64)
	sig[0] = sigByte
	buf = append(buf, sig...)

	buf = append(buf, 1)                      // num_required_signatures
	buf = append(buf, 0)                      // num_readonly_signed_accounts
	buf = append(buf, byte(len(readAccts)+1)) // num_readonly_unsigned_accounts (reads + compute-budget program)

	numKeys := 1 + len(writeAccts) + len(readAccts) + 1
	buf = append(buf, byte(numKeys))

	payer := make([]byte, 32)
	payer[0] = payerByte
	buf = append(buf, payer...)

	for _, w := range writeAccts {
		k := make([]byte, 32)
		k[0] = w
		buf = append(buf, k...)
	}
	for _, r := range readAccts {
		k := make([]byte, 32)
		k[0] = r
		buf = append(buf, k...)
	}
	cbKey := make([]byte, 32)
	copy(cbKey, ComputeBudgetProgramID[:])
	buf = append(buf, cbKey...)
	cbProgramIdx := byte(numKeys - 1)

	buf = append(buf, 2) // num_instructions: SetComputeUnitLimit, SetComputeUnitPrice

	// Instruction 0: SetComputeUnitLimit(cuUnits)
	buf = append(buf, cbProgramIdx)
	buf = append(buf, 0) // num_account_indices
	data0 := make([]byte, 5)
	data0[0] = cbTagSetComputeUnitLimit
	binary.BigEndian.PutUint32(data0[1:5], cuUnits)
	buf = appendU16LenPrefixed(buf, data0)

	// Instruction 1: SetComputeUnitPrice(microLamportsPerCU)
	buf = append(buf, cbProgramIdx)
	buf = append(buf, 0)
	data1 := make([]byte, 9)
	data1[0] = cbTagSetComputeUnitPrice
	binary.BigEndian.PutUint64(data1[1:9], microLamportsPerCU)
	buf = appendU16LenPrefixed(buf, data1)

	return buf
}

func appendU16LenPrefixed(buf []byte, data []byte) []byte {
	lenBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBytes, uint16(len(data)))
	buf = append(buf, lenBytes...)
	buf = append(buf, data...)
	return buf
}

// encodeVote builds a wire payload for a simple vote transaction: exactly
// one instruction targeting VoteProgramID, one signature, one writable
// account (the vote account itself), satisfying TxnView.IsSimpleVote.
func encodeVote(sigByte byte, voteAcctByte byte) []byte {
	var buf []byte

	buf = append(buf, 1)
	sig := make([]byte, 64)
	sig[0] = sigByte
	buf = append(buf, sig...)

	buf = append(buf, 1) // num_required_signatures
	buf = append(buf, 0) // num_readonly_signed_accounts
	buf = append(buf, 1) // num_readonly_unsigned_accounts (the vote program)

	buf = append(buf, 2) // num_account_keys

	voteAcct := make([]byte, 32)
	voteAcct[0] = voteAcctByte
	buf = append(buf, voteAcct...)

	voteProgram := make([]byte, 32)
	copy(voteProgram, VoteProgramID[:])
	buf = append(buf, voteProgram...)

	buf = append(buf, 1) // num_instructions
	buf = append(buf, 1) // program_id_index -> vote program
	buf = append(buf, 1) // num_account_indices
	buf = append(buf, 0) // account_indices[0] -> vote account
	buf = appendU16LenPrefixed(buf, nil)

	return buf
}

// pk returns a Pubkey whose first byte is b, for use as a SmallSet/account
// identity in tests that build CostResult-level fixtures directly.
func pk(b byte) Pubkey {
	var p Pubkey
	p[0] = b
	return p
}

// encodeTxnN is encodeTxn's counterpart for scenarios needing more than 256
// distinct identities: every id is a uint32 written big-endian into the
// leading bytes of its signature/pubkey field.
func encodeTxnN(sigIdx, payerIdx uint32, writeIdxs, readIdxs []uint32, cuUnits uint32, microLamportsPerCU uint64) []byte {
	var buf []byte

	buf = append(buf, 1)
	sig := make([]byte, 64)
	binary.BigEndian.PutUint32(sig[0:4], sigIdx)
	buf = append(buf, sig...)

	buf = append(buf, 1)
	buf = append(buf, 0)
	buf = append(buf, byte(len(readIdxs)+1))

	numKeys := 1 + len(writeIdxs) + len(readIdxs) + 1
	buf = append(buf, byte(numKeys))

	payer := make([]byte, 32)
	binary.BigEndian.PutUint32(payer[0:4], payerIdx)
	buf = append(buf, payer...)

	for _, w := range writeIdxs {
		k := make([]byte, 32)
		binary.BigEndian.PutUint32(k[0:4], w)
		buf = append(buf, k...)
	}
	for _, r := range readIdxs {
		k := make([]byte, 32)
		binary.BigEndian.PutUint32(k[0:4], r)
		buf = append(buf, k...)
	}
	cbKey := make([]byte, 32)
	copy(cbKey, ComputeBudgetProgramID[:])
	buf = append(buf, cbKey...)
	cbProgramIdx := byte(numKeys - 1)

	buf = append(buf, 2)

	buf = append(buf, cbProgramIdx)
	buf = append(buf, 0)
	data0 := make([]byte, 5)
	data0[0] = cbTagSetComputeUnitLimit
	binary.BigEndian.PutUint32(data0[1:5], cuUnits)
	buf = appendU16LenPrefixed(buf, data0)

	buf = append(buf, cbProgramIdx)
	buf = append(buf, 0)
	data1 := make([]byte, 9)
	data1[0] = cbTagSetComputeUnitPrice
	binary.BigEndian.PutUint64(data1[1:9], microLamportsPerCU)
	buf = appendU16LenPrefixed(buf, data1)

	return buf
}
