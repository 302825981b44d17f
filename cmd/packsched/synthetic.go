package main

import (
	"encoding/binary"

	"github.com/firedancer-go/packsched/pack"
)

// Wire-format tag bytes for compute-budget instructions. These mirror the
// private constants in pack/computebudget.go: this command plays the role
// of an external transaction producer (spec §1), so it must independently
// know the wire contract pack.WireParser expects, the same as any other
// client of the scheduler would.
const (
	cbTagSetComputeUnitLimit byte = 0
	cbTagSetComputeUnitPrice byte = 1
)

// encodeTxn builds a pack.WireParser-compatible payload for a transaction
// with one signer/payer, a set of writable accounts, a set of read-only
// accounts, and a trailing compute-budget instruction pair requesting
// cuUnits at microLamportsPerCU. sigID is written across the leading bytes
// of the 64-byte signature field so tens of thousands of synthetic
// transactions stay distinct; account identities are single bytes, kept
// within a small universe so the generated workload actually exercises
// conflict detection.
func encodeTxn(sigID uint32, payerByte byte, writeAccts, readAccts []byte, cuUnits uint32, microLamportsPerCU uint64) []byte {
	var buf []byte

	buf = append(buf, 1)
	sig := make([]byte, 64)
	binary.BigEndian.PutUint32(sig[0:4], sigID)
	buf = append(buf, sig...)

	buf = append(buf, 1)                      // num_required_signatures
	buf = append(buf, 0)                      // num_readonly_signed_accounts
	buf = append(buf, byte(len(readAccts)+1)) // num_readonly_unsigned_accounts (+compute budget program)

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
	copy(cbKey, pack.ComputeBudgetProgramID[:])
	buf = append(buf, cbKey...)
	cbProgramIdx := byte(numKeys - 1)

	buf = append(buf, 2) // num_instructions

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

// encodeVoteTxn builds a single-instruction payload structurally
// indistinguishable from a real vote: one signature, one writable account,
// one instruction targeting pack.VoteProgramID.
func encodeVoteTxn(sigID uint32, voteAcctByte byte) []byte {
	var buf []byte

	buf = append(buf, 1)
	sig := make([]byte, 64)
	binary.BigEndian.PutUint32(sig[0:4], sigID)
	buf = append(buf, sig...)

	buf = append(buf, 1) // num_required_signatures
	buf = append(buf, 0) // num_readonly_signed_accounts
	buf = append(buf, 1) // num_readonly_unsigned_accounts (vote program)

	buf = append(buf, 2) // num_account_keys

	voteAcct := make([]byte, 32)
	voteAcct[0] = voteAcctByte
	buf = append(buf, voteAcct...)

	voteProgram := make([]byte, 32)
	copy(voteProgram, pack.VoteProgramID[:])
	buf = append(buf, voteProgram...)

	buf = append(buf, 1) // num_instructions
	buf = append(buf, 1) // program_id_index -> vote program
	buf = append(buf, 1) // num_account_indices
	buf = append(buf, 0) // account_indices[0] -> vote account
	buf = appendU16LenPrefixed(buf, nil)

	return buf
}

func appendU16LenPrefixed(buf []byte, data []byte) []byte {
	lenBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBytes, uint16(len(data)))
	buf = append(buf, lenBytes...)
	buf = append(buf, data...)
	return buf
}
