package pack

import "errors"

// Scheduler errors, returned (never panicked) from insert.
var (
	// ErrParse indicates the payload could not be decoded into a TxnView.
	ErrParse = errors.New("pack: payload is not a valid transaction")

	// ErrOversizedTxn indicates the transaction's modeled cost exceeds
	// MAX_COST_PER_TXN, or the transaction is structurally invalid (zero
	// signatures).
	ErrOversizedTxn = errors.New("pack: transaction exceeds per-txn cost limit or is structurally invalid")

	// ErrDuplicate indicates a transaction with the same signature is
	// already resident in the pool.
	ErrDuplicate = errors.New("pack: transaction already resident")

	// ErrPriorityTooLow indicates the pool is full and the incoming
	// transaction's priority score does not strictly exceed the current
	// heap minimum.
	ErrPriorityTooLow = errors.New("pack: pool full and priority too low to evict")
)
