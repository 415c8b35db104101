package constants

import "math"

const (
	// BlockVersion represents the current version of blocks mined and the maximum block version
	// this node is able to validate
	BlockVersion uint16 = 1

	// MaxTransactionVersion is the current latest supported transaction version.
	MaxTransactionVersion uint16 = 0

	// MaxScriptPublicKeyVersion is the current latest supported public key script version.
	MaxScriptPublicKeyVersion uint16 = 0

	// AtomPerCobalt is the number of atoms in one cobalt (1 CBT).
	AtomPerCobalt = 100_000_000

	// MaxAtom is the maximum transaction amount allowed in atoms.
	MaxAtom = uint64(21_000_000_000 * AtomPerCobalt)

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint64 = math.MaxUint64

	// SequenceLockTimeDisabled is a flag that if set on a transaction
	// input's sequence number, the sequence number will not be interpreted
	// as a relative locktime.
	SequenceLockTimeDisabled uint64 = 1 << 63

	// SequenceLockTimeMask is a mask that extracts the relative locktime
	// when masked against the transaction input sequence number.
	SequenceLockTimeMask uint64 = 0x00000000ffffffff

	// LockTimeThreshold is the number below which a lock time is
	// interpreted to be a DAA score.
	LockTimeThreshold = 5e11 // Tue Nov 5 00:53:20 1985 UTC

	// UnacceptedDAAScore is used for UTXOEntries that were created by
	// transactions in the mempool, or otherwise not-yet-accepted transactions.
	UnacceptedDAAScore = math.MaxUint64
)
