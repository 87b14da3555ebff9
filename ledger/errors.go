package ledger

import "errors"

// Every failure class below is fatal for the transaction that raised it:
// the simulator applies no partial effects, and nothing is retried.
var (
	// ErrEmptyTransaction: the witness has neither inputs nor outputs.
	ErrEmptyTransaction = errors.New("transaction has no inputs and no outputs")

	// ErrLengthMismatch: input notes, indices, proofs, and signatures
	// must all agree in count.
	ErrLengthMismatch = errors.New("witness array lengths do not match")

	// ErrMalformedProof: an inclusion proof does not have the fixed shape
	// the verification contract requires.
	ErrMalformedProof = errors.New("merkle proof has wrong shape")

	// ErrValueConservation: output amounts exceed input amounts.
	ErrValueConservation = errors.New("outputs exceed inputs")

	// ErrAmountOverflow: summing 64-bit amounts overflowed. Rejected
	// rather than wrapped.
	ErrAmountOverflow = errors.New("amount sum overflows uint64")

	// ErrCommitmentMismatch: a host-precomputed value disagrees with the
	// independent recomputation. Treated as a security violation.
	ErrCommitmentMismatch = errors.New("precomputed value does not match recomputation")

	// ErrMerkleInclusion: an input's commitment is not provably present in
	// the tree at the asserted root. Absence of this check would allow
	// spending fabricated notes.
	ErrMerkleInclusion = errors.New("merkle inclusion proof failed")

	// ErrDoubleSpend: a nullifier was already recorded, either in the
	// ledger registry or earlier in the same transaction.
	ErrDoubleSpend = errors.New("nullifier already used")

	// ErrStandardPathDisabled: the witness carries no precomputed values.
	// The standard path would need full in-circuit signature verification,
	// which this prototype does not enforce, so it is rejected at entry.
	ErrStandardPathDisabled = errors.New("standard path disabled: witness must provide precomputed values")
)
