package ledger

import (
	"fmt"

	"github.com/shieldpool/utxo/merkle"
	"github.com/shieldpool/utxo/note"
)

// TrustMode selects how Simulate treats the witness's precomputed values.
type TrustMode int

const (
	// ModeRecheck recomputes every commitment and nullifier and compares
	// it against the precomputed cache. This is the mode the constrained
	// proving environment runs in: the untrusted host did the expensive
	// work, the trusted execution re-checks it by hash comparison.
	ModeRecheck TrustMode = iota

	// ModeTrusted accepts the precomputed values unchecked. Only the host
	// that computed the values itself may use it.
	ModeTrusted
)

// PublicInputs is the caller-asserted pre-state the transaction claims to
// spend against. The external verifier checks it for continuity.
type PublicInputs struct {
	OldRoot [32]byte
}

// PublicOutputs is the only state that crosses the trust boundary into the
// proof's public record: the asserted pre-state root passed through
// unchanged, one nullifier per input in input order, and one commitment
// per output in output order.
type PublicOutputs struct {
	OldRoot           [32]byte
	Nullifiers        [][32]byte
	OutputCommitments [][32]byte
}

// Simulate validates a witness against oldRoot and, if every check passes,
// executes it on the ledger: output commitments are appended to the tree
// and input nullifiers recorded as spent. It is the state-transition
// function shared by the host precomputation and the in-proof re-check.
//
// Checks run in a fixed order and the first failure aborts the whole
// transaction with no effects applied:
//
//  1. structure (array lengths, non-empty, proof shape)
//  2. value conservation (no inflation, overflow-checked)
//  3. precomputed-value consistency (ModeRecheck only)
//  4. Merkle inclusion of every input against oldRoot
//  5. nullifier uniqueness, in the registry and within the transaction
//
// A transaction spending all of its inputs into zero outputs leaves the
// root unchanged but still consumes nullifiers; it is valid and not a
// no-op.
func Simulate(l *Ledger, w *Witness, oldRoot [32]byte, mode TrustMode) (*PublicOutputs, error) {
	if err := w.ValidateStructure(); err != nil {
		return nil, err
	}
	if err := w.ValidateValueConservation(); err != nil {
		return nil, err
	}
	if !w.HasPrecomputedValues() {
		return nil, ErrStandardPathDisabled
	}

	inputCommitments, err := computeInputCommitments(w, mode)
	if err != nil {
		return nil, err
	}
	outputCommitments, err := computeOutputCommitments(w, mode)
	if err != nil {
		return nil, err
	}
	nullifiers, err := computeNullifiers(w, mode)
	if err != nil {
		return nil, err
	}

	// The inclusion proofs are the sole control preventing fabricated
	// notes from entering circulation; any failure aborts the transaction.
	for i, commitment := range inputCommitments {
		if !merkle.VerifyProof(commitment, w.InputProofs[i], oldRoot) {
			return nil, fmt.Errorf("%w: input %d not in tree at asserted root", ErrMerkleInclusion, i)
		}
	}

	seen := make(map[[32]byte]struct{}, len(nullifiers))
	for i, nf := range nullifiers {
		if l.IsSpent(nf) {
			return nil, fmt.Errorf("%w: input %d", ErrDoubleSpend, i)
		}
		if _, dup := seen[nf]; dup {
			return nil, fmt.Errorf("%w: inputs %d and earlier collide within transaction", ErrDoubleSpend, i)
		}
		seen[nf] = struct{}{}
	}

	// All checks passed; apply effects atomically.
	for _, commitment := range outputCommitments {
		l.AddCommitment(commitment)
	}
	for _, nf := range nullifiers {
		l.nullifiers[nf] = struct{}{}
	}

	return &PublicOutputs{
		OldRoot:           oldRoot,
		Nullifiers:        nullifiers,
		OutputCommitments: outputCommitments,
	}, nil
}

func computeInputCommitments(w *Witness, mode TrustMode) ([][32]byte, error) {
	if mode == ModeTrusted {
		return w.PrecomputedInputCommitments, nil
	}
	out := make([][32]byte, len(w.InputNotes))
	for i, n := range w.InputNotes {
		recomputed := note.Commit(n)
		if recomputed != w.PrecomputedInputCommitments[i] {
			return nil, fmt.Errorf("%w: input commitment %d", ErrCommitmentMismatch, i)
		}
		out[i] = recomputed
	}
	return out, nil
}

func computeOutputCommitments(w *Witness, mode TrustMode) ([][32]byte, error) {
	if mode == ModeTrusted {
		return w.PrecomputedOutputCommitments, nil
	}
	out := make([][32]byte, len(w.OutputNotes))
	for i, n := range w.OutputNotes {
		recomputed := note.Commit(n)
		if recomputed != w.PrecomputedOutputCommitments[i] {
			return nil, fmt.Errorf("%w: output commitment %d", ErrCommitmentMismatch, i)
		}
		out[i] = recomputed
	}
	return out, nil
}

func computeNullifiers(w *Witness, mode TrustMode) ([][32]byte, error) {
	if mode == ModeTrusted {
		return w.PrecomputedNullifiers, nil
	}
	out := make([][32]byte, len(w.NullifierSignatures))
	for i, sig := range w.NullifierSignatures {
		recomputed := note.ComputeNullifier(sig)
		if recomputed != w.PrecomputedNullifiers[i] {
			return nil, fmt.Errorf("%w: nullifier %d", ErrCommitmentMismatch, i)
		}
		out[i] = recomputed
	}
	return out, nil
}
