package ledger

import (
	"fmt"
	"math/bits"

	"github.com/shieldpool/utxo/merkle"
	"github.com/shieldpool/utxo/note"
)

// Witness is a caller-constructed, not-yet-verified transaction proposal.
// It lives only for the duration of one validation and is never persisted.
//
// The Precomputed* fields are caches filled by the untrusted host so the
// constrained execution can re-check cheap hashes instead of performing
// signature recovery; see Simulate for how each trust mode treats them.
type Witness struct {
	InputNotes          []note.Note
	InputIndices        []uint64
	InputProofs         []merkle.Proof
	NullifierSignatures [][]byte
	TxSignatures        [][]byte
	OutputNotes         []note.Note

	PrecomputedNullifiers        [][32]byte
	PrecomputedInputCommitments  [][32]byte
	PrecomputedOutputCommitments [][32]byte
}

// NewWitness assembles a witness without precomputed values. Call
// WithPrecomputedValues before handing it to Simulate.
func NewWitness(
	inputNotes []note.Note,
	inputIndices []uint64,
	inputProofs []merkle.Proof,
	nullifierSignatures [][]byte,
	txSignatures [][]byte,
	outputNotes []note.Note,
) *Witness {
	return &Witness{
		InputNotes:          inputNotes,
		InputIndices:        inputIndices,
		InputProofs:         inputProofs,
		NullifierSignatures: nullifierSignatures,
		TxSignatures:        txSignatures,
		OutputNotes:         outputNotes,
	}
}

// ValidateStructure checks the shape of the witness: matching array
// lengths, at least one input or output, fixed-shape proofs, and index
// consistency. It reports the first violated invariant.
func (w *Witness) ValidateStructure() error {
	n := len(w.InputNotes)
	if len(w.InputIndices) != n {
		return fmt.Errorf("%w: %d input notes, %d indices", ErrLengthMismatch, n, len(w.InputIndices))
	}
	if len(w.InputProofs) != n {
		return fmt.Errorf("%w: %d input notes, %d merkle proofs", ErrLengthMismatch, n, len(w.InputProofs))
	}
	if len(w.NullifierSignatures) != n {
		return fmt.Errorf("%w: %d input notes, %d nullifier signatures", ErrLengthMismatch, n, len(w.NullifierSignatures))
	}
	if len(w.TxSignatures) != n {
		return fmt.Errorf("%w: %d input notes, %d tx signatures", ErrLengthMismatch, n, len(w.TxSignatures))
	}
	if n == 0 && len(w.OutputNotes) == 0 {
		return ErrEmptyTransaction
	}

	for i, proof := range w.InputProofs {
		if len(proof.Siblings) != merkle.TreeHeight {
			return fmt.Errorf("%w: proof %d has %d siblings, want %d",
				ErrMalformedProof, i, len(proof.Siblings), merkle.TreeHeight)
		}
		if proof.LeafIndex != w.InputIndices[i] {
			return fmt.Errorf("%w: proof %d is for leaf %d, witness says %d",
				ErrMalformedProof, i, proof.LeafIndex, w.InputIndices[i])
		}
	}

	if w.HasPrecomputedValues() {
		return nil
	}
	// Partially filled caches are a structural defect, not a missing
	// optimization: either all precomputed fields are present or none.
	if len(w.PrecomputedNullifiers) != 0 ||
		len(w.PrecomputedInputCommitments) != 0 ||
		len(w.PrecomputedOutputCommitments) != 0 {
		return fmt.Errorf("%w: partially populated precomputed values", ErrLengthMismatch)
	}
	return nil
}

// ValidateValueConservation checks sum(inputs) >= sum(outputs). 64-bit
// sums are carry-checked: overflow rejects the transaction rather than
// wrapping. The difference, if any, is an implicit fee.
func (w *Witness) ValidateValueConservation() error {
	totalIn, err := sumAmounts(w.InputNotes)
	if err != nil {
		return err
	}
	totalOut, err := sumAmounts(w.OutputNotes)
	if err != nil {
		return err
	}
	if totalOut > totalIn {
		return fmt.Errorf("%w: inputs %d, outputs %d", ErrValueConservation, totalIn, totalOut)
	}
	return nil
}

func sumAmounts(notes []note.Note) (uint64, error) {
	var total uint64
	for _, n := range notes {
		sum, carry := bits.Add64(total, n.Amount, 0)
		if carry != 0 {
			return 0, ErrAmountOverflow
		}
		total = sum
	}
	return total, nil
}

// HasPrecomputedValues reports whether the host filled every precomputed
// cache: one nullifier and one commitment per input, one commitment per
// output.
func (w *Witness) HasPrecomputedValues() bool {
	return len(w.PrecomputedNullifiers) == len(w.InputNotes) &&
		len(w.PrecomputedInputCommitments) == len(w.InputNotes) &&
		len(w.PrecomputedOutputCommitments) == len(w.OutputNotes)
}

// WithPrecomputedValues fills the precomputed caches from the witness's
// own notes and signatures. This is the host-side half of the optimized
// path; the trusted execution re-checks these values by recomputation.
func (w *Witness) WithPrecomputedValues() *Witness {
	w.PrecomputedNullifiers = make([][32]byte, len(w.NullifierSignatures))
	for i, sig := range w.NullifierSignatures {
		w.PrecomputedNullifiers[i] = note.ComputeNullifier(sig)
	}
	w.PrecomputedInputCommitments = make([][32]byte, len(w.InputNotes))
	for i, n := range w.InputNotes {
		w.PrecomputedInputCommitments[i] = note.Commit(n)
	}
	w.PrecomputedOutputCommitments = make([][32]byte, len(w.OutputNotes))
	for i, n := range w.OutputNotes {
		w.PrecomputedOutputCommitments[i] = note.Commit(n)
	}
	return w
}
