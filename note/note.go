package note

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// Domain separators. Commitments and nullifiers use distinct tags so the
// two hash families can never collide by construction. These tags are part
// of the cross-implementation compatibility contract: changing them (or the
// field order, or the amount endianness) breaks every deployed verifier.
var (
	commitmentDomain = []byte("NOTE_COMMITMENT_v1")
	nullifierDomain  = []byte("NULLIFIER_v1")
)

// Note is a value-holding record: who can spend it, how much it is worth,
// and a random blinding value that keeps equal-amount notes from committing
// to equal hashes. Notes are created off-ledger, committed into the Merkle
// accumulator, spent exactly once, and never mutated.
type Note struct {
	Amount   uint64
	Owner    [32]byte
	Blinding [32]byte
}

// New returns a note with the given fields.
func New(amount uint64, owner, blinding [32]byte) Note {
	return Note{Amount: amount, Owner: owner, Blinding: blinding}
}

// Commitment is shorthand for Commit(n).
func (n Note) Commitment() [32]byte {
	return Commit(n)
}

// Nullifier is the one-way spent-note tag published when a note is consumed.
// It is unlinkable to the note's commitment.
type Nullifier = [32]byte

// Commit computes the hiding, binding commitment hash of a note:
//
//	BLAKE3(NOTE_COMMITMENT_v1 || amount_le || owner || blinding)
//
// The 32-byte result becomes a leaf in the commitment tree.
func Commit(n Note) [32]byte {
	h := blake3.New(32, nil)
	h.Write(commitmentDomain)
	var amount [8]byte
	binary.LittleEndian.PutUint64(amount[:], n.Amount)
	h.Write(amount[:])
	h.Write(n.Owner[:])
	h.Write(n.Blinding[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeNullifier derives a nullifier from a spend-authorization signature:
//
//	BLAKE3(NULLIFIER_v1 || signature)
//
// The signature is produced by the note owner over the note's commitment
// with a deterministic scheme, so every spend attempt of the same note
// yields the same nullifier; that stability is what the ledger's registry
// checks. Verifying the signature itself is the caller's concern.
func ComputeNullifier(signature []byte) Nullifier {
	h := blake3.New(32, nil)
	h.Write(nullifierDomain)
	h.Write(signature)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
