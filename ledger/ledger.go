package ledger

import (
	"github.com/shieldpool/utxo/merkle"
	"github.com/shieldpool/utxo/note"
)

// Ledger is the authoritative state container: one commitment tree plus
// the registry of used nullifiers. Leaves are never removed and the
// nullifier set only grows.
//
// A Ledger assumes a single writer; independent instances share nothing
// and may be driven from separate goroutines.
type Ledger struct {
	tree       *merkle.Tree
	nullifiers map[note.Nullifier]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		tree:       merkle.NewTree(),
		nullifiers: make(map[note.Nullifier]struct{}),
	}
}

// AddNote commits a note and appends the commitment to the tree,
// returning the assigned leaf index.
func (l *Ledger) AddNote(n note.Note) uint64 {
	return l.tree.Push(note.Commit(n))
}

// AddCommitment appends an already-computed commitment.
func (l *Ledger) AddCommitment(c [32]byte) uint64 {
	return l.tree.Push(c)
}

// Root returns the current commitment-tree root.
func (l *Ledger) Root() [32]byte {
	return l.tree.Root()
}

// LeafCount returns the number of commitments in the tree.
func (l *Ledger) LeafCount() int {
	return l.tree.LeafCount()
}

// Leaf returns the commitment at index, or false when index is out of
// range.
func (l *Ledger) Leaf(index int) ([32]byte, bool) {
	return l.tree.Leaf(index)
}

// Prove generates an inclusion proof for the commitment at index.
func (l *Ledger) Prove(index int) (merkle.Proof, bool) {
	return l.tree.Prove(index)
}

// IsSpent reports whether a nullifier has been recorded.
func (l *Ledger) IsSpent(nf note.Nullifier) bool {
	_, ok := l.nullifiers[nf]
	return ok
}

// Spend records a nullifier as used. It fails with ErrDoubleSpend when
// the nullifier is already present.
func (l *Ledger) Spend(nf note.Nullifier) error {
	if l.IsSpent(nf) {
		return ErrDoubleSpend
	}
	l.nullifiers[nf] = struct{}{}
	return nil
}
