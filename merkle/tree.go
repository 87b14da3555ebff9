package merkle

import (
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// TreeHeight is the fixed height of the incremental Merkle tree.
// Height 32 supports up to 2^32 leaves, and every inclusion proof
// carries exactly 32 siblings regardless of tree occupancy.
const TreeHeight = 32

// HashPair hashes two 32-byte nodes with Keccak256, left then right.
// This is byte-for-byte identical to Solidity's
// keccak256(abi.encodePacked(left, right)), which the on-chain verifier
// uses to recompute roots.
func HashPair(left, right [32]byte) [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(left[:], right[:]))
	return out
}

// zeros holds the precomputed empty-subtree hash for each level:
// zeros[0] is the all-zero leaf, zeros[i] = HashPair(zeros[i-1], zeros[i-1]).
// The table is computed once on first use and never mutated afterwards.
var zeros = sync.OnceValue(func() [TreeHeight][32]byte {
	var z [TreeHeight][32]byte
	for i := 1; i < TreeHeight; i++ {
		z[i] = HashPair(z[i-1], z[i-1])
	}
	return z
})

// ZeroHash returns the hash of an empty subtree rooted at the given level.
func ZeroHash(level int) [32]byte {
	return zeros()[level]
}

// Proof is an inclusion proof for a fixed-height tree. Siblings are
// ordered from the leaf's level upward and there are always exactly
// TreeHeight of them.
type Proof struct {
	LeafIndex uint64
	Siblings  [][32]byte
}

// Tree is an append-only incremental Merkle tree over 32-byte leaves.
//
// filledSubtrees[i] caches the leftmost fully-materialized node at level i,
// which makes Push O(TreeHeight) hashes. Proof generation rebuilds the
// intermediate levels from the stored leaves; the tree keeps no other cache.
//
// A Tree is not safe for concurrent mutation; see Ledger for the
// single-writer ownership model.
type Tree struct {
	leaves         [][32]byte
	filledSubtrees [TreeHeight][32]byte
	nextIndex      uint64
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	t := &Tree{}
	t.filledSubtrees = zeros()
	return t
}

// NewTreeWithLeaves returns a tree populated with the given leaves in order.
func NewTreeWithLeaves(leaves [][32]byte) *Tree {
	t := NewTree()
	for _, leaf := range leaves {
		t.Push(leaf)
	}
	return t
}

// Push appends a leaf and returns the index it was inserted at.
func (t *Tree) Push(leaf [32]byte) uint64 {
	index := t.nextIndex
	t.leaves = append(t.leaves, leaf)

	current := leaf
	idx := index
	for level := 0; level < TreeHeight; level++ {
		if idx%2 == 0 {
			// Left child: record it and pair with the empty subtree.
			t.filledSubtrees[level] = current
			current = HashPair(current, ZeroHash(level))
		} else {
			// Right child: pair with the cached left node.
			current = HashPair(t.filledSubtrees[level], current)
		}
		idx /= 2
	}

	t.nextIndex++
	return index
}

// Root returns the current Merkle root, ZeroHash(TreeHeight-1) for an
// empty tree.
func (t *Tree) Root() [32]byte {
	if len(t.leaves) == 0 {
		return ZeroHash(TreeHeight - 1)
	}

	current := t.leaves[len(t.leaves)-1]
	idx := t.nextIndex - 1
	for level := 0; level < TreeHeight; level++ {
		if idx%2 == 0 {
			current = HashPair(current, ZeroHash(level))
		} else {
			current = HashPair(t.filledSubtrees[level], current)
		}
		idx /= 2
	}
	return current
}

// LeafCount returns the number of leaves pushed so far.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Leaf returns the leaf at index, or false when index is out of range.
func (t *Tree) Leaf(index int) ([32]byte, bool) {
	if index < 0 || index >= len(t.leaves) {
		return [32]byte{}, false
	}
	return t.leaves[index], true
}

// Prove generates an inclusion proof for the leaf at leafIndex, or false
// when no such leaf exists. The proof always has exactly TreeHeight
// siblings: every level is rebuilt with zero-hash padding for the missing
// right node, and levels above the materialized ones contribute the
// corresponding empty-subtree hashes. Cost is O(leafCount) hashes.
func (t *Tree) Prove(leafIndex int) (Proof, bool) {
	if leafIndex < 0 || leafIndex >= len(t.leaves) {
		return Proof{}, false
	}

	siblings := make([][32]byte, 0, TreeHeight)
	level := make([][32]byte, len(t.leaves))
	copy(level, t.leaves)
	idx := leafIndex

	for lv := 0; lv < TreeHeight; lv++ {
		sibIdx := idx ^ 1
		if sibIdx < len(level) {
			siblings = append(siblings, level[sibIdx])
		} else {
			siblings = append(siblings, ZeroHash(lv))
		}

		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := ZeroHash(lv)
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, HashPair(left, right))
		}
		level = next
		idx /= 2
	}

	return Proof{LeafIndex: uint64(leafIndex), Siblings: siblings}, true
}

// VerifyProof re-derives the root from leaf and proof and compares it to
// expectedRoot. It is a pure function of its inputs and reads no tree state,
// which is what lets the constrained proving context re-run it.
//
// A proof with anything other than exactly TreeHeight siblings is rejected
// outright: the fixed shape is part of the verification contract.
func VerifyProof(leaf [32]byte, proof Proof, expectedRoot [32]byte) bool {
	if len(proof.Siblings) != TreeHeight {
		return false
	}

	current := leaf
	idx := proof.LeafIndex
	for _, sibling := range proof.Siblings {
		if idx%2 == 0 {
			current = HashPair(current, sibling)
		} else {
			current = HashPair(sibling, current)
		}
		idx /= 2
	}
	return current == expectedRoot
}
