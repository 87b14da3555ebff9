package wallet

import (
	"crypto/ecdsa"
	crand "crypto/rand"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/holiman/uint256"

	"github.com/shieldpool/utxo/crypto"
	"github.com/shieldpool/utxo/ledger"
	"github.com/shieldpool/utxo/merkle"
	"github.com/shieldpool/utxo/note"
)

// OwnedNote is a spendable note together with its leaf index in the
// commitment tree.
type OwnedNote struct {
	Note  note.Note
	Index uint64
}

// Wallet holds the two keys a participant needs — a secp256k1 spend key
// that authorizes nullifiers and a curve keypair for receiving encrypted
// notes — plus the set of notes it can currently spend.
type Wallet struct {
	Address       string
	SpendKey      *ecdsa.PrivateKey
	EncryptionKey *eddsa.PrivateKey

	notes []OwnedNote
}

// NewWallet generates fresh keys.
func NewWallet() (*Wallet, error) {
	spendKey, err := note.GenerateSpendKey()
	if err != nil {
		return nil, fmt.Errorf("generate spend key: %w", err)
	}
	encKey, err := crypto.NewEncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}
	return &Wallet{
		Address:       EncodeAddress(note.OwnerKey(&spendKey.PublicKey)),
		SpendKey:      spendKey,
		EncryptionKey: encKey,
	}, nil
}

// Owner returns the wallet's 32-byte owner identifier.
func (w *Wallet) Owner() [32]byte {
	return note.OwnerKey(&w.SpendKey.PublicKey)
}

// EncryptionPub returns the public half of the wallet's encryption key.
func (w *Wallet) EncryptionPub() *eddsa.PublicKey {
	return &w.EncryptionKey.PublicKey
}

// AddNote records a note this wallet can spend, at its tree index.
func (w *Wallet) AddNote(n note.Note, index uint64) {
	w.notes = append(w.notes, OwnedNote{Note: n, Index: index})
}

// NoteCount returns the number of spendable notes held.
func (w *Wallet) NoteCount() int {
	return len(w.notes)
}

// Balance sums the wallet's note amounts. The sum of many 64-bit amounts
// can exceed 64 bits, so the total is a 256-bit integer.
func (w *Wallet) Balance() *uint256.Int {
	total := uint256.NewInt(0)
	for _, owned := range w.notes {
		total.Add(total, uint256.NewInt(owned.Note.Amount))
	}
	return total
}

// Receive decrypts an incoming secret-note payload, reconstructs the note
// under this wallet's owner key, and records it at the given tree index.
// The reconstructed commitment is checked against the ledger leaf so a
// sender cannot slip in a payload that does not match the public record.
func (w *Wallet) Receive(enc *crypto.EncryptedNote, l *ledger.Ledger, index uint64) (note.Note, error) {
	plaintext, err := crypto.DecryptNote(enc, w.EncryptionKey)
	if err != nil {
		return note.Note{}, err
	}
	sn, err := DecodeSecretNote(plaintext)
	if err != nil {
		return note.Note{}, err
	}
	n, err := sn.ToNote(w.Owner())
	if err != nil {
		return note.Note{}, err
	}

	leaf, ok := l.Leaf(int(index))
	if !ok {
		return note.Note{}, fmt.Errorf("no commitment at index %d", index)
	}
	if note.Commit(n) != leaf {
		return note.Note{}, fmt.Errorf("secret note does not match commitment at index %d", index)
	}

	w.AddNote(n, index)
	return n, nil
}

// Transfer is a ready-to-prove transaction: the signed, precomputed
// witness plus the encrypted payloads that deliver each output note to
// its owner.
type Transfer struct {
	Witness     *ledger.Witness
	OutputNotes []note.Note

	// EncryptedOutputs[i] is the SecretNote of OutputNotes[i], encrypted
	// to that note's owner.
	EncryptedOutputs []*crypto.EncryptedNote
}

// BuildTransfer assembles a spend of amount+fee to the given recipient,
// selecting notes until they cover the total and returning any excess to
// this wallet as a change note. The witness is fully signed and carries
// precomputed values, ready for ledger.Simulate.
//
// The spent notes are removed from the wallet optimistically; if the
// transaction is later rejected the caller re-adds them.
func (w *Wallet) BuildTransfer(
	l *ledger.Ledger,
	recipient [32]byte,
	recipientEncKey *eddsa.PublicKey,
	amount, fee uint64,
) (*Transfer, error) {
	total, err := addChecked(amount, fee)
	if err != nil {
		return nil, err
	}

	selected, sum, err := w.selectNotes(total)
	if err != nil {
		return nil, err
	}

	outputs := []note.Note{note.New(amount, recipient, randBlinding())}
	encTargets := []*eddsa.PublicKey{recipientEncKey}
	if change := sum - total; change > 0 {
		outputs = append(outputs, note.New(change, w.Owner(), randBlinding()))
		encTargets = append(encTargets, w.EncryptionPub())
	}

	inputs := make([]note.Note, len(selected))
	indices := make([]uint64, len(selected))
	proofs := make([]merkle.Proof, len(selected))
	nullifierSigs := make([][]byte, len(selected))
	txSigs := make([][]byte, len(selected))
	for i, owned := range selected {
		inputs[i] = owned.Note
		indices[i] = owned.Index

		proof, ok := l.Prove(int(owned.Index))
		if !ok {
			return nil, fmt.Errorf("no leaf at index %d", owned.Index)
		}
		proofs[i] = proof

		sig, err := note.SignCommitment(w.SpendKey, note.Commit(owned.Note))
		if err != nil {
			return nil, err
		}
		nullifierSigs[i] = sig
		txSigs[i] = sig
	}

	encrypted := make([]*crypto.EncryptedNote, len(outputs))
	for i, out := range outputs {
		enc, err := crypto.EncryptNote(NewSecretNote(out, nil).Bytes(), encTargets[i])
		if err != nil {
			return nil, fmt.Errorf("encrypt output %d: %w", i, err)
		}
		encrypted[i] = enc
	}

	witness := ledger.NewWitness(inputs, indices, proofs, nullifierSigs, txSigs, outputs).
		WithPrecomputedValues()

	w.removeNotes(selected)

	return &Transfer{
		Witness:          witness,
		OutputNotes:      outputs,
		EncryptedOutputs: encrypted,
	}, nil
}

// selectNotes picks notes in holding order until they cover total.
func (w *Wallet) selectNotes(total uint64) ([]OwnedNote, uint64, error) {
	var selected []OwnedNote
	var sum uint64
	for _, owned := range w.notes {
		selected = append(selected, owned)
		var err error
		if sum, err = addChecked(sum, owned.Note.Amount); err != nil {
			return nil, 0, err
		}
		if sum >= total {
			return selected, sum, nil
		}
	}
	return nil, 0, fmt.Errorf("insufficient balance: have %d, need %d", sum, total)
}

func (w *Wallet) removeNotes(spent []OwnedNote) {
	for _, s := range spent {
		for i, owned := range w.notes {
			if owned.Index == s.Index {
				w.notes = append(w.notes[:i], w.notes[i+1:]...)
				break
			}
		}
	}
}

func addChecked(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("amount overflow: %d + %d", a, b)
	}
	return sum, nil
}

func randBlinding() [32]byte {
	var b [32]byte
	_, _ = crand.Read(b[:])
	return b
}
