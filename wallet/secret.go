package wallet

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/shieldpool/utxo/note"
)

// SecretNote is the plaintext a sender encrypts for a note's recipient:
// everything the recipient needs to reconstruct and later spend the note,
// none of which appears on the public ledger. The owner key is omitted
// because the recipient already knows their own.
type SecretNote struct {
	// Version indicates the format version of the plaintext.
	Version byte

	// Balance is the note's amount. Carried as a 256-bit integer on the
	// wire; the ledger's notes hold 64-bit amounts, so conversion is
	// overflow-checked.
	Balance *uint256.Int

	// Blinding is the 32-byte random value behind the note commitment.
	Blinding []byte

	// Memo is an arbitrary message the sender may attach.
	Memo []byte
}

// NewSecretNote builds the plaintext counterpart of a ledger note.
func NewSecretNote(n note.Note, memo []byte) *SecretNote {
	return &SecretNote{
		Version:  1,
		Balance:  uint256.NewInt(n.Amount),
		Blinding: append([]byte(nil), n.Blinding[:]...),
		Memo:     memo,
	}
}

// ToNote reconstructs the spendable note for the given owner.
func (sn *SecretNote) ToNote(owner [32]byte) (note.Note, error) {
	if sn.Balance == nil || !sn.Balance.IsUint64() {
		return note.Note{}, fmt.Errorf("secret note balance does not fit in uint64")
	}
	if len(sn.Blinding) != 32 {
		return note.Note{}, fmt.Errorf("secret note blinding must be 32 bytes, got %d", len(sn.Blinding))
	}
	var blinding [32]byte
	copy(blinding[:], sn.Blinding)
	return note.New(sn.Balance.Uint64(), owner, blinding), nil
}

// Bytes returns the RLP-encoded representation of the SecretNote.
// It panics if the encoding fails.
func (sn *SecretNote) Bytes() []byte {
	b, err := rlp.EncodeToBytes(sn)
	if err != nil {
		// A Bytes() method does not return an error; treat this as a
		// critical internal error.
		panic(fmt.Sprintf("failed to RLP encode SecretNote: %v", err))
	}
	return b
}

// DecodeSecretNote parses an RLP-encoded SecretNote.
func DecodeSecretNote(data []byte) (*SecretNote, error) {
	var sn SecretNote
	if err := rlp.DecodeBytes(data, &sn); err != nil {
		return nil, fmt.Errorf("decode secret note: %w", err)
	}
	return &sn, nil
}

// EncodeRLP implements the rlp.Encoder interface.
func (sn *SecretNote) EncodeRLP(w io.Writer) error {
	// Convert Balance to *big.Int for encoding; rlp has built-in support
	// for it.
	return rlp.Encode(w, []interface{}{
		sn.Version,
		sn.Balance.ToBig(),
		sn.Blinding,
		sn.Memo,
	})
}

// DecodeRLP implements the rlp.Decoder interface.
func (sn *SecretNote) DecodeRLP(s *rlp.Stream) error {
	var temp struct {
		Version  byte
		Balance  *big.Int
		Blinding []byte
		Memo     []byte
	}
	if err := s.Decode(&temp); err != nil {
		return err
	}

	balance, overflow := uint256.FromBig(temp.Balance)
	if overflow {
		return fmt.Errorf("balance value overflows uint256")
	}

	sn.Version = temp.Version
	sn.Balance = balance
	sn.Blinding = temp.Blinding
	sn.Memo = temp.Memo
	return nil
}
