package crypto

import (
	crand "crypto/rand"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// KeyType identifies the curve an EncryptedNote's ephemeral key lives on.
type KeyType byte

// KeyTypeBN254 is the BN254 twisted Edwards curve.
const KeyTypeBN254 KeyType = 0x01

const (
	keySize   = 32
	nonceSize = 12
)

// ErrDecrypt is returned whenever decryption fails, regardless of cause:
// wrong recipient key, tampered ciphertext or nonce, or a malformed
// envelope. Callers never see partial plaintext.
var ErrDecrypt = errors.New("note decryption failed")

// EncryptedNote is the public-channel envelope delivering a note's
// plaintext fields to its owner. Only the recipient's secret key can
// open it; on the ledger it reveals nothing about the note.
type EncryptedNote struct {
	KeyType         KeyType
	EphemeralPubKey [32]byte
	Nonce           [12]byte
	Ciphertext      []byte
}

// EncryptNote encrypts plaintext for the holder of recipient's secret key.
//
// A fresh ephemeral keypair is generated per call; the ECDH shared secret
// with the recipient's static key is expanded into a symmetric key and
// nonce, and the plaintext is sealed with ChaCha20-Poly1305 using the
// ephemeral public key as associated data.
func EncryptNote(plaintext []byte, recipient *eddsa.PublicKey) (*EncryptedNote, error) {
	eph, err := eddsa.GenerateKey(crand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	shared, err := ComputeSharedSecret(eph, recipient)
	if err != nil {
		return nil, fmt.Errorf("compute shared secret: %w", err)
	}
	stream, err := ExpandKDF(shared, keySize+nonceSize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	key, nonce := stream[:keySize], stream[keySize:]

	ephPub := eph.PublicKey.Bytes()

	ciphertext, err := sealNote(key, nonce, plaintext, ephPub)
	if err != nil {
		return nil, err
	}

	enc := &EncryptedNote{KeyType: KeyTypeBN254, Ciphertext: ciphertext}
	copy(enc.EphemeralPubKey[:], ephPub)
	copy(enc.Nonce[:], nonce)
	return enc, nil
}

// DecryptNote opens an EncryptedNote with the recipient's secret key.
// It repeats the key agreement against the embedded ephemeral public key
// and authenticated-decrypts. Any mismatch fails closed with ErrDecrypt.
func DecryptNote(enc *EncryptedNote, secret *eddsa.PrivateKey) ([]byte, error) {
	if enc == nil || enc.KeyType != KeyTypeBN254 {
		return nil, ErrDecrypt
	}

	var ephPub eddsa.PublicKey
	if _, err := ephPub.SetBytes(enc.EphemeralPubKey[:]); err != nil {
		return nil, ErrDecrypt
	}

	shared, err := ComputeSharedSecret(secret, &ephPub)
	if err != nil {
		return nil, ErrDecrypt
	}
	stream, err := ExpandKDF(shared, keySize+nonceSize)
	if err != nil {
		return nil, ErrDecrypt
	}

	plaintext, err := openNote(stream[:keySize], enc.Nonce[:], enc.Ciphertext, enc.EphemeralPubKey[:])
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
