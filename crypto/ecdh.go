package crypto

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"golang.org/x/crypto/blake2s"
)

// NewEncryptionKey generates a fresh keypair on the BN254 twisted Edwards
// curve for receiving encrypted notes.
func NewEncryptionKey() (*eddsa.PrivateKey, error) {
	return eddsa.GenerateKey(crand.Reader)
}

// ComputeSharedSecret computes the ECDH shared secret
// privateKey * otherPublicKey and hashes its X coordinate with BLAKE2s,
// yielding 32 bytes of key material.
func ComputeSharedSecret(privateKey *eddsa.PrivateKey, otherPublicKey *eddsa.PublicKey) ([]byte, error) {
	if !otherPublicKey.A.IsOnCurve() {
		return nil, errors.New("other public key is not on curve")
	}

	var sharedPoint tedwards.PointAffine
	scalarBytes := privateKey.Bytes()
	scalar := new(big.Int).SetBytes(scalarBytes[32:64])
	sharedPoint.ScalarMultiplication(&otherPublicKey.A, scalar)

	if !sharedPoint.IsOnCurve() {
		return nil, errors.New("computed shared secret is not on curve")
	}

	hasher, err := blake2s.New256(nil)
	if err != nil {
		return nil, err
	}
	ax := sharedPoint.X.Bytes()
	hasher.Write(ax[:])
	return hasher.Sum(nil), nil
}

// ExpandKDF derives a key stream of the requested length from a shared
// secret using keyed BLAKE2s, following the PRF^expand construction of the
// Zcash Sapling spec (the same shape as HKDF-Expand, RFC 5869).
func ExpandKDF(sharedSecret []byte, outputLen int) ([]byte, error) {
	if len(sharedSecret) != 32 {
		return nil, fmt.Errorf("sharedSecret must be 32 bytes")
	}

	personalization := []byte("Zcash_ExpandSeed")

	var keyStream []byte
	var counter byte = 1
	for len(keyStream) < outputLen {
		h, err := blake2s.New256(personalization)
		if err != nil {
			return nil, fmt.Errorf("failed to create blake2s hash: %w", err)
		}
		h.Write(sharedSecret)
		h.Write([]byte{counter})
		keyStream = append(keyStream, h.Sum(nil)...)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}

	return keyStream[:outputLen], nil
}
