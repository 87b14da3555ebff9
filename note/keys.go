package note

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a spend-authorization signature:
// secp256k1 ECDSA in Ethereum's [R || S || V] layout.
const SignatureLength = 65

// GenerateSpendKey returns a fresh secp256k1 spending key.
func GenerateSpendKey() (*ecdsa.PrivateKey, error) {
	return ethcrypto.GenerateKey()
}

// OwnerKey derives a note's 32-byte owner identifier from a public key:
// the X coordinate of the compressed encoding.
func OwnerKey(pub *ecdsa.PublicKey) [32]byte {
	var owner [32]byte
	copy(owner[:], ethcrypto.CompressPubkey(pub)[1:])
	return owner
}

// authDigest is the message actually signed when authorizing a spend:
// the Ethereum signed-message hash of Keccak256(commitment). The prefix
// matches what wallet tooling on the other side of the protocol produces.
func authDigest(commitment [32]byte) []byte {
	return accounts.TextHash(ethcrypto.Keccak256(commitment[:]))
}

// SignCommitment authorizes spending the note with the given commitment.
// ECDSA signing here is deterministic (RFC 6979), which keeps the derived
// nullifier stable across repeated signing of the same commitment.
func SignCommitment(key *ecdsa.PrivateKey, commitment [32]byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(authDigest(commitment), key)
	if err != nil {
		return nil, fmt.Errorf("sign commitment: %w", err)
	}
	return sig, nil
}

// VerifyAuthorization recovers the signer of a spend authorization and
// checks it against the note's owner. This runs on the untrusted host;
// the trusted execution re-checks only the nullifier hash binding.
func VerifyAuthorization(signature []byte, commitment [32]byte, owner [32]byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(authDigest(commitment), sig)
	if err != nil {
		return false
	}
	return OwnerKey(pub) == owner
}
