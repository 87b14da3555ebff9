package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealNote encrypts a note plaintext with ChaCha20-Poly1305.
//
//   - key: 32-byte symmetric key derived from the ECDH shared secret.
//   - nonce: 12-byte nonce, unique per encryption under the same key.
//   - additionalData: authenticated but not encrypted; the ephemeral
//     public key goes here so the envelope cannot be re-keyed.
//
// The returned ciphertext includes the authentication tag.
func sealNote(key, nonce, plaintext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("invalid nonce size: must be %d bytes", chacha20poly1305.NonceSize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}
	return aead.Seal(nil, nonce, plaintext, additionalData), nil
}

// openNote decrypts a note ciphertext with ChaCha20-Poly1305. It returns
// the plaintext only when both decryption and authentication succeed; a
// wrong key, wrong nonce, or tampered ciphertext/additionalData yields an
// error and no partial output.
func openNote(key, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("invalid nonce size: must be %d bytes", chacha20poly1305.NonceSize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt note: %w", err)
	}
	return plaintext, nil
}
