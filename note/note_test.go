package note

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func bytes32Of(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func TestCommitDeterministic(t *testing.T) {
	n := New(100, bytes32Of(1), bytes32Of(2))
	require.Equal(t, Commit(n), Commit(n))
	require.Equal(t, Commit(n), n.Commitment())
}

func TestCommitHiding(t *testing.T) {
	// Same amount and owner, different blinding: commitments must differ.
	a := New(100, bytes32Of(1), bytes32Of(2))
	b := New(100, bytes32Of(1), bytes32Of(3))
	require.NotEqual(t, Commit(a), Commit(b))
}

func TestCommitBindsEveryField(t *testing.T) {
	base := New(100, bytes32Of(1), bytes32Of(2))
	variants := []Note{
		New(101, bytes32Of(1), bytes32Of(2)),
		New(100, bytes32Of(9), bytes32Of(2)),
		New(100, bytes32Of(1), bytes32Of(9)),
	}
	for i, v := range variants {
		require.NotEqual(t, Commit(base), Commit(v), "variant %d", i)
	}
}

func TestNullifierDeterministic(t *testing.T) {
	sig := make([]byte, SignatureLength)
	for i := range sig {
		sig[i] = 7
	}
	require.Equal(t, ComputeNullifier(sig), ComputeNullifier(sig))

	sig2 := make([]byte, SignatureLength)
	copy(sig2, sig)
	sig2[0] = 8
	require.NotEqual(t, ComputeNullifier(sig), ComputeNullifier(sig2))
}

func TestCommitmentAndNullifierDomainsDisjoint(t *testing.T) {
	n := New(100, bytes32Of(1), bytes32Of(2))
	sig := make([]byte, SignatureLength)
	for i := range sig {
		sig[i] = 7
	}
	require.NotEqual(t, Commit(n), ComputeNullifier(sig))
}

// The vectors below are shared with the independently maintained wallet
// implementation and must match it bit-for-bit. Any change to the domain
// tags, field order, or amount endianness shows up here first.
func TestCommitmentVectors(t *testing.T) {
	owner6 := [32]byte{
		0x02, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x02, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
	}
	blinding6 := [32]byte{
		0xde, 0xad, 0xbe, 0xef, 0xca, 0xfe, 0xba, 0xbe,
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0xde, 0xad, 0xbe, 0xef, 0xca, 0xfe, 0xba, 0xbe,
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
	}

	vectors := []struct {
		amount   uint64
		owner    [32]byte
		blinding [32]byte
		expected string
	}{
		{0, [32]byte{}, [32]byte{}, "1e8af20d48ee936d9103eababd56c1e38bf109efb7989b952c3fd8567a0acea0"},
		{1, [32]byte{}, [32]byte{}, "48d08168fd95f6a20372352f24fff272d5fc196b83d301261e3256c426ca250d"},
		{1_000_000, [32]byte{}, [32]byte{}, "0831eb81730f6f4d00d39710f63ee4369a7f30c5fedd5dc47b3dfeea6c14decd"},
		{1, bytes32Of(0x01), bytes32Of(0x01), "ce6f22ebe3b967fe49cddfe0ee25f09720c315b839ede22b919735073cbce0c9"},
		{^uint64(0), bytes32Of(0xff), bytes32Of(0xff), "9372b028a291b1de5689336039318b863f7d86f176c8dd3f18cac918267edb84"},
		{50_000_000, owner6, blinding6, "6c2bbe93adf453791e71160f24326d9b19918db75db9d0228e15e1a6b08b59a5"},
	}

	for i, v := range vectors {
		c := Commit(New(v.amount, v.owner, v.blinding))
		require.Equal(t, v.expected, hex.EncodeToString(c[:]), "vector %d", i+1)
	}
}

func TestNullifierVectors(t *testing.T) {
	sigOf := func(b byte) []byte {
		sig := make([]byte, SignatureLength)
		for i := range sig {
			sig[i] = b
		}
		return sig
	}
	patterned := func(v byte) []byte {
		sig := make([]byte, SignatureLength)
		for i := 0; i < 32; i++ {
			sig[i] = byte(i * 2)
		}
		for i := 32; i < 64; i++ {
			sig[i] = byte(i * 3)
		}
		sig[64] = v
		return sig
	}

	vectors := []struct {
		sig      []byte
		expected string
	}{
		{sigOf(0x00), "aaa2bc62243a9dcd2abf1711297594b30fd61f7a8fd6a04d8c87fbd7040520ae"},
		{sigOf(0x07), "db54b7046a9a8bf09b94c5bf269f81bb0a11dba770b7e20ff48e5918cf98c950"},
		{sigOf(0xff), "4a9e054aca596985fd24974695a7fca4fa971c2bac49dd6beb5d10795bc7a988"},
		{patterned(27), "be8e3d764b861480b9aa78501f0b70ce2e8776fe85f601eca4992de8be990e8d"},
		{patterned(28), "1730ab08c018defec6017e624816c3f99bd86566f98bf30c6cff30876ef1bf93"},
	}

	for i, v := range vectors {
		nf := ComputeNullifier(v.sig)
		require.Equal(t, v.expected, hex.EncodeToString(nf[:]), "vector %d", i+1)
	}
}

func TestSignAndVerifyAuthorization(t *testing.T) {
	key, err := GenerateSpendKey()
	require.NoError(t, err)
	owner := OwnerKey(&key.PublicKey)

	n := New(100, owner, bytes32Of(5))
	commitment := Commit(n)

	sig, err := SignCommitment(key, commitment)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	require.True(t, VerifyAuthorization(sig, commitment, owner))

	// Deterministic signing keeps the nullifier stable.
	sig2, err := SignCommitment(key, commitment)
	require.NoError(t, err)
	require.Equal(t, ComputeNullifier(sig), ComputeNullifier(sig2))

	// Wrong owner, wrong commitment, corrupted signature all fail.
	other, err := GenerateSpendKey()
	require.NoError(t, err)
	require.False(t, VerifyAuthorization(sig, commitment, OwnerKey(&other.PublicKey)))
	require.False(t, VerifyAuthorization(sig, Commit(New(101, owner, bytes32Of(5))), owner))

	bad := make([]byte, SignatureLength)
	copy(bad, sig)
	bad[10] ^= 0x01
	require.False(t, VerifyAuthorization(bad, commitment, owner))
	require.False(t, VerifyAuthorization(sig[:64], commitment, owner))
}
