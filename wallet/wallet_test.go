package wallet

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/shieldpool/utxo/crypto"
	"github.com/shieldpool/utxo/ledger"
	"github.com/shieldpool/utxo/note"
)

func newFundedWallet(t *testing.T, l *ledger.Ledger, amounts ...uint64) *Wallet {
	t.Helper()
	w, err := NewWallet()
	require.NoError(t, err)
	for _, amount := range amounts {
		n := note.New(amount, w.Owner(), randBlinding())
		idx := l.AddNote(n)
		w.AddNote(n, idx)
	}
	return w
}

func TestAddressRoundTrip(t *testing.T) {
	w, err := NewWallet()
	require.NoError(t, err)

	owner, err := DecodeAddress(w.Address)
	require.NoError(t, err)
	require.Equal(t, w.Owner(), owner)
}

func TestDecodeAddressRejects(t *testing.T) {
	w, err := NewWallet()
	require.NoError(t, err)

	_, err = DecodeAddress("xx" + w.Address[2:])
	require.Error(t, err)

	// Corrupt the checksum.
	addr := []byte(w.Address)
	last := len(addr) - 1
	if addr[last] == 'a' {
		addr[last] = 'b'
	} else {
		addr[last] = 'a'
	}
	_, err = DecodeAddress(string(addr))
	require.Error(t, err)
}

func TestBalance(t *testing.T) {
	l := ledger.NewLedger()
	w := newFundedWallet(t, l, 100, 25)
	require.Equal(t, uint256.NewInt(125), w.Balance())
	require.Equal(t, 2, w.NoteCount())
}

func TestSecretNoteRoundTrip(t *testing.T) {
	owner := [32]byte{7}
	n := note.New(1234, owner, [32]byte{1, 2, 3})

	sn := NewSecretNote(n, []byte("rent"))
	decoded, err := DecodeSecretNote(sn.Bytes())
	require.NoError(t, err)
	require.Equal(t, sn.Version, decoded.Version)
	require.Equal(t, sn.Balance, decoded.Balance)
	require.Equal(t, sn.Blinding, decoded.Blinding)
	require.Equal(t, []byte("rent"), decoded.Memo)

	got, err := decoded.ToNote(owner)
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestSecretNoteToNoteRejects(t *testing.T) {
	sn := &SecretNote{Version: 1, Balance: uint256.MustFromDecimal("18446744073709551616"), Blinding: make([]byte, 32)}
	_, err := sn.ToNote([32]byte{})
	require.Error(t, err)

	sn = &SecretNote{Version: 1, Balance: uint256.NewInt(1), Blinding: make([]byte, 16)}
	_, err = sn.ToNote([32]byte{})
	require.Error(t, err)
}

func TestBuildTransferSimulates(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 100)
	bob, err := NewWallet()
	require.NoError(t, err)

	oldRoot := l.Root()
	tr, err := alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 50, 0)
	require.NoError(t, err)
	require.Len(t, tr.OutputNotes, 2) // payment + change
	require.Equal(t, uint64(50), tr.OutputNotes[0].Amount)
	require.Equal(t, uint64(50), tr.OutputNotes[1].Amount)

	outputs, err := ledger.Simulate(l, tr.Witness, oldRoot, ledger.ModeRecheck)
	require.NoError(t, err)
	require.Len(t, outputs.Nullifiers, 1)
	require.Len(t, outputs.OutputCommitments, 2)
	require.NotEqual(t, oldRoot, l.Root())

	// Spent note left the wallet.
	require.Equal(t, 0, alice.NoteCount())
}

func TestBuildTransferWithFee(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 100)
	bob, err := NewWallet()
	require.NoError(t, err)

	oldRoot := l.Root()
	tr, err := alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 60, 10)
	require.NoError(t, err)
	require.Len(t, tr.OutputNotes, 2)
	require.Equal(t, uint64(60), tr.OutputNotes[0].Amount)
	require.Equal(t, uint64(30), tr.OutputNotes[1].Amount)

	_, err = ledger.Simulate(l, tr.Witness, oldRoot, ledger.ModeRecheck)
	require.NoError(t, err)
}

func TestBuildTransferSelectsMultipleNotes(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 30, 30, 30)
	bob, err := NewWallet()
	require.NoError(t, err)

	oldRoot := l.Root()
	tr, err := alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 70, 0)
	require.NoError(t, err)
	require.Len(t, tr.Witness.InputNotes, 3)

	outputs, err := ledger.Simulate(l, tr.Witness, oldRoot, ledger.ModeRecheck)
	require.NoError(t, err)
	require.Len(t, outputs.Nullifiers, 3)
}

func TestBuildTransferInsufficientBalance(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 10)
	bob, err := NewWallet()
	require.NoError(t, err)

	_, err = alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 50, 0)
	require.Error(t, err)
	require.Equal(t, 1, alice.NoteCount())
}

func TestTransferDeliveryEndToEnd(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 100)
	bob, err := NewWallet()
	require.NoError(t, err)

	oldRoot := l.Root()
	tr, err := alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 50, 0)
	require.NoError(t, err)

	outputs, err := ledger.Simulate(l, tr.Witness, oldRoot, ledger.ModeRecheck)
	require.NoError(t, err)

	// Output i landed at the leaf index matching its commitment order.
	baseIndex := uint64(l.LeafCount() - len(outputs.OutputCommitments))

	// Bob decrypts his payload and ends up with a spendable note.
	received, err := bob.Receive(tr.EncryptedOutputs[0], l, baseIndex)
	require.NoError(t, err)
	require.Equal(t, uint64(50), received.Amount)
	require.Equal(t, uint256.NewInt(50), bob.Balance())

	// Alice recovers her change the same way.
	change, err := alice.Receive(tr.EncryptedOutputs[1], l, baseIndex+1)
	require.NoError(t, err)
	require.Equal(t, uint64(50), change.Amount)

	// Bob can spend what he received.
	root := l.Root()
	back, err := bob.BuildTransfer(l, alice.Owner(), alice.EncryptionPub(), 50, 0)
	require.NoError(t, err)
	_, err = ledger.Simulate(l, back.Witness, root, ledger.ModeRecheck)
	require.NoError(t, err)

	// Alice cannot decrypt Bob's payload.
	_, err = alice.Receive(tr.EncryptedOutputs[0], l, baseIndex)
	require.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestReceiveRejectsMismatchedCommitment(t *testing.T) {
	l := ledger.NewLedger()
	alice := newFundedWallet(t, l, 100)
	bob, err := NewWallet()
	require.NoError(t, err)

	oldRoot := l.Root()
	tr, err := alice.BuildTransfer(l, bob.Owner(), bob.EncryptionPub(), 50, 0)
	require.NoError(t, err)
	_, err = ledger.Simulate(l, tr.Witness, oldRoot, ledger.ModeRecheck)
	require.NoError(t, err)

	// Pointing Bob at the wrong leaf index must fail the commitment check.
	_, err = bob.Receive(tr.EncryptedOutputs[0], l, 0)
	require.Error(t, err)
}
