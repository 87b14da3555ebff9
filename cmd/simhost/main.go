// Command simhost accepts one shielded transaction request as a JSON line
// on stdin, runs it through the ledger state-transition simulation, and
// prints the resulting public outputs as JSON on stdout. Spend signatures
// and Merkle proofs are supplied by the caller; nullifiers and commitments
// are precomputed here so the simulation runs the fast path.
//
// Usage:
//
//	echo '{"inputNotes":[...],"outputNotes":[...],...}' | simhost
//
// Or for a self-contained demonstration transaction:
//
//	simhost --demo
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/shieldpool/utxo/ledger"
	"github.com/shieldpool/utxo/merkle"
	"github.com/shieldpool/utxo/note"
	"github.com/shieldpool/utxo/wallet"
)

// Diagnostics go to stderr; stdout carries only the response JSON.
var logger = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// simRequest is a transaction submitted by the caller. Hex fields accept
// an optional 0x prefix.
type simRequest struct {
	InputNotes          []noteData `json:"inputNotes"`
	OutputNotes         []noteData `json:"outputNotes"`
	NullifierSignatures []string   `json:"nullifierSignatures"`
	TxSignatures        []string   `json:"txSignatures"`
	InputIndices        []uint64   `json:"inputIndices"`
	InputProofs         [][]string `json:"inputProofs"`
	OldRoot             string     `json:"oldRoot"`
}

type noteData struct {
	Amount      uint64 `json:"amount"`
	OwnerPubkey string `json:"ownerPubkey"`
	Blinding    string `json:"blinding"`
}

type simResponse struct {
	// PublicValuesRaw is the ABI encoding of the public outputs, the exact
	// bytes an on-chain verifier consumes.
	PublicValuesRaw string            `json:"publicValuesRaw"`
	PublicOutputs   publicOutputsJSON `json:"publicOutputs"`
}

type publicOutputsJSON struct {
	OldRoot           string   `json:"oldRoot"`
	Nullifiers        []string `json:"nullifiers"`
	OutputCommitments []string `json:"outputCommitments"`
}

func main() {
	demo := flag.Bool("demo", false, "run a built-in demonstration transaction instead of reading stdin")
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)
	if !scanner.Scan() {
		logger.Fatal().Msg("no input provided")
	}

	var req simRequest
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse request")
	}

	outputs, err := runSimulation(&req)
	if err != nil {
		logger.Fatal().Err(err).Msg("simulation rejected transaction")
	}
	writeResponse(outputs)
}

func runSimulation(req *simRequest) (*ledger.PublicOutputs, error) {
	inputs, err := notesFromData(req.InputNotes)
	if err != nil {
		return nil, fmt.Errorf("input notes: %w", err)
	}
	outputs, err := notesFromData(req.OutputNotes)
	if err != nil {
		return nil, fmt.Errorf("output notes: %w", err)
	}
	nullifierSigs, err := signaturesFromHex(req.NullifierSignatures)
	if err != nil {
		return nil, fmt.Errorf("nullifier signatures: %w", err)
	}
	txSigs, err := signaturesFromHex(req.TxSignatures)
	if err != nil {
		return nil, fmt.Errorf("tx signatures: %w", err)
	}
	oldRoot, err := parseBytes32(req.OldRoot)
	if err != nil {
		return nil, fmt.Errorf("old root: %w", err)
	}

	if len(req.InputProofs) != len(req.InputIndices) {
		return nil, fmt.Errorf("%d proofs for %d input indices", len(req.InputProofs), len(req.InputIndices))
	}
	proofs := make([]merkle.Proof, len(req.InputProofs))
	for i, hexSiblings := range req.InputProofs {
		siblings := make([][32]byte, len(hexSiblings))
		for j, s := range hexSiblings {
			siblings[j], err = parseBytes32(s)
			if err != nil {
				return nil, fmt.Errorf("proof %d sibling %d: %w", i, j, err)
			}
		}
		proofs[i] = merkle.Proof{LeafIndex: req.InputIndices[i], Siblings: siblings}
	}

	logger.Info().
		Int("inputs", len(inputs)).
		Int("outputs", len(outputs)).
		Str("oldRoot", hexutil.Encode(oldRoot[:])).
		Msg("received transaction")

	// Rebuild local state from the supplied input notes. Inclusion is
	// checked against the caller's asserted old root, so the local tree
	// only has to host the post-transaction appends.
	led := ledger.NewLedger()
	for i, n := range inputs {
		idx := led.AddNote(n)
		logger.Debug().Int("note", i).Uint64("index", idx).Msg("added input note")
	}

	witness := ledger.NewWitness(inputs, req.InputIndices, proofs, nullifierSigs, txSigs, outputs).
		WithPrecomputedValues()

	logger.Info().
		Int("nullifiers", len(witness.PrecomputedNullifiers)).
		Int("inputCommitments", len(witness.PrecomputedInputCommitments)).
		Int("outputCommitments", len(witness.PrecomputedOutputCommitments)).
		Msg("precomputed witness values")

	return ledger.Simulate(led, witness, oldRoot, ledger.ModeTrusted)
}

// runDemo builds two wallets, funds the first, and transfers half the
// funding note to the second through the full simulation path.
func runDemo() {
	led := ledger.NewLedger()

	alice, err := wallet.NewWallet()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create wallet")
	}
	bob, err := wallet.NewWallet()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create wallet")
	}

	funding := note.New(100, alice.Owner(), [32]byte{0x42})
	idx := led.AddNote(funding)
	alice.AddNote(funding, idx)
	oldRoot := led.Root()

	logger.Info().
		Uint64("fundingIndex", idx).
		Str("oldRoot", hexutil.Encode(oldRoot[:])).
		Msg("transaction: alice (100) -> bob (50) + change (50)")

	transfer, err := alice.BuildTransfer(led, bob.Owner(), bob.EncryptionPub(), 50, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build transfer")
	}

	outputs, err := ledger.Simulate(led, transfer.Witness, oldRoot, ledger.ModeRecheck)
	if err != nil {
		logger.Fatal().Err(err).Msg("simulation rejected transaction")
	}
	writeResponse(outputs)
}

func writeResponse(outputs *ledger.PublicOutputs) {
	raw, err := outputs.ABIEncode()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode public outputs")
	}

	resp := simResponse{
		PublicValuesRaw: hexutil.Encode(raw),
		PublicOutputs: publicOutputsJSON{
			OldRoot:           hexutil.Encode(outputs.OldRoot[:]),
			Nullifiers:        encodeWords(outputs.Nullifiers),
			OutputCommitments: encodeWords(outputs.OutputCommitments),
		},
	}

	logger.Info().
		Int("nullifiers", len(outputs.Nullifiers)).
		Int("outputCommitments", len(outputs.OutputCommitments)).
		Msg("transaction accepted")

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(resp); err != nil {
		logger.Fatal().Err(err).Msg("failed to write response")
	}
}

func encodeWords(words [][32]byte) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = hexutil.Encode(w[:])
	}
	return out
}

func notesFromData(data []noteData) ([]note.Note, error) {
	notes := make([]note.Note, len(data))
	for i, d := range data {
		owner, err := parseBytes32(d.OwnerPubkey)
		if err != nil {
			return nil, fmt.Errorf("note %d owner: %w", i, err)
		}
		blinding, err := parseBytes32(d.Blinding)
		if err != nil {
			return nil, fmt.Errorf("note %d blinding: %w", i, err)
		}
		notes[i] = note.New(d.Amount, owner, blinding)
	}
	return notes, nil
}

func signaturesFromHex(hexSigs []string) ([][]byte, error) {
	sigs := make([][]byte, len(hexSigs))
	for i, s := range hexSigs {
		b := common.FromHex(s)
		if len(b) != note.SignatureLength {
			return nil, fmt.Errorf("signature %d: got %d bytes, want %d", i, len(b), note.SignatureLength)
		}
		sigs[i] = b
	}
	return sigs, nil
}

func parseBytes32(s string) ([32]byte, error) {
	b := common.FromHex(s)
	var out [32]byte
	if len(b) != len(out) {
		return out, fmt.Errorf("got %d bytes, want 32", len(b))
	}
	copy(out[:], b)
	return out, nil
}
