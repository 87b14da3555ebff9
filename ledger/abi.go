package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The verifier contract decodes the proof's public values as
// abi.decode(publicValues, (bytes32 oldRoot, bytes32[] nullifiers,
// bytes32[] outputCommitments)). Field order and type widths here are a
// compatibility contract, not an implementation detail.
var publicOutputsArgs = abi.Arguments{
	{Name: "oldRoot", Type: mustNewType("bytes32")},
	{Name: "nullifiers", Type: mustNewType("bytes32[]")},
	{Name: "outputCommitments", Type: mustNewType("bytes32[]")},
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %q: %v", t, err))
	}
	return typ
}

// ABIEncode packs the public outputs for consumption by the on-chain
// verifier.
func (p *PublicOutputs) ABIEncode() ([]byte, error) {
	packed, err := publicOutputsArgs.Pack(p.OldRoot, p.Nullifiers, p.OutputCommitments)
	if err != nil {
		return nil, fmt.Errorf("abi encode public outputs: %w", err)
	}
	return packed, nil
}

// ABIDecodePublicOutputs is the inverse of ABIEncode. The verifier side
// uses it to re-check root continuity and nullifier uniqueness from the
// public record alone.
func ABIDecodePublicOutputs(data []byte) (*PublicOutputs, error) {
	values, err := publicOutputsArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("abi decode public outputs: %w", err)
	}

	out := &PublicOutputs{}
	var ok bool
	if out.OldRoot, ok = values[0].([32]byte); !ok {
		return nil, fmt.Errorf("abi decode public outputs: unexpected oldRoot type %T", values[0])
	}
	if out.Nullifiers, ok = values[1].([][32]byte); !ok {
		return nil, fmt.Errorf("abi decode public outputs: unexpected nullifiers type %T", values[1])
	}
	if out.OutputCommitments, ok = values[2].([][32]byte); !ok {
		return nil, fmt.Errorf("abi decode public outputs: unexpected outputCommitments type %T", values[2])
	}
	return out, nil
}
