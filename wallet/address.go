package wallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

const (
	addrPrefix  = "sp"
	addrVersion = 0x01
)

// EncodeAddress renders a 32-byte owner key as a human-readable
// base58check address.
func EncodeAddress(owner [32]byte) string {
	return addrPrefix + base58.CheckEncode(owner[:], addrVersion)
}

// DecodeAddress parses an address back into the owner key it encodes.
func DecodeAddress(addr string) ([32]byte, error) {
	var owner [32]byte
	if !strings.HasPrefix(addr, addrPrefix) {
		return owner, fmt.Errorf("wrong prefix: got(%s)", addr)
	}
	payload, version, err := base58.CheckDecode(addr[len(addrPrefix):])
	if err != nil {
		return owner, err
	}
	if version != addrVersion {
		return owner, fmt.Errorf("wrong version: expected(%d), got(%d)", addrVersion, version)
	}
	if len(payload) != 32 {
		return owner, fmt.Errorf("wrong payload length: expected(32), got(%d)", len(payload))
	}
	copy(owner[:], payload)
	return owner, nil
}
