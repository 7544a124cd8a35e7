package cardano

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Address is a bech32-encoded payment address.
type Address string

// StakeAddress is a bech32-encoded staking credential. One stake address
// aggregates many payment addresses.
type StakeAddress string

const (
	hrpAddrMainnet  = "addr"
	hrpAddrTestnet  = "addr_test"
	hrpStakeMainnet = "stake"
	hrpStakeTestnet = "stake_test"
)

// ParseAddress validates a bech32 payment address.
func ParseAddress(s string) (Address, error) {
	hrp, _, err := decodeBech32(s)
	if err != nil {
		return "", err
	}
	if hrp != hrpAddrMainnet && hrp != hrpAddrTestnet {
		return "", fmt.Errorf("not a payment address: unexpected prefix %q", hrp)
	}
	return Address(s), nil
}

// ParseStakeAddress validates a bech32 stake address.
func ParseStakeAddress(s string) (StakeAddress, error) {
	hrp, _, err := decodeBech32(s)
	if err != nil {
		return "", err
	}
	if hrp != hrpStakeMainnet && hrp != hrpStakeTestnet {
		return "", fmt.Errorf("not a stake address: unexpected prefix %q", hrp)
	}
	return StakeAddress(s), nil
}

// Bytes returns the raw address payload carried inside the bech32 envelope.
// Transaction outputs carry this form, not the textual one.
func (a Address) Bytes() ([]byte, error) {
	_, payload, err := decodeBech32(string(a))
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (a Address) String() string { return string(a) }

func (s StakeAddress) String() string { return string(s) }

func decodeBech32(s string) (string, []byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return "", nil, fmt.Errorf("invalid bech32 string: %w", err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("invalid bech32 payload: %w", err)
	}
	return hrp, payload, nil
}

// EncodeAddress re-encodes a raw address payload into its bech32 form.
func EncodeAddress(hrp string, payload []byte) (Address, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}
	s, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", fmt.Errorf("bech32 encode: %w", err)
	}
	return Address(s), nil
}
