package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cardabot-backend/internal/cardano"
)

// fakeLedger is an in-memory Ledger for tests. Addresses are stored in
// ascending order; descending queries reverse them.
type fakeLedger struct {
	mu        sync.Mutex
	addresses map[cardano.StakeAddress][]cardano.Address
	balances  map[cardano.Address]uint64
	utxos     map[cardano.Address][]cardano.UTxO
	metadata  map[string][]cardano.TxMetadata
	onChain   map[string]bool

	submitted [][]byte
	submitID  string
	submitErr error

	addressesErr error
	balanceErr   error
	utxosErr     error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		addresses: make(map[cardano.StakeAddress][]cardano.Address),
		balances:  make(map[cardano.Address]uint64),
		utxos:     make(map[cardano.Address][]cardano.UTxO),
		metadata:  make(map[string][]cardano.TxMetadata),
		onChain:   make(map[string]bool),
		submitID:  "deadbeef",
	}
}

func (f *fakeLedger) AccountAddresses(_ context.Context, stake cardano.StakeAddress, order cardano.Order) ([]cardano.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addressesErr != nil {
		return nil, f.addressesErr
	}
	addrs := append([]cardano.Address(nil), f.addresses[stake]...)
	if order == cardano.OrderDesc {
		for i, j := 0, len(addrs)-1; i < j; i, j = i+1, j-1 {
			addrs[i], addrs[j] = addrs[j], addrs[i]
		}
	}
	return addrs, nil
}

func (f *fakeLedger) AddressBalance(_ context.Context, addr cardano.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[addr], nil
}

func (f *fakeLedger) AddressUTxOs(_ context.Context, addr cardano.Address) ([]cardano.UTxO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.utxosErr != nil {
		return nil, f.utxosErr
	}
	return append([]cardano.UTxO(nil), f.utxos[addr]...), nil
}

func (f *fakeLedger) TransactionMetadata(_ context.Context, txID string) ([]cardano.TxMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadata[txID], nil
}

func (f *fakeLedger) SubmitTransaction(_ context.Context, txCBOR []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, append([]byte(nil), txCBOR...))
	return f.submitID, nil
}

func (f *fakeLedger) TransactionExists(_ context.Context, txID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onChain[txID], nil
}

// addFundedAddress registers an address under stake with a single UTxO
// holding the full balance.
func (f *fakeLedger) addFundedAddress(stake cardano.StakeAddress, addr cardano.Address, lovelace uint64, txHash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[stake] = append(f.addresses[stake], addr)
	f.balances[addr] = lovelace
	if lovelace > 0 {
		f.utxos[addr] = append(f.utxos[addr], cardano.UTxO{
			TxHash:  txHash,
			Index:   0,
			Address: addr,
			Amount:  lovelace,
		})
	}
}

// testKeyAddress derives a valid testnet address from a deterministic seed.
func testKeyAddress(t *testing.T, seedByte byte) (*cardano.SigningKey, cardano.Address) {
	t.Helper()

	key := cardano.NewSigningKeyFromSeed(bytes.Repeat([]byte{seedByte}, 32))

	payload := make([]byte, 0, 57)
	payload = append(payload, 0x00)
	payload = append(payload, cardano.PaymentKeyHash(key.PublicKey())...)
	payload = append(payload, bytes.Repeat([]byte{seedByte}, 28)...)

	addr, err := cardano.EncodeAddress("addr_test", payload)
	require.NoError(t, err)
	return key, addr
}

func testStake(t *testing.T, seedByte byte) cardano.StakeAddress {
	t.Helper()

	payload := make([]byte, 0, 29)
	payload = append(payload, 0xe0)
	payload = append(payload, bytes.Repeat([]byte{seedByte}, 28)...)

	addr, err := cardano.EncodeAddress("stake_test", payload)
	require.NoError(t, err)
	return cardano.StakeAddress(addr)
}

const testTxHash = "3b1a3e0e3a3f0ce49a32cfe39a5b1d2caf1e7f84cb18d3b91f6a0b2ccab64c01"
