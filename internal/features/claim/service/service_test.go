package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardabot-backend/internal/cardano"
	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/features/claim/models"
)

type fakeLedger struct {
	addresses map[cardano.StakeAddress][]cardano.Address
	utxos     map[cardano.Address][]cardano.UTxO
	metadata  map[string][]cardano.TxMetadata

	submitted [][]byte
	submitErr error

	metadataCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		addresses: make(map[cardano.StakeAddress][]cardano.Address),
		utxos:     make(map[cardano.Address][]cardano.UTxO),
		metadata:  make(map[string][]cardano.TxMetadata),
	}
}

func (f *fakeLedger) AccountAddresses(_ context.Context, stake cardano.StakeAddress, _ cardano.Order) ([]cardano.Address, error) {
	return f.addresses[stake], nil
}

func (f *fakeLedger) AddressBalance(_ context.Context, addr cardano.Address) (uint64, error) {
	var sum uint64
	for _, utxo := range f.utxos[addr] {
		sum += utxo.Amount
	}
	return sum, nil
}

func (f *fakeLedger) AddressUTxOs(_ context.Context, addr cardano.Address) ([]cardano.UTxO, error) {
	return f.utxos[addr], nil
}

func (f *fakeLedger) TransactionMetadata(_ context.Context, txID string) ([]cardano.TxMetadata, error) {
	f.metadataCalls++
	return f.metadata[txID], nil
}

func (f *fakeLedger) SubmitTransaction(_ context.Context, txCBOR []byte) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, append([]byte(nil), txCBOR...))
	tx, err := cardano.DecodeTransaction(txCBOR)
	if err != nil {
		return "", err
	}
	return tx.ID()
}

func (f *fakeLedger) TransactionExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

const (
	escrowTxA = "1111111111111111111111111111111111111111111111111111111111111111"
	escrowTxB = "2222222222222222222222222222222222222222222222222222222222222222"
	plainTxC  = "3333333333333333333333333333333333333333333333333333333333333333"
)

type claimFixture struct {
	ledger       *fakeLedger
	service      ClaimService
	custodialKey *cardano.SigningKey
	receiver     cardano.Address
}

// newClaimFixture funds a custodial address with two outputs escrowed for
// chat -100777, plus one untagged output that must never be claimed.
func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()

	ledger := newFakeLedger()

	custodialKey := cardano.NewSigningKeyFromSeed(bytes.Repeat([]byte{0x70}, 32))
	custodialAddr := addressFor(t, custodialKey)
	custodialStake := stakeFor(t, 0x71)
	ledger.addresses[custodialStake] = []cardano.Address{custodialAddr}

	ledger.utxos[custodialAddr] = []cardano.UTxO{
		{TxHash: escrowTxA, Index: 0, Address: custodialAddr, Amount: 30_000_000},
		{TxHash: escrowTxB, Index: 1, Address: custodialAddr, Amount: 20_000_000},
		{TxHash: plainTxC, Index: 0, Address: custodialAddr, Amount: 99_000_000},
	}
	ledger.metadata[escrowTxA] = []cardano.TxMetadata{
		{Label: "674", JSON: map[string]interface{}{"msg": []interface{}{"-100777"}}},
	}
	ledger.metadata[escrowTxB] = []cardano.TxMetadata{
		{Label: "674", JSON: map[string]interface{}{"msg": []interface{}{"-100777"}}},
	}

	receiverKey := cardano.NewSigningKeyFromSeed(bytes.Repeat([]byte{0x72}, 32))
	receiver := addressFor(t, receiverKey)

	svc := NewClaimService(
		ledger,
		custodialStake,
		custodialKey,
		cardano.FeeParams{PerByte: 44, Constant: 155_381},
		1_000_000,
		zerolog.Nop(),
	)
	return &claimFixture{
		ledger:       ledger,
		service:      svc,
		custodialKey: custodialKey,
		receiver:     receiver,
	}
}

func addressFor(t *testing.T, key *cardano.SigningKey) cardano.Address {
	t.Helper()

	payload := make([]byte, 0, 57)
	payload = append(payload, 0x00)
	payload = append(payload, cardano.PaymentKeyHash(key.PublicKey())...)
	payload = append(payload, bytes.Repeat([]byte{0x01}, 28)...)

	addr, err := cardano.EncodeAddress("addr_test", payload)
	require.NoError(t, err)
	return addr
}

func stakeFor(t *testing.T, seedByte byte) cardano.StakeAddress {
	t.Helper()

	payload := make([]byte, 0, 29)
	payload = append(payload, 0xe0)
	payload = append(payload, bytes.Repeat([]byte{seedByte}, 28)...)

	addr, err := cardano.EncodeAddress("stake_test", payload)
	require.NoError(t, err)
	return cardano.StakeAddress(addr)
}

func TestClaimSweepsTaggedOutputs(t *testing.T) {
	f := newClaimFixture(t)

	resp, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: f.receiver.String(),
	})
	require.NoError(t, err)
	require.True(t, resp.Claimed)
	require.NotEmpty(t, resp.TxID)

	require.Len(t, f.ledger.submitted, 1)
	tx, err := cardano.DecodeTransaction(f.ledger.submitted[0])
	require.NoError(t, err)

	// Both escrowed outputs spent, the untagged one untouched.
	require.Len(t, tx.Body.Inputs, 2)
	require.Len(t, tx.Body.Outputs, 1)

	receiverBytes, err := f.receiver.Bytes()
	require.NoError(t, err)
	assert.Equal(t, receiverBytes, tx.Body.Outputs[0].Address)
	assert.Equal(t, uint64(50_000_000)-tx.Body.Fee, tx.Body.Outputs[0].Amount)
	assert.True(t, resp.Amount.Equal(cardano.ToAda(tx.Body.Outputs[0].Amount)))

	// Custodial key witnessed the body.
	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)
	require.Len(t, tx.Witnesses.VKeyWitnesses, 1)
	assert.NoError(t, tx.Witnesses.Covers(nil, bodyBytes))
	assert.Equal(t, f.custodialKey.PublicKey(), tx.Witnesses.VKeyWitnesses[0].VKey)
}

func TestClaimNothingEscrowed(t *testing.T) {
	f := newClaimFixture(t)

	resp, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100000",
		ReceiverAddress: f.receiver.String(),
	})
	require.NoError(t, err)
	assert.False(t, resp.Claimed)
	assert.Empty(t, resp.TxID)
	assert.Empty(t, f.ledger.submitted, "empty claim must not submit anything")
}

func TestClaimCachesMetadataPerTransaction(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: f.receiver.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.ledger.metadataCalls, "one metadata query per distinct transaction")
}

func TestClaimRejectsInvalidReceiver(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: "garbage",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestClaimDustCannotPayFee(t *testing.T) {
	f := newClaimFixture(t)

	// Shrink the escrowed outputs below any plausible fee.
	custodialAddr := f.ledger.addresses[stakeFor(t, 0x71)][0]
	f.ledger.utxos[custodialAddr] = []cardano.UTxO{
		{TxHash: escrowTxA, Index: 0, Address: custodialAddr, Amount: 10_000},
	}

	_, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: f.receiver.String(),
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientFunds, appErr.Code)
	assert.Empty(t, f.ledger.submitted)
}

func TestClaimSubmissionFailure(t *testing.T) {
	f := newClaimFixture(t)
	f.ledger.submitErr = errors.New("node unavailable")

	_, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: f.receiver.String(),
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSubmission, appErr.Code)
}

func TestClaimAmountIsDisplayUnits(t *testing.T) {
	f := newClaimFixture(t)

	resp, err := f.service.Claim(context.Background(), &models.ClaimRequest{
		ChatID:          "-100777",
		ReceiverAddress: f.receiver.String(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.LessThan(decimal.NewFromInt(50)))
	assert.True(t, resp.Amount.GreaterThan(decimal.NewFromInt(49)))
}
