package service

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"

	"cardabot-backend/internal/cardano"
	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/common/metrics"
	"cardabot-backend/internal/features/claim/models"
)

type ClaimService interface {
	// Claim gathers every custodial output escrowed for a chat, pays the
	// total (less fee) to the receiver, and submits the transaction with
	// the custodial key. Finding nothing is a valid empty outcome.
	Claim(ctx context.Context, req *models.ClaimRequest) (*models.ClaimResponse, error)
}

type claimService struct {
	ledger         cardano.Ledger
	custodialStake cardano.StakeAddress
	custodialKey   *cardano.SigningKey
	feeParams      cardano.FeeParams
	maxFee         uint64
	logger         zerolog.Logger
}

// NewClaimService constructs the claim engine. The custodial key is injected
// here rather than read from process-global state so tests can swap it.
func NewClaimService(
	ledger cardano.Ledger,
	custodialStake cardano.StakeAddress,
	custodialKey *cardano.SigningKey,
	feeParams cardano.FeeParams,
	maxFee uint64,
	logger zerolog.Logger,
) ClaimService {
	return &claimService{
		ledger:         ledger,
		custodialStake: custodialStake,
		custodialKey:   custodialKey,
		feeParams:      feeParams,
		maxFee:         maxFee,
		logger:         logger,
	}
}

func (s *claimService) Claim(ctx context.Context, req *models.ClaimRequest) (*models.ClaimResponse, error) {
	receiver, err := cardano.ParseAddress(req.ReceiverAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("receiver_address", err.Error())
	}

	escrowed, err := s.findEscrowedOutputs(ctx, req.ChatID)
	if err != nil {
		return nil, apperrors.NewAddressResolutionError(s.custodialStake.String(), err)
	}
	if len(escrowed) == 0 {
		metrics.ClaimsProcessed.WithLabelValues("empty").Inc()
		return &models.ClaimResponse{Claimed: false}, nil
	}

	var inputs []cardano.Input
	var total uint64
	for _, utxo := range escrowed {
		txHash, err := hex.DecodeString(utxo.TxHash)
		if err != nil {
			return nil, apperrors.NewTransactionBuildError(fmt.Errorf("invalid utxo tx hash %q: %w", utxo.TxHash, err))
		}
		inputs = append(inputs, cardano.Input{TxHash: txHash, Index: utxo.Index})
		total += utxo.Amount
	}

	receiverBytes, err := receiver.Bytes()
	if err != nil {
		return nil, apperrors.NewValidationError("receiver_address", err.Error())
	}

	// Two passes: size the transaction with the full total in the output
	// and a placeholder max fee, then rebuild with the real fee subtracted
	// from what the claimant receives.
	sizing := cardano.Body{
		Inputs:  inputs,
		Outputs: []cardano.Output{{Address: receiverBytes, Amount: total}},
	}
	fee, err := cardano.EstimateFee(sizing, nil, 1, s.feeParams, s.maxFee)
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	if total <= fee {
		// Escrowed dust that cannot pay its own way out.
		return nil, apperrors.NewInsufficientFundsError(s.custodialStake.String()).
			WithDetail("chat_id", req.ChatID).
			WithDetail("escrowed_lovelace", total)
	}

	payout := total - fee
	tx, err := cardano.NewTransaction(cardano.Body{
		Inputs:  inputs,
		Outputs: []cardano.Output{{Address: receiverBytes, Amount: payout}},
		Fee:     fee,
	}, nil)
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}

	bodyBytes, err := tx.BodyBytes()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	tx.SetWitnesses(cardano.WitnessSet{
		VKeyWitnesses: []cardano.VKeyWitness{s.custodialKey.WitnessBody(bodyBytes)},
	})

	signedCBOR, err := tx.Encode()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}

	// One shot: a rejected or failed submission is terminal for this call.
	txID, err := s.ledger.SubmitTransaction(ctx, signedCBOR)
	if err != nil {
		metrics.ClaimsProcessed.WithLabelValues("failure").Inc()
		return nil, apperrors.NewSubmissionError(err)
	}
	metrics.ClaimsProcessed.WithLabelValues("success").Inc()

	s.logger.Info().
		Str("chat_id", req.ChatID).
		Str("tx_id", txID).
		Uint64("payout", payout).
		Int("outputs_claimed", len(escrowed)).
		Msg("Escrowed funds claimed")

	return &models.ClaimResponse{
		Claimed: true,
		TxID:    txID,
		Amount:  cardano.ToAda(payout),
	}, nil
}

// findEscrowedOutputs walks every custodial address and keeps the unspent
// outputs whose originating transaction carries the escrow tag for chatID.
func (s *claimService) findEscrowedOutputs(ctx context.Context, chatID string) ([]cardano.UTxO, error) {
	addresses, err := s.ledger.AccountAddresses(ctx, s.custodialStake, cardano.OrderAsc)
	if err != nil {
		return nil, fmt.Errorf("resolve custodial addresses: %w", err)
	}

	// Several outputs may come from one transaction; query metadata once.
	metaCache := make(map[string][]cardano.TxMetadata)

	var escrowed []cardano.UTxO
	for _, addr := range addresses {
		utxos, err := s.ledger.AddressUTxOs(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("utxos of %s: %w", addr, err)
		}
		for _, utxo := range utxos {
			meta, ok := metaCache[utxo.TxHash]
			if !ok {
				meta, err = s.ledger.TransactionMetadata(ctx, utxo.TxHash)
				if err != nil {
					return nil, fmt.Errorf("metadata of %s: %w", utxo.TxHash, err)
				}
				metaCache[utxo.TxHash] = meta
			}
			if cardano.MetadataClaimsChat(meta, chatID) {
				escrowed = append(escrowed, utxo)
			}
		}
	}
	return escrowed, nil
}
