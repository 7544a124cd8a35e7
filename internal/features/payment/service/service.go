package service

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cardabot-backend/internal/cardano"
	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/common/metrics"
	chatmodels "cardabot-backend/internal/features/chat/models"
	chatrepo "cardabot-backend/internal/features/chat/repository"
	"cardabot-backend/internal/features/payment/models"
	"cardabot-backend/internal/features/payment/repository"
)

type PaymentService interface {
	// CreatePayment selects funds, builds an unsigned transaction, and
	// stores it until the client wallet returns a witness.
	CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.UnsignedTxRecord, error)

	// GetPayment returns a stored unsigned transaction record.
	GetPayment(ctx context.Context, id string) (*models.UnsignedTxRecord, error)

	// SubmitPayment merges the client's witness into the stored unsigned
	// transaction and submits the result. Never retried on failure.
	SubmitPayment(ctx context.Context, req *models.SubmitPaymentRequest) (*models.SubmitPaymentResponse, error)

	// CheckTransaction reports whether a transaction is visible on-chain.
	CheckTransaction(ctx context.Context, txID string) (*models.CheckTransactionResponse, error)
}

type paymentService struct {
	chats          chatrepo.ChatRepository
	records        repository.UnsignedTxRepository
	ledger         cardano.Ledger
	selector       *CoinSelector
	builder        *TransactionBuilder
	custodialStake cardano.StakeAddress
	logger         zerolog.Logger
}

func NewPaymentService(
	chats chatrepo.ChatRepository,
	records repository.UnsignedTxRepository,
	ledger cardano.Ledger,
	selector *CoinSelector,
	builder *TransactionBuilder,
	custodialStake cardano.StakeAddress,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		chats:          chats,
		records:        records,
		ledger:         ledger,
		selector:       selector,
		builder:        builder,
		custodialStake: custodialStake,
		logger:         logger,
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.UnsignedTxRecord, error) {
	client := req.Client
	if client == "" {
		client = chatmodels.ClientTelegram
	}

	// Sign check comes before conversion; a negative decimal would wrap on
	// the int64 to uint64 cast and slip past the zero check.
	if req.Amount.Sign() <= 0 {
		return nil, apperrors.NewValidationError("amount", "must be positive")
	}
	amount := cardano.ToLovelace(req.Amount)
	if amount == 0 {
		return nil, apperrors.NewValidationError("amount", "must be positive")
	}

	senderStake, err := s.stakeOfChat(ctx, client, req.SenderChatID)
	if err != nil {
		return nil, err
	}
	if senderStake == "" {
		return nil, apperrors.NewValidationError("sender_chat_id", "sender has no linked wallet")
	}

	destination, escrowChatID, err := s.resolveDestination(ctx, client, req.ReceiverChatID)
	if err != nil {
		return nil, err
	}

	selection, err := s.selector.Select(ctx, cardano.StakeAddress(senderStake), amount)
	if err != nil {
		return nil, apperrors.NewAddressResolutionError(senderStake, err)
	}
	if len(selection) == 0 {
		return nil, apperrors.NewInsufficientFundsError(senderStake)
	}

	tx, fee, err := s.builder.BuildUnsigned(ctx, selection, []Payment{{Address: destination, Amount: amount}}, escrowChatID)
	if err != nil {
		if errors.Is(err, errLedgerQuery) {
			return nil, apperrors.NewAddressResolutionError(senderStake, err)
		}
		return nil, apperrors.NewTransactionBuildError(err)
	}

	txCBOR, err := tx.Encode()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	txID, err := tx.ID()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}

	senderAddresses := make([]string, 0, len(selection))
	for _, addr := range selection {
		senderAddresses = append(senderAddresses, addr.String())
	}

	record := &models.UnsignedTxRecord{
		ID:               uuid.New().String(),
		TxID:             txID,
		TxCBORHex:        hex.EncodeToString(txCBOR),
		Amount:           req.Amount,
		SenderChatID:     req.SenderChatID,
		ReceiverChatID:   req.ReceiverChatID,
		ReceiverUsername: req.ReceiverUsername,
		SenderAddresses:  senderAddresses,
		Escrowed:         escrowChatID != "",
		CreatedAt:        time.Now(),
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, apperrors.NewDatabaseError("save unsigned tx", err)
	}

	metrics.TransactionsBuilt.Inc()
	s.logger.Info().
		Str("record_id", record.ID).
		Str("tx_id", txID).
		Uint64("fee", fee).
		Int("inputs_from", len(selection)).
		Bool("escrowed", record.Escrowed).
		Msg("Unsigned transaction built")

	return record, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*models.UnsignedTxRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Unsigned transaction not found")
		}
		return nil, apperrors.NewDatabaseError("get unsigned tx", err)
	}
	return record, nil
}

func (s *paymentService) SubmitPayment(ctx context.Context, req *models.SubmitPaymentRequest) (*models.SubmitPaymentResponse, error) {
	record, err := s.GetPayment(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	txCBOR, err := hex.DecodeString(record.TxCBORHex)
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	tx, err := cardano.DecodeTransaction(txCBOR)
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}

	witnessCBOR, err := hex.DecodeString(req.WitnessHex)
	if err != nil {
		return nil, apperrors.NewValidationError("witness", "not valid hex")
	}
	if err := tx.SetWitnessSetCBOR(witnessCBOR); err != nil {
		return nil, apperrors.NewValidationError("witness", err.Error())
	}

	// Composition must not move the transaction id: the id covers only the
	// body, which the witness merge leaves untouched.
	txID, err := tx.ID()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	if txID != record.TxID {
		return nil, apperrors.NewTransactionBuildError(
			errors.New("transaction id changed during witness composition"))
	}

	bodyBytes, err := tx.BodyBytes()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}
	senderAddresses := make([]cardano.Address, 0, len(record.SenderAddresses))
	for _, addr := range record.SenderAddresses {
		senderAddresses = append(senderAddresses, cardano.Address(addr))
	}
	if err := tx.Witnesses.Covers(senderAddresses, bodyBytes); err != nil {
		return nil, apperrors.NewValidationError("witness", err.Error())
	}

	signedCBOR, err := tx.Encode()
	if err != nil {
		return nil, apperrors.NewTransactionBuildError(err)
	}

	chainTxID, err := s.ledger.SubmitTransaction(ctx, signedCBOR)
	if err != nil {
		metrics.TransactionsSubmitted.WithLabelValues("failure").Inc()
		return nil, apperrors.NewSubmissionError(err)
	}
	metrics.TransactionsSubmitted.WithLabelValues("success").Inc()

	// The record served its purpose; expiry would reap it anyway.
	if err := s.records.Delete(ctx, req.RecordID); err != nil {
		s.logger.Warn().Err(err).Str("record_id", req.RecordID).Msg("Failed to delete submitted record")
	}

	s.logger.Info().Str("tx_id", chainTxID).Msg("Transaction submitted")
	return &models.SubmitPaymentResponse{TxID: chainTxID}, nil
}

func (s *paymentService) CheckTransaction(ctx context.Context, txID string) (*models.CheckTransactionResponse, error) {
	confirmed, err := s.ledger.TransactionExists(ctx, txID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAddressResolution, "Failed to query transaction")
	}
	return &models.CheckTransactionResponse{TxID: txID, Confirmed: confirmed}, nil
}

// stakeOfChat resolves a chat to its linked stake address, or "" when the
// chat has no wallet yet.
func (s *paymentService) stakeOfChat(ctx context.Context, client, chatID string) (string, error) {
	chat, err := s.chats.GetChat(ctx, client, chatID)
	if err != nil {
		if errors.Is(err, chatrepo.ErrChatNotFound) {
			return "", apperrors.NewChatNotFoundError(chatID)
		}
		return "", apperrors.NewDatabaseError("get chat", err)
	}
	if chat.UserID == "" {
		return "", nil
	}

	user, err := s.chats.GetUser(ctx, chat.UserID)
	if err != nil {
		return "", apperrors.NewDatabaseError("get user", err)
	}
	return user.StakeAddress, nil
}

// resolveDestination picks where the payment goes. A receiver with a linked
// wallet is paid at their first payment address; a receiver without one is
// paid into custody, tagged with their chat identity for a later claim.
func (s *paymentService) resolveDestination(ctx context.Context, client, receiverChatID string) (cardano.Address, string, error) {
	receiverStake, err := s.stakeOfChat(ctx, client, receiverChatID)
	if err != nil {
		return "", "", err
	}

	stake := cardano.StakeAddress(receiverStake)
	escrowChatID := ""
	if receiverStake == "" {
		stake = s.custodialStake
		escrowChatID = receiverChatID
	}

	addresses, err := s.ledger.AccountAddresses(ctx, stake, cardano.OrderAsc)
	if err != nil {
		return "", "", apperrors.NewAddressResolutionError(stake.String(), err)
	}
	if len(addresses) == 0 {
		return "", "", apperrors.NewAddressResolutionError(stake.String(),
			errors.New("stake address has no payment addresses"))
	}
	return addresses[0], escrowChatID, nil
}
