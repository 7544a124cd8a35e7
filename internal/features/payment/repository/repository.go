package repository

import (
	"context"
	"errors"

	"cardabot-backend/internal/features/payment/models"
)

var ErrRecordNotFound = errors.New("unsigned transaction not found")

// UnsignedTxRepository stores unsigned transactions between build time and
// the (much later) arrival of the client's witness.
type UnsignedTxRepository interface {
	Save(ctx context.Context, record *models.UnsignedTxRecord) error
	Get(ctx context.Context, id string) (*models.UnsignedTxRecord, error)
	Delete(ctx context.Context, id string) error
}
