package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cardabot-backend/internal/features/payment/models"
	"cardabot-backend/internal/features/payment/repository"
)

const (
	keyPrefixUnsignedTx = "unsigned_tx:"

	// Unsigned transactions reference live UTxOs; after a day the selection
	// is stale anyway and the client must rebuild.
	recordExpiration = 24 * time.Hour
)

type redisRepository struct {
	client *redis.Client
}

func NewUnsignedTxRepository(client *redis.Client) repository.UnsignedTxRepository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Save(ctx context.Context, record *models.UnsignedTxRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal unsigned tx record: %w", err)
	}
	return r.client.Set(ctx, keyPrefixUnsignedTx+record.ID, data, recordExpiration).Err()
}

func (r *redisRepository) Get(ctx context.Context, id string) (*models.UnsignedTxRecord, error) {
	data, err := r.client.Get(ctx, keyPrefixUnsignedTx+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unsigned tx record: %w", err)
	}

	var record models.UnsignedTxRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unsigned tx record: %w", err)
	}
	return &record, nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyPrefixUnsignedTx+id).Err()
}
