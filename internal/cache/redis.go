package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"ethicrawler/config"
	"ethicrawler/internal/models"
	"ethicrawler/internal/repository"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationList keeps revoked payment ids in a redis hash
// (payment id -> JSON RevokedPayment) so every node sees the same
// disablement list.
type RedisRevocationList struct {
	client *redis.Client
	key    string
}

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ConnectRevocationList pings redis before handing back the list.
func ConnectRevocationList(ctx context.Context, cfg *config.RedisConfig) (*RedisRevocationList, error) {
	client := NewRedisClient(cfg)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Printf("[Redis] revocation list connected at %s", cfg.Addr)
	return NewRedisRevocationList(client, cfg.Key), nil
}

func NewRedisRevocationList(client *redis.Client, key string) *RedisRevocationList {
	if key == "" {
		key = "ethicrawler:revoked"
	}
	return &RedisRevocationList{client: client, key: key}
}

func (r *RedisRevocationList) Revoke(ctx context.Context, rev *models.RevokedPayment) error {
	data, err := json.Marshal(rev)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key, rev.PaymentID, data).Err()
}

// Lookup returns the revocation entry for paymentID, or repository.ErrNotFound.
func (r *RedisRevocationList) Lookup(ctx context.Context, paymentID string) (*models.RevokedPayment, error) {
	data, err := r.client.HGet(ctx, r.key, paymentID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rev models.RevokedPayment
	if err := json.Unmarshal(data, &rev); err != nil {
		return nil, fmt.Errorf("decode revocation %s: %w", paymentID, err)
	}
	return &rev, nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, paymentID string) (bool, error) {
	return r.client.HExists(ctx, r.key, paymentID).Result()
}

func (r *RedisRevocationList) Close() error {
	return r.client.Close()
}
