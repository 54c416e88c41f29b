package cache

import (
	"context"
	"fmt"
	"time"

	"clinic-console/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return client, nil
}

// TokenRegistry reads the access-token allow list maintained by the auth
// service. A token is active while access_token:<user>:<token id> exists.
type TokenRegistry struct {
	client redis.Cmdable
}

func NewTokenRegistry(client redis.Cmdable) *TokenRegistry {
	return &TokenRegistry{client: client}
}

func TokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

// IsActive reports whether the token has not been revoked
func (r *TokenRegistry) IsActive(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := r.client.Exists(ctx, TokenKey(userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token %s: %w", tokenID, err)
	}
	return exists > 0, nil
}
