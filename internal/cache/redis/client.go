package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/pkg/logger"
)

const comparisonPrefix = "comparison:"

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) SetComparison(ctx context.Context, key string, result interface{}, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}

	err = c.client.Set(ctx, comparisonPrefix+key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set comparison cache: %w", err)
	}

	logger.Debug("Comparison cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// GetComparison decodes a cached comparison into result. A missing key is not an error.
func (c *Client) GetComparison(ctx context.Context, key string, result interface{}) (bool, error) {
	data, err := c.client.Get(ctx, comparisonPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get comparison cache: %w", err)
	}

	err = json.Unmarshal(data, result)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal comparison: %w", err)
	}

	logger.Debug("Comparison cache hit", zap.String("key", key))
	return true, nil
}

func (c *Client) InvalidateComparisons(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, comparisonPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Comparison cache invalidated")
	return nil
}
