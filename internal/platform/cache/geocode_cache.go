// Package cache provides a Redis-backed cache for geocoding answers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

// GeocodeCache stores forward-geocoding results keyed by normalized address.
type GeocodeCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewClient opens a Redis client for cfg and verifies it with PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}

// NewGeocodeCache creates a cache whose entries expire after ttl.
// A zero ttl keeps entries until evicted.
func NewGeocodeCache(client redis.UniversalClient, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{client: client, ttl: ttl}
}

// Get returns the cached coordinates for address. The boolean is false on a miss.
func (c *GeocodeCache) Get(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	raw, err := c.client.Get(ctx, geocodeKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	var coords domain.Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("failed to decode cached coordinates: %w", err)
	}
	return coords, true, nil
}

// Set stores coords for address.
func (c *GeocodeCache) Set(ctx context.Context, address string, coords domain.Coordinates) error {
	raw, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to encode coordinates: %w", err)
	}
	if err := c.client.Set(ctx, geocodeKey(address), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	return nil
}

// geocodeKey lower-cases the address and collapses whitespace so trivially
// different spellings share an entry.
func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
