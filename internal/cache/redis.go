package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps catalog lookups per destination. A miss is reported as a
// nil result with a nil error.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *RedisCache) GetFlight(ctx context.Context, destination string) (*domain.FlightRecord, error) {
	var rec domain.FlightRecord
	ok, err := c.get(ctx, flightKey(destination), &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, destination string, rec domain.FlightRecord) error {
	return c.set(ctx, flightKey(destination), rec)
}

func (c *RedisCache) GetAccommodations(ctx context.Context, location string) (domain.Accommodations, error) {
	var list domain.Accommodations
	ok, err := c.get(ctx, accommodationsKey(location), &list)
	if err != nil || !ok {
		return nil, err
	}
	if list == nil {
		list = domain.Accommodations{}
	}
	return list, nil
}

func (c *RedisCache) SetAccommodations(ctx context.Context, location string, list domain.Accommodations) error {
	return c.set(ctx, accommodationsKey(location), list)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func flightKey(destination string) string {
	return "cache:catalog:flight:" + strings.ToLower(destination)
}

func accommodationsKey(location string) string {
	return "cache:catalog:accommodations:" + strings.ToLower(location)
}
