package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sparklewash/booking-service/model"
)

type RedisHoldStore struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisHoldStore(redisURL, password string, db int) (*RedisHoldStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisHoldStore{
		client: client,
		ctx:    ctx,
	}, nil
}

// Key generators
func (r *RedisHoldStore) slotKey(date string, startMinute int) string {
	return fmt.Sprintf("hold:slot:%s:%04d", date, startMinute)
}

func (r *RedisHoldStore) idKey(holdID string) string {
	return fmt.Sprintf("hold:id:%s", holdID)
}

// tombstoneGrace keeps the token index alive past the slot claim's TTL so
// a late confirmation attempt reads as expired instead of unknown.
const tombstoneGrace = 30 * time.Minute

// PutIfAbsent claims the slot with SETNX so concurrent claims race on a
// single atomic operation instead of a get-then-set window. The token
// lookup key is written after the claim succeeds; it shares the same TTL.
func (r *RedisHoldStore) PutIfAbsent(hold *model.Hold, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(hold)
	if err != nil {
		return false, err
	}

	ok, err := r.client.SetNX(r.ctx, r.slotKey(hold.Date, hold.StartMinute), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim slot: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := r.client.Set(r.ctx, r.idKey(hold.ID), data, ttl+tombstoneGrace).Err(); err != nil {
		// Roll the claim back so the slot is not stuck behind an
		// unreferenceable hold.
		r.client.Del(r.ctx, r.slotKey(hold.Date, hold.StartMinute))
		return false, fmt.Errorf("failed to index hold: %w", err)
	}

	return true, nil
}

// GetBySlot retrieves the live hold on a slot
func (r *RedisHoldStore) GetBySlot(date string, startMinute int) (*model.Hold, error) {
	hold, err := r.get(r.slotKey(date, startMinute))
	if err != nil || hold == nil {
		return nil, err
	}

	// Redis TTL normally removes expired entries on time, but treat a
	// past-deadline record as absent in case cleanup is lagging.
	if hold.Expired(time.Now()) {
		return nil, nil
	}

	return hold, nil
}

// GetByID retrieves the hold with the given token, expired or not.
func (r *RedisHoldStore) GetByID(holdID string) (*model.Hold, error) {
	return r.get(r.idKey(holdID))
}

func (r *RedisHoldStore) get(key string) (*model.Hold, error) {
	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No hold
		}
		return nil, err
	}

	var hold model.Hold
	if err := json.Unmarshal([]byte(data), &hold); err != nil {
		return nil, err
	}

	return &hold, nil
}

// Remove deletes both keys for the hold
func (r *RedisHoldStore) Remove(hold *model.Hold) error {
	return r.client.Del(r.ctx,
		r.slotKey(hold.Date, hold.StartMinute),
		r.idKey(hold.ID),
	).Err()
}

// Ping checks if Redis is healthy
func (r *RedisHoldStore) Ping() error {
	return r.client.Ping(r.ctx).Err()
}
