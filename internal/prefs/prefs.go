// Package prefs is the durable per-user key/value store that keeps the
// cached profile id and the onboarding flag across requests and restarts.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Keys
const (
	KeyUserProfileID     = "userProfileID"
	KeyHasSeenOnboarding = "hasSeenOnboarding"
)

// Store reads and writes durable values for one user
type Store interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Redis keeps values under jurados:<userID>:<key>
type Redis struct {
	client *redis.Client
}

// NewRedis creates a redis backed preference provider
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Dial parses a redis URL and verifies the connection
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// For returns the store scoped to one user
func (r *Redis) For(userID string) Store {
	return &userStore{client: r.client, prefix: "jurados:" + userID + ":"}
}

// Ping checks redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type userStore struct {
	client *redis.Client
	prefix string
}

func (s *userStore) GetString(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *userStore) SetString(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetBool reports false for a missing key
func (s *userStore) GetBool(ctx context.Context, key string) (bool, error) {
	value, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return b, nil
}

func (s *userStore) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}
