package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/frelancia/frelwatch/internal/models"
)

const redisKeyPrefix = "frelwatch:"

// RedisStore keeps each document as a JSON value under a frelwatch:* key.
// Useful when several machines share one watcher state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL, verifies connectivity and returns the store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Seen(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.read(ctx, keySeen, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *RedisStore) SetSeen(ctx context.Context, ids []string) error {
	return r.write(ctx, keySeen, ids)
}

func (r *RedisStore) Recent(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.read(ctx, keyRecent, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (r *RedisStore) SetRecent(ctx context.Context, jobs []models.Job) error {
	return r.write(ctx, keyRecent, jobs)
}

func (r *RedisStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := r.read(ctx, keyStats, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (r *RedisStore) SetStats(ctx context.Context, stats models.Stats) error {
	return r.write(ctx, keyStats, stats)
}

func (r *RedisStore) Tracked(ctx context.Context) (map[string]models.TrackedProject, error) {
	var tracked map[string]models.TrackedProject
	if err := r.read(ctx, keyTracked, &tracked); err != nil {
		return nil, err
	}
	if tracked == nil {
		tracked = map[string]models.TrackedProject{}
	}
	return tracked, nil
}

func (r *RedisStore) SetTracked(ctx context.Context, tracked map[string]models.TrackedProject) error {
	return r.write(ctx, keyTracked, tracked)
}

func (r *RedisStore) Prompts(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := r.read(ctx, keyPrompts, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *RedisStore) SetPrompts(ctx context.Context, prompts []models.Prompt) error {
	return r.write(ctx, keyPrompts, prompts)
}

func (r *RedisStore) read(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
