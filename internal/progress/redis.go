package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/pathwise/internal/store"
)

const defaultKeyPrefix = "pathwise"

// RedisTracker mirrors progress into Redis so other processes can read
// completions without opening the SQLite file. Each goal is a hash; the set
// of completed goals is kept alongside.
type RedisTracker struct {
	client *redis.Client
	prefix string
}

// NewRedisTracker connects to url and pings it.
func NewRedisTracker(ctx context.Context, url string) (*RedisTracker, error) {
	if url == "" {
		return nil, errors.New("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisTrackerFromClient(client, defaultKeyPrefix), nil
}

// NewRedisTrackerFromClient uses an existing client.
func NewRedisTrackerFromClient(client *redis.Client, prefix string) *RedisTracker {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisTracker{client: client, prefix: prefix}
}

func (t *RedisTracker) goalKey(goalID string) string {
	return fmt.Sprintf("%s:progress:%s", t.prefix, goalID)
}

func (t *RedisTracker) completedKey() string {
	return t.prefix + ":completed"
}

func (t *RedisTracker) Record(ctx context.Context, goalID string, percentage int, status string) error {
	key := t.goalKey(goalID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"percentage", percentage,
			"status", status,
			"updated_at", time.Now().UTC().Format(time.RFC3339),
		)
		if status == store.StatusCompleted {
			pipe.HIncrBy(ctx, key, "completions", 1)
			pipe.SAdd(ctx, t.completedKey(), goalID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record %s: %w", goalID, err)
	}
	return nil
}

// Get returns the mirrored row for goalID, or nil when there is none.
func (t *RedisTracker) Get(ctx context.Context, goalID string) (*store.GoalProgress, error) {
	vals, err := t.client.HGetAll(ctx, t.goalKey(goalID)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	p := &store.GoalProgress{GoalID: goalID, Status: vals["status"]}
	p.Percentage, _ = strconv.Atoi(vals["percentage"])
	p.Completions, _ = strconv.Atoi(vals["completions"])
	if ts, err := time.Parse(time.RFC3339, vals["updated_at"]); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}

// Completed returns the ids of every completed goal.
func (t *RedisTracker) Completed(ctx context.Context) ([]string, error) {
	return t.client.SMembers(ctx, t.completedKey()).Result()
}

// Reset removes the mirror for goalID, or for every goal when goalID is
// empty.
func (t *RedisTracker) Reset(ctx context.Context, goalID string) error {
	if goalID != "" {
		_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, t.goalKey(goalID))
			pipe.SRem(ctx, t.completedKey(), goalID)
			return nil
		})
		return err
	}
	var cursor uint64
	for {
		keys, next, err := t.client.Scan(ctx, cursor, t.prefix+":progress:*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := t.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return t.client.Del(ctx, t.completedKey()).Err()
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
