package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses a redis:// URL and pings it.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisStore shares snapshots between console replicas.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "admin:store:", ttl: ttl}
}

func (r *RedisStore) key(view View) string {
	return r.prefix + string(view)
}

func (r *RedisStore) Load(ctx context.Context, view View) (Snapshot, bool, error) {
	val, err := r.rdb.Get(ctx, r.key(view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var s Snapshot
	if err := json.Unmarshal(val, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", view, err)
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, view View, s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(view), b, r.ttl).Err()
}

// Apply is load-apply-save without a transaction: concurrent mutations on the
// same view are last-writer-wins, same as the backend calls themselves.
func (r *RedisStore) Apply(ctx context.Context, view View, m Mutation) (Snapshot, error) {
	s, _, err := r.Load(ctx, view)
	if err != nil {
		return Snapshot{}, err
	}
	next := Apply(s, m)
	if err := r.Save(ctx, view, next); err != nil {
		return Snapshot{}, err
	}
	return next, nil
}
