package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// DefaultRedisPrefix is prepended to the namespace to form the hash key.
const DefaultRedisPrefix = "fireflow:prefs:"

// RedisStore keeps a namespace in one Redis hash. Fields are "<kind>:<key>".
// Change signals are local to the process.
type RedisStore struct {
	name     string
	client   redis.Cmdable
	hash     string
	notifier *notify.Notifier
	log      logging.Logger
}

func NewRedisStore(name string, client redis.Cmdable, prefix string, n *notify.Notifier, log logging.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if log == nil {
		log = logging.Nop()
	}
	return &RedisStore{
		name:     name,
		client:   client,
		hash:     prefix + name,
		notifier: n,
		log:      log.With("component", "kvstore", "namespace", name, "backend", "redis"),
	}
}

// DialRedis connects and pings.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func field(kind Kind, key string) string {
	return string(kind) + ":" + key
}

func (s *RedisStore) Name() string { return s.name }

func (s *RedisStore) fail(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, "preference store failure", "op", op, "error", err)
	return common.Disk(s.name+"."+op, err)
}

func (s *RedisStore) Contains(ctx context.Context, kind Kind, key string) (bool, error) {
	ok, err := s.client.HExists(ctx, s.hash, field(kind, key)).Result()
	if err != nil {
		return false, s.fail(ctx, "contains", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	raw, err := s.client.HGet(ctx, s.hash, field(kind, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s %s %q: %w", s.name, kind, key, common.ErrPreferenceNotFound)
	}
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, kind Kind, key string, raw []byte) error {
	if err := s.client.HSet(context.WithoutCancel(ctx), s.hash, field(kind, key), raw).Err(); err != nil {
		return s.fail(ctx, "set", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, kind Kind, key string) error {
	if err := s.client.HDel(context.WithoutCancel(ctx), s.hash, field(kind, key)).Err(); err != nil {
		return s.fail(ctx, "remove", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *RedisStore) RemoveAll(ctx context.Context) error {
	if err := s.client.Del(context.WithoutCancel(ctx), s.hash).Err(); err != nil {
		return s.fail(ctx, "remove_all", err)
	}
	s.notifier.Publish(notify.PreferencesTopic(s.name))
	return nil
}

func (s *RedisStore) Changes(ctx context.Context) <-chan struct{} {
	return s.notifier.Subscribe(ctx, notify.PreferencesTopic(s.name))
}
