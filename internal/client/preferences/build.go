package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/entries"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fireflow/internal/client/securestore"
	"github.com/dmitrijs2005/fireflow/internal/cryptox"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// Development backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Backends lists the development backends.
func Backends() []string {
	return []string{BackendSQLite, BackendMemory, BackendRedis}
}

type BuildConfig struct {
	KeyAlias           string
	Cipher             cryptox.Cipher
	DevelopmentBackend string
	RedisPrefix        string
}

type Deps struct {
	DB         *sql.DB
	Passphrase []byte
	// Redis is required by the redis development backend only.
	Redis    redis.Cmdable
	Notifier *notify.Notifier
	Log      logging.Logger
}

// Build wires the three tiers. The secured tier is the encrypted namespace
// with a plain SQLite fallback; the standard tier is plain SQLite; the
// development tier uses the configured backend.
func Build(ctx context.Context, cfg BuildConfig, deps Deps) (*Stores, error) {
	if deps.DB == nil {
		return nil, errors.New("preferences: database required")
	}
	log := deps.Log
	if log == nil {
		log = logging.Nop()
	}

	repo := entries.NewSQLiteRepository(deps.DB)
	open := func(name string) kvstore.Store {
		return kvstore.NewSQLiteStore(name, repo, deps.Notifier, log)
	}

	provider := securestore.NewPassphraseProvider(metadata.NewSQLiteRepository(deps.DB), deps.Passphrase, open)
	secured, err := securestore.NewFallbackStore(ctx, provider,
		securestore.KeySpec{Alias: cfg.KeyAlias, Cipher: cfg.Cipher},
		SecuredName, open(SecuredFallbackName), log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up secured preferences: %w", err)
	}

	var development kvstore.Store
	switch cfg.DevelopmentBackend {
	case "", BackendSQLite:
		development = open(DevelopmentName)
	case BackendMemory:
		development = kvstore.NewMemoryStore(DevelopmentName, deps.Notifier)
	case BackendRedis:
		if deps.Redis == nil {
			return nil, errors.New("preferences: redis backend selected without a redis client")
		}
		development = kvstore.NewRedisStore(DevelopmentName, deps.Redis, cfg.RedisPrefix, deps.Notifier, log)
	default:
		return nil, fmt.Errorf("preferences: unknown development backend %q", cfg.DevelopmentBackend)
	}

	return NewStores(secured, open(StandardName), development), nil
}
