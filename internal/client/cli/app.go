package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/fireflow/internal/client/config"
	"github.com/dmitrijs2005/fireflow/internal/client/database"
	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/client/preferences"
	"github.com/dmitrijs2005/fireflow/internal/client/services"
	"github.com/dmitrijs2005/fireflow/internal/client/usecases"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/cryptox"
	"github.com/dmitrijs2005/fireflow/internal/filex"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// App owns every process-wide component of one CLI run.
type App struct {
	config *config.Config
	db     *sql.DB
	redis  *redis.Client
	log    logging.Logger
	stores *preferences.Stores
	uc     *usecases.UseCases
}

// NewApp opens the database, builds the preference tiers and the services
// over it. passphrase is wiped once the secured tier is set up.
func NewApp(ctx context.Context, c *config.Config, passphrase []byte, logOut io.Writer) (*App, error) {
	defer common.WipeByteArray(passphrase)

	log, err := logging.New(logOut, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.ParseCipher(c.Cipher)
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := database.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}
	a := &App{config: c, db: db, log: log}

	deps := preferences.Deps{
		DB:         db,
		Passphrase: passphrase,
		Notifier:   notify.New(),
		Log:        log,
	}
	if c.DevelopmentBackend == preferences.BackendRedis {
		a.redis, err = kvstore.DialRedis(ctx, c.RedisAddr)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		deps.Redis = a.redis
	}

	a.stores, err = preferences.Build(ctx, preferences.BuildConfig{
		KeyAlias:           c.KeyAlias,
		Cipher:             cipher,
		DevelopmentBackend: c.DevelopmentBackend,
		RedisPrefix:        c.RedisPrefix,
	}, deps)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.uc = usecases.New(
		services.NewAccountService(db, deps.Notifier, log),
		services.NewUserService(db, deps.Notifier, log),
		a.stores,
	)
	return a, nil
}

// Close releases the database and the redis client.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// opContext bounds one storage operation by the configured timeout.
func (a *App) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.OperationTimeout)
}
