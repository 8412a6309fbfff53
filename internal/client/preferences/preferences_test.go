package preferences

import (
	"context"
	"database/sql"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fireflow/internal/client/database"
	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func memStores() *Stores {
	n := notify.New()
	return NewStores(
		kvstore.NewMemoryStore(SecuredName, n),
		kvstore.NewMemoryStore(StandardName, n),
		kvstore.NewMemoryStore(DevelopmentName, n),
	)
}

func first[T any](t *testing.T, ch <-chan kvstore.Result[T]) kvstore.Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "stream closed")
		return r
	case <-time.After(time.Second):
		t.Fatal("no element")
	}
	return kvstore.Result[T]{}
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(string(tier))
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	got, err := ParseTier(" SECURED ")
	require.NoError(t, err)
	assert.Equal(t, Secured, got)

	_, err = ParseTier("cloud")
	require.ErrorIs(t, err, ErrUnknownTier)
}

func TestStores_MemoryNeverDegraded(t *testing.T) {
	assert.False(t, memStores().SecuredDegraded())
}

func TestStores_UnknownTier(t *testing.T) {
	stores := memStores()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := stores.For(Tier("cloud"))
	require.ErrorIs(t, err, ErrUnknownTier)

	require.ErrorIs(t, NewSaveRouter(stores).Bool(ctx, "cloud", "k", true), ErrUnknownTier)
	require.ErrorIs(t, NewRemoveRouter(stores).All(ctx, "cloud"), ErrUnknownTier)
	require.ErrorIs(t, first(t, NewGetRouter(stores).String(ctx, "cloud", "k")).Err, ErrUnknownTier)
	require.ErrorIs(t, first(t, NewContainsRouter(stores).Int(ctx, "cloud", "k")).Err, ErrUnknownTier)
}

func TestRouters_StandardVisibleSecuredNotFound(t *testing.T) {
	stores := memStores()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, NewSaveRouter(stores).Bool(ctx, Standard, "onboarded", true))

	got := first(t, NewGetRouter(stores).Bool(ctx, Standard, "onboarded"))
	require.NoError(t, got.Err)
	assert.True(t, got.Value)

	missing := first(t, NewGetRouter(stores).Bool(ctx, Secured, "onboarded"))
	require.ErrorIs(t, missing.Err, common.ErrPreferenceNotFound)

	has := first(t, NewContainsRouter(stores).Bool(ctx, Development, "onboarded"))
	require.NoError(t, has.Err)
	assert.False(t, has.Value)
}

func TestRouters_TierIsolationAllKinds(t *testing.T) {
	stores := memStores()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	save := NewSaveRouter(stores)
	get := NewGetRouter(stores)
	contains := NewContainsRouter(stores)

	require.NoError(t, save.Int(ctx, Secured, "n", 1))
	require.NoError(t, save.Int(ctx, Standard, "n", 2))
	require.NoError(t, save.Long(ctx, Development, "l", 3))
	require.NoError(t, save.Float(ctx, Standard, "f", 1.5))
	require.NoError(t, save.String(ctx, Secured, "s", "secret"))

	assert.Equal(t, int32(1), first(t, get.Int(ctx, Secured, "n")).Value)
	assert.Equal(t, int32(2), first(t, get.Int(ctx, Standard, "n")).Value)
	assert.Equal(t, int64(3), first(t, get.Long(ctx, Development, "l")).Value)
	assert.Equal(t, float32(1.5), first(t, get.Float(ctx, Standard, "f")).Value)
	assert.Equal(t, "secret", first(t, get.String(ctx, Secured, "s")).Value)

	assert.True(t, first(t, contains.Long(ctx, Development, "l")).Value)
	assert.False(t, first(t, contains.Long(ctx, Standard, "l")).Value)
	assert.True(t, first(t, contains.Float(ctx, Standard, "f")).Value)
	assert.False(t, first(t, contains.String(ctx, Standard, "s")).Value)
	assert.False(t, first(t, contains.Int(ctx, Development, "n")).Value)
}

func TestRemoveRouter_IdempotentAndScoped(t *testing.T) {
	stores := memStores()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	save := NewSaveRouter(stores)
	rm := NewRemoveRouter(stores)
	contains := NewContainsRouter(stores)

	require.NoError(t, save.String(ctx, Standard, "a", "x"))
	require.NoError(t, save.String(ctx, Development, "a", "y"))

	require.NoError(t, rm.String(ctx, Standard, "a"))
	require.NoError(t, rm.String(ctx, Standard, "a"))
	require.NoError(t, rm.Bool(ctx, Standard, "never"))
	require.NoError(t, rm.Int(ctx, Standard, "never"))
	require.NoError(t, rm.Long(ctx, Standard, "never"))
	require.NoError(t, rm.Float(ctx, Standard, "never"))

	assert.False(t, first(t, contains.String(ctx, Standard, "a")).Value)
	assert.True(t, first(t, contains.String(ctx, Development, "a")).Value)

	require.NoError(t, rm.All(ctx, Development))
	require.NoError(t, rm.All(ctx, Development))
	assert.False(t, first(t, contains.String(ctx, Development, "a")).Value)
}

func TestGetRouter_StreamFollowsWrites(t *testing.T) {
	stores := memStores()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := NewGetRouter(stores).String(ctx, Standard, "theme")
	require.ErrorIs(t, first(t, stream).Err, common.ErrPreferenceNotFound)

	require.NoError(t, NewSaveRouter(stores).String(ctx, Standard, "theme", "dark"))
	assert.Eventually(t, func() bool {
		select {
		case r := <-stream:
			return r.Err == nil && r.Value == "dark"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestBuild_SQLiteWithPassphrase(t *testing.T) {
	db := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := Build(ctx, BuildConfig{KeyAlias: "fireflow_master_key"}, Deps{
		DB:         db,
		Passphrase: []byte("pw"),
		Notifier:   notify.New(),
	})
	require.NoError(t, err)

	secured, err := stores.For(Secured)
	require.NoError(t, err)
	assert.Equal(t, SecuredName, secured.Name())
	assert.False(t, secured.(interface{ Degraded() bool }).Degraded())
	assert.False(t, stores.SecuredDegraded())

	require.NoError(t, NewSaveRouter(stores).String(ctx, Secured, "token", "t0k"))
	require.NoError(t, NewSaveRouter(stores).Bool(ctx, Standard, "onboarded", true))

	got := first(t, NewGetRouter(stores).String(ctx, Secured, "token"))
	require.NoError(t, got.Err)
	assert.Equal(t, "t0k", got.Value)

	var plain int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM preferences WHERE value = 't0k'`).Scan(&plain))
	assert.Zero(t, plain, "secured values are sealed at rest")

	// Same database, fresh process: values survive.
	again, err := Build(ctx, BuildConfig{KeyAlias: "fireflow_master_key"}, Deps{DB: db, Passphrase: []byte("pw")})
	require.NoError(t, err)
	got = first(t, NewGetRouter(again).String(ctx, Secured, "token"))
	require.NoError(t, got.Err)
	assert.Equal(t, "t0k", got.Value)
}

func TestBuild_NoPassphraseDegradesSecured(t *testing.T) {
	db := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := Build(ctx, BuildConfig{KeyAlias: "k"}, Deps{DB: db})
	require.NoError(t, err)

	secured, err := stores.For(Secured)
	require.NoError(t, err)
	assert.True(t, secured.(interface{ Degraded() bool }).Degraded())
	assert.True(t, stores.SecuredDegraded())

	require.NoError(t, NewSaveRouter(stores).Long(ctx, Secured, "n", 9))
	got := first(t, NewGetRouter(stores).Long(ctx, Secured, "n"))
	require.NoError(t, got.Err)
	assert.Equal(t, int64(9), got.Value)
}

func TestBuild_DevelopmentBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tests := []struct {
		name    string
		backend string
		redis   redis.Cmdable
		wantErr bool
	}{
		{name: "default", backend: ""},
		{name: "sqlite", backend: BackendSQLite},
		{name: "memory", backend: BackendMemory},
		{name: "redis", backend: BackendRedis, redis: client},
		{name: "redis without client", backend: BackendRedis, wantErr: true},
		{name: "unknown", backend: "etcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stores, err := Build(ctx, BuildConfig{DevelopmentBackend: tt.backend, RedisPrefix: "t:"},
				Deps{DB: setupDB(t), Redis: tt.redis})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			require.NoError(t, NewSaveRouter(stores).String(ctx, Development, "endpoint", "http://dev"))
			got := first(t, NewGetRouter(stores).String(ctx, Development, "endpoint"))
			require.NoError(t, got.Err)
			assert.Equal(t, "http://dev", got.Value)
		})
	}
	assert.Equal(t, "http://dev", mr.HGet("t:"+DevelopmentName, "string:endpoint"))
}

func TestBuild_RequiresDB(t *testing.T) {
	_, err := Build(context.Background(), BuildConfig{}, Deps{})
	require.Error(t, err)
}
