package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fireflow/internal/client/database"
	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/users"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/dbx"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---- fakes ----

type fakeAccountRepo struct {
	accounts.Repository

	WithoutTokenErr error
	PATErr          error
	PanicIn         string
}

func (f *fakeAccountRepo) PruneAbandonedWithoutToken(context.Context) (int64, error) {
	if f.PanicIn == "without_token" {
		panic("boom")
	}
	return 0, f.WithoutTokenErr
}

func (f *fakeAccountRepo) PruneAbandonedWithTokenNoClientCredentials(context.Context) (int64, error) {
	if f.PanicIn == "pat" {
		panic("boom")
	}
	return 0, f.PATErr
}

type fakeUserRepo struct {
	users.Repository

	WithoutTokenErr      error
	PATErr               error
	WithoutIdentifierErr error
}

func (f *fakeUserRepo) PruneAbandonedWithoutToken(context.Context) (int64, error) {
	return 0, f.WithoutTokenErr
}

func (f *fakeUserRepo) PruneAbandonedWithTokenNoClientCredentials(context.Context) (int64, error) {
	return 0, f.PATErr
}

func (f *fakeUserRepo) PruneTokenWithoutIdentifier(context.Context) (int64, error) {
	return 0, f.WithoutIdentifierErr
}

func accountServiceWith(repo accounts.Repository) *accountService {
	return &accountService{log: logging.Nop(), newRepo: func(dbx.DBTX) accounts.Repository { return repo }}
}

func userServiceWith(repo users.Repository) *userService {
	return &userService{log: logging.Nop(), newRepo: func(dbx.DBTX) users.Repository { return repo }}
}

// ---- RemoveStale ----

func TestAccountRemoveStale_FailurePrecedence(t *testing.T) {
	errA := common.Disk("without_token", errors.New("a"))
	errB := common.Disk("pat", errors.New("b"))

	tests := []struct {
		name string
		repo *fakeAccountRepo
		want error
	}{
		{name: "both succeed", repo: &fakeAccountRepo{}, want: nil},
		{name: "both fail", repo: &fakeAccountRepo{WithoutTokenErr: errA, PATErr: errB}, want: errA},
		{name: "only first fails", repo: &fakeAccountRepo{WithoutTokenErr: errA}, want: errA},
		{name: "only second fails", repo: &fakeAccountRepo{PATErr: errB}, want: errB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				err := accountServiceWith(tt.repo).RemoveStale(context.Background())
				if tt.want == nil {
					require.NoError(t, err)
					continue
				}
				require.Same(t, tt.want, err)
			}
		})
	}
}

func TestUserRemoveStale_FailurePrecedence(t *testing.T) {
	e1 := errors.New("one")
	e2 := errors.New("two")
	e3 := errors.New("three")

	tests := []struct {
		name string
		repo *fakeUserRepo
		want error
	}{
		{name: "all succeed", repo: &fakeUserRepo{}},
		{name: "all fail", repo: &fakeUserRepo{WithoutTokenErr: e1, PATErr: e2, WithoutIdentifierErr: e3}, want: e1},
		{name: "second and third fail", repo: &fakeUserRepo{PATErr: e2, WithoutIdentifierErr: e3}, want: e2},
		{name: "first and third fail", repo: &fakeUserRepo{WithoutTokenErr: e1, WithoutIdentifierErr: e3}, want: e1},
		{name: "only third fails", repo: &fakeUserRepo{WithoutIdentifierErr: e3}, want: e3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := userServiceWith(tt.repo).RemoveStale(context.Background())
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRemoveStale_PanicIsFatalOS(t *testing.T) {
	for _, where := range []string{"without_token", "pat"} {
		t.Run(where, func(t *testing.T) {
			err := accountServiceWith(&fakeAccountRepo{PanicIn: where}).RemoveStale(context.Background())
			require.Error(t, err)
			assert.True(t, common.IsFatal(err, common.FatalOS))
			assert.Contains(t, err.Error(), "panic: boom")
		})
	}
}

func TestRemoveStale_LogsRunSummary(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "text", "info")
	require.NoError(t, err)

	svc := accountServiceWith(&fakeAccountRepo{})
	svc.log = log
	require.NoError(t, svc.RemoveStale(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "stale rows removed")
	assert.Contains(t, out, "run_id=")
	assert.Contains(t, out, "table=accounts")
}

func TestAccountRemoveStale_ClearsOnlyAbandonedRows(t *testing.T) {
	db := setupDB(t)
	svc := NewAccountService(db, nil, nil)
	ctx := context.Background()

	pending, err := svc.Save(ctx, models.Account{ServerAddress: "https://fw", State: "abc", Auth: models.OAuth{ClientID: "c", ClientSecret: "s"}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, models.Account{ServerAddress: "https://fw", State: "def", Auth: models.PAT{AccessToken: "t"}})
	require.NoError(t, err)
	done, err := svc.Save(ctx, models.Account{ServerAddress: "https://fw", Auth: models.PAT{AccessToken: "t"}, IsCurrent: true})
	require.NoError(t, err)

	got, err := svc.GetByState(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, pending, got.ID)

	require.NoError(t, svc.RemoveStale(ctx))

	_, err = svc.GetByState(ctx, "abc")
	require.ErrorIs(t, err, common.ErrNotFoundByState)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, done, all[0].ID)

	require.NoError(t, svc.RemoveStale(ctx), "second run finds nothing and still succeeds")
}

func TestUserRemoveStale_ThirdPredicate(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "a@fw", Auth: models.PAT{AccessToken: "t"}})
	require.NoError(t, err)
	keep, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "b@fw", Auth: models.PAT{AccessToken: "t"}, Identifier: "1"})
	require.NoError(t, err)
	local, err := svc.Save(ctx, models.User{Identifier: "local"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveStale(ctx))

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	var ids []int64
	for _, u := range all {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []int64{keep, local}, ids)
}

// ---- current row ----

func countCurrent(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE is_current = 1`).Scan(&n))
	return n
}

func TestAccountCurrentRow_ExclusiveAcrossSequences(t *testing.T) {
	db := setupDB(t)
	svc := NewAccountService(db, notify.New(), nil)
	ctx := context.Background()

	a, err := svc.Save(ctx, models.Account{ServerAddress: "a", IsCurrent: true})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.Account{ServerAddress: "b", IsCurrent: true})
	require.NoError(t, err)
	assert.Equal(t, 1, countCurrent(t, db, "accounts"))

	cur, err := svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, cur.ID)

	require.NoError(t, svc.SetCurrent(ctx, a))
	assert.Equal(t, 1, countCurrent(t, db, "accounts"))

	require.NoError(t, svc.UpdateCurrent(ctx, models.SetEmail{Value: "me@a"}))
	assert.Equal(t, 1, countCurrent(t, db, "accounts"))

	_, err = svc.Save(ctx, models.Account{ServerAddress: "c", State: "pending"})
	require.NoError(t, err)
	cur, err = svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, cur.ID, "a pending login does not steal the current row")
	assert.Equal(t, "me@a", cur.Email)

	require.ErrorIs(t, svc.SetCurrent(ctx, 999), common.ErrNullAccount)
	assert.Equal(t, 1, countCurrent(t, db, "accounts"))

	require.NoError(t, svc.UpdateCurrent(ctx, models.SetID{Value: b}))
	assert.Equal(t, 1, countCurrent(t, db, "accounts"), "moving the current record demotes its old row")
	cur, err = svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, cur.ID)
	assert.Equal(t, "me@a", cur.Email)

	require.ErrorIs(t, svc.UpdateCurrent(ctx, models.SetID{Value: 999}), common.ErrNullAccount)
	cur, err = svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, cur.ID, "a failed move keeps the current row")
}

func TestUserCurrentRow_Exclusive(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	for _, email := range []string{"a@fw", "b@fw", "c@fw"} {
		_, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: email, IsCurrent: true})
		require.NoError(t, err)
		assert.Equal(t, 1, countCurrent(t, db, "users"))
	}

	cur, err := svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c@fw", cur.Email)

	require.ErrorIs(t, svc.SetCurrent(ctx, 999), common.ErrNullUser)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	var first int64
	for _, u := range all {
		if u.Email == "a@fw" {
			first = u.ID
		}
	}
	require.NotZero(t, first)

	require.NoError(t, svc.UpdateCurrent(ctx, models.SetID{Value: first}))
	assert.Equal(t, 1, countCurrent(t, db, "users"))
	cur, err = svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cur.ID)
	assert.Equal(t, "c@fw", cur.Email)
}

func TestUserUpdateCurrent_LocalTakesOnlyCurrentFlag(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	id, err := svc.Save(ctx, models.User{IsCurrent: true})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCurrent(ctx,
		models.SetServerAddress{Value: "https://x"},
		models.SetEmail{Value: "e@x"},
		models.SetRole{Value: "owner"},
	))
	cur, err := svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, cur.ID)
	assert.True(t, cur.IsLocal())
	assert.Empty(t, cur.Email)
	assert.Empty(t, cur.Role)

	require.NoError(t, svc.UpdateCurrent(ctx, models.SetCurrent{Value: false}))
	_, err = svc.GetCurrent(ctx)
	require.ErrorIs(t, err, common.ErrNoCurrentUser)
}

// ---- UpdateCurrent ----

func TestUpdateCurrent_NoCurrentReturnsReadError(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := NewAccountService(db, nil, nil).UpdateCurrent(ctx, models.SetEmail{Value: "x"})
	require.ErrorIs(t, err, common.ErrNoCurrentAccount)

	err = NewUserService(db, nil, nil).UpdateCurrent(ctx, models.SetEmail{Value: "x"})
	require.ErrorIs(t, err, common.ErrNoCurrentUser)

	var n int
	require.NoError(t, db.QueryRow(`SELECT (SELECT COUNT(*) FROM accounts) + (SELECT COUNT(*) FROM users)`).Scan(&n))
	assert.Zero(t, n, "update must never create a row")
}

func TestUpdateCurrent_FoldsPatchesInOrder(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	id, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", State: "st", IsCurrent: true,
		Auth: models.OAuth{ClientID: "c", ClientSecret: "s"}})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCurrent(ctx,
		models.SetAuthentication{Value: models.OAuth{AccessToken: "at", ClientID: "c", ClientSecret: "s"}},
		models.SetState{Value: ""},
		models.SetRole{Value: "user"},
		models.SetRole{Value: "owner"},
		models.SetType{Value: "admin"},
		models.SetFireflyID{Value: "1"},
	))

	cur, err := svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, cur.ID)
	assert.Empty(t, cur.State)
	assert.Equal(t, "owner", cur.Role)
	assert.Equal(t, "admin", cur.Type)
	assert.Equal(t, "1", cur.FireflyID)
	assert.Equal(t, "at", cur.AccessToken())
}

func TestUpdateCurrent_SetIDToMissingRowIsNull(t *testing.T) {
	db := setupDB(t)
	svc := NewAccountService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.Account{ServerAddress: "a", IsCurrent: true})
	require.NoError(t, err)

	err = svc.UpdateCurrent(ctx, models.SetID{Value: 404})
	require.ErrorIs(t, err, common.ErrNullAccount)
}

func TestLogOut_DemotesCurrent(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "a@fw", IsCurrent: true})
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(ctx))
	_, err = svc.GetCurrent(ctx)
	require.ErrorIs(t, err, common.ErrNoCurrentUser)

	require.ErrorIs(t, svc.LogOut(ctx), common.ErrNoCurrentUser)
}

// ---- Save / Delete / lookups ----

func TestUserSave_DuplicateEmailOnServerIsConflict(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "me@fw"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "me@fw", IsCurrent: true})
	require.ErrorIs(t, err, common.ErrUserAlreadyExists)
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	_, err = svc.Save(ctx, models.User{ServerAddress: "https://other", Email: "me@fw"})
	require.NoError(t, err)

	_, err = svc.Save(ctx, models.User{Email: "me@fw"})
	require.NoError(t, err, "local users are not checked")
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	accSvc := NewAccountService(db, nil, nil)
	id, err := accSvc.Save(ctx, models.Account{ServerAddress: "a"})
	require.NoError(t, err)
	require.NoError(t, accSvc.Delete(ctx, id))
	require.ErrorIs(t, accSvc.Delete(ctx, id), common.ErrNullAccount)

	userSvc := NewUserService(db, nil, nil)
	uid, err := userSvc.Save(ctx, models.User{Identifier: "x"})
	require.NoError(t, err)
	require.NoError(t, userSvc.Delete(ctx, uid))
	require.ErrorIs(t, userSvc.Delete(ctx, uid), common.ErrNullUser)
}

func TestHasProfile(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.User{ServerAddress: "https://fw", Email: "a@fw", Identifier: "42"})
	require.NoError(t, err)

	ok, err := svc.HasProfile(ctx, "42", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasProfile(ctx, "42", "https://fw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasProfile(ctx, "42", "https://elsewhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ---- tokens ----

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "1"}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestCurrentAccessTokenAndExpiry(t *testing.T) {
	db := setupDB(t)
	svc := NewAccountService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.CurrentAccessToken(ctx)
	require.ErrorIs(t, err, common.ErrNoCurrentAccount)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	_, err = svc.Save(ctx, models.Account{ServerAddress: "a", IsCurrent: true, Auth: models.PAT{AccessToken: signedToken(t, exp)}})
	require.NoError(t, err)

	got, ok, err := svc.CurrentTokenExpiry(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestUserCurrentAccessToken_LocalIsEmpty(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, models.User{IsCurrent: true, Auth: models.PAT{AccessToken: "ignored"}})
	require.NoError(t, err)

	tok, err := svc.CurrentAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	_, ok, err := svc.CurrentTokenExpiry(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObserveCurrent_SeesSetCurrent(t *testing.T) {
	db := setupDB(t)
	svc := NewAccountService(db, notify.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := svc.Save(ctx, models.Account{ServerAddress: "a", IsCurrent: true})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.Account{ServerAddress: "b"})
	require.NoError(t, err)

	stream := svc.ObserveCurrent(ctx)
	first := <-stream
	require.NoError(t, first.Err)
	assert.Equal(t, a, first.Value.ID)

	require.NoError(t, svc.SetCurrent(ctx, b))
	assert.Eventually(t, func() bool {
		select {
		case r := <-stream:
			return r.Err == nil && r.Value.ID == b
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
