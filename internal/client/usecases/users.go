package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/client/services"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

type GetCurrentUser struct{ users services.UserService }

func NewGetCurrentUser(users services.UserService) *GetCurrentUser {
	return &GetCurrentUser{users: users}
}

func (u *GetCurrentUser) Invoke(ctx context.Context) (models.User, error) {
	return u.users.GetCurrent(ctx)
}

// Observe emits the current user now and after every change to the users
// table.
func (u *GetCurrentUser) Observe(ctx context.Context) <-chan notify.Result[models.User] {
	return u.users.ObserveCurrent(ctx)
}

// GetCurrentUserAccessToken returns "" when there is no current user, when
// the current user is local, or when no credential is attached.
type GetCurrentUserAccessToken struct{ users services.UserService }

func NewGetCurrentUserAccessToken(users services.UserService) *GetCurrentUserAccessToken {
	return &GetCurrentUserAccessToken{users: users}
}

func (u *GetCurrentUserAccessToken) Invoke(ctx context.Context) (string, error) {
	token, err := u.users.CurrentAccessToken(ctx)
	if errors.Is(err, common.ErrNoCurrentUser) {
		return "", nil
	}
	return token, err
}

type SaveUser struct{ users services.UserService }

func NewSaveUser(users services.UserService) *SaveUser {
	return &SaveUser{users: users}
}

func (u *SaveUser) Invoke(ctx context.Context, user models.User) (int64, error) {
	return u.users.Save(ctx, user)
}

type UpdateCurrentUser struct{ users services.UserService }

func NewUpdateCurrentUser(users services.UserService) *UpdateCurrentUser {
	return &UpdateCurrentUser{users: users}
}

func (u *UpdateCurrentUser) Invoke(ctx context.Context, patches ...models.Patch) error {
	return u.users.UpdateCurrent(ctx, patches...)
}

type RemoveStaleUsers struct{ users services.UserService }

func NewRemoveStaleUsers(users services.UserService) *RemoveStaleUsers {
	return &RemoveStaleUsers{users: users}
}

func (u *RemoveStaleUsers) Invoke(ctx context.Context) error {
	return u.users.RemoveStale(ctx)
}

type LogOut struct{ users services.UserService }

func NewLogOut(users services.UserService) *LogOut {
	return &LogOut{users: users}
}

func (u *LogOut) Invoke(ctx context.Context) error {
	return u.users.LogOut(ctx)
}

type DeleteUser struct{ users services.UserService }

func NewDeleteUser(users services.UserService) *DeleteUser {
	return &DeleteUser{users: users}
}

func (u *DeleteUser) Invoke(ctx context.Context, id int64) error {
	return u.users.Delete(ctx, id)
}

type SetNewCurrentUser struct{ users services.UserService }

func NewSetNewCurrentUser(users services.UserService) *SetNewCurrentUser {
	return &SetNewCurrentUser{users: users}
}

func (u *SetNewCurrentUser) Invoke(ctx context.Context, id int64) error {
	return u.users.SetCurrent(ctx, id)
}

type GetUserByState struct{ users services.UserService }

func NewGetUserByState(users services.UserService) *GetUserByState {
	return &GetUserByState{users: users}
}

func (u *GetUserByState) Invoke(ctx context.Context, state string) (models.User, error) {
	return u.users.GetByState(ctx, state)
}

type GetUsers struct{ users services.UserService }

func NewGetUsers(users services.UserService) *GetUsers {
	return &GetUsers{users: users}
}

func (u *GetUsers) Invoke(ctx context.Context) ([]models.User, error) {
	return u.users.GetAll(ctx)
}

func (u *GetUsers) Observe(ctx context.Context) <-chan notify.Result[[]models.User] {
	return u.users.ObserveAll(ctx)
}

// BeginUserLogin records a pending login: a non-current row that carries a
// fresh state token and the client credentials, waiting for the redirect
// that completes it. It returns the row id and the token.
type BeginUserLogin struct{ users services.UserService }

func NewBeginUserLogin(users services.UserService) *BeginUserLogin {
	return &BeginUserLogin{users: users}
}

func (u *BeginUserLogin) Invoke(ctx context.Context, serverAddress, clientID, clientSecret string) (int64, string, error) {
	state, err := NewStateToken()
	if err != nil {
		return 0, "", err
	}
	id, err := u.users.Save(ctx, models.User{
		ServerAddress: serverAddress,
		State:         state,
		Auth:          models.AuthenticationFromCredentials(models.Credentials{ClientID: clientID, ClientSecret: clientSecret}),
	})
	if err != nil {
		return 0, "", err
	}
	return id, state, nil
}

// GetCurrentUserTokenExpiry reads the exp claim of the current access token.
// ok is false when there is no token or it carries no expiry.
type GetCurrentUserTokenExpiry struct{ users services.UserService }

func NewGetCurrentUserTokenExpiry(users services.UserService) *GetCurrentUserTokenExpiry {
	return &GetCurrentUserTokenExpiry{users: users}
}

func (u *GetCurrentUserTokenExpiry) Invoke(ctx context.Context) (exp time.Time, ok bool, err error) {
	return u.users.CurrentTokenExpiry(ctx)
}
