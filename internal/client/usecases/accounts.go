package usecases

import (
	"context"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/client/services"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

type GetCurrentAccount struct{ accounts services.AccountService }

func NewGetCurrentAccount(accounts services.AccountService) *GetCurrentAccount {
	return &GetCurrentAccount{accounts: accounts}
}

func (u *GetCurrentAccount) Invoke(ctx context.Context) (models.Account, error) {
	return u.accounts.GetCurrent(ctx)
}

func (u *GetCurrentAccount) Observe(ctx context.Context) <-chan notify.Result[models.Account] {
	return u.accounts.ObserveCurrent(ctx)
}

type SaveAccount struct{ accounts services.AccountService }

func NewSaveAccount(accounts services.AccountService) *SaveAccount {
	return &SaveAccount{accounts: accounts}
}

func (u *SaveAccount) Invoke(ctx context.Context, a models.Account) (int64, error) {
	return u.accounts.Save(ctx, a)
}

type UpdateCurrentAccount struct{ accounts services.AccountService }

func NewUpdateCurrentAccount(accounts services.AccountService) *UpdateCurrentAccount {
	return &UpdateCurrentAccount{accounts: accounts}
}

func (u *UpdateCurrentAccount) Invoke(ctx context.Context, patches ...models.Patch) error {
	return u.accounts.UpdateCurrent(ctx, patches...)
}

type RemoveStaleAccounts struct{ accounts services.AccountService }

func NewRemoveStaleAccounts(accounts services.AccountService) *RemoveStaleAccounts {
	return &RemoveStaleAccounts{accounts: accounts}
}

func (u *RemoveStaleAccounts) Invoke(ctx context.Context) error {
	return u.accounts.RemoveStale(ctx)
}

type GetAccountByState struct{ accounts services.AccountService }

func NewGetAccountByState(accounts services.AccountService) *GetAccountByState {
	return &GetAccountByState{accounts: accounts}
}

func (u *GetAccountByState) Invoke(ctx context.Context, state string) (models.Account, error) {
	return u.accounts.GetByState(ctx, state)
}

type GetAccounts struct{ accounts services.AccountService }

func NewGetAccounts(accounts services.AccountService) *GetAccounts {
	return &GetAccounts{accounts: accounts}
}

func (u *GetAccounts) Invoke(ctx context.Context) ([]models.Account, error) {
	return u.accounts.GetAll(ctx)
}

func (u *GetAccounts) Observe(ctx context.Context) <-chan notify.Result[[]models.Account] {
	return u.accounts.ObserveAll(ctx)
}
