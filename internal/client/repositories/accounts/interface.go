package accounts

import (
	"context"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// Repository is the accounts table.
type Repository interface {
	// GetCurrent returns the newest current account or common.ErrNoCurrentAccount.
	GetCurrent(ctx context.Context) (models.Account, error)
	ObserveCurrent(ctx context.Context) <-chan notify.Result[models.Account]

	// GetByState returns the account of a pending login or common.ErrNotFoundByState.
	GetByState(ctx context.Context, state string) (models.Account, error)
	GetByID(ctx context.Context, id int64) (models.Account, error)

	GetAll(ctx context.Context) ([]models.Account, error)
	ObserveAll(ctx context.Context) <-chan notify.Result[[]models.Account]

	Insert(ctx context.Context, a models.Account) (int64, error)
	// Update replaces every column of the row with id a.ID.
	Update(ctx context.Context, a models.Account) (int64, error)

	PruneAbandonedWithoutToken(ctx context.Context) (int64, error)
	PruneAbandonedWithTokenNoClientCredentials(ctx context.Context) (int64, error)

	ClearCurrent(ctx context.Context) (int64, error)
	SetCurrent(ctx context.Context, id int64) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
}
