package users

import (
	"context"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

// Repository is the users table.
type Repository interface {
	GetCurrent(ctx context.Context) (models.User, error)
	ObserveCurrent(ctx context.Context) <-chan notify.Result[models.User]
	GetByState(ctx context.Context, state string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)

	// GetAll lists users ordered by identifier.
	GetAll(ctx context.Context) ([]models.User, error)
	ObserveAll(ctx context.Context) <-chan notify.Result[[]models.User]

	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	ExistsByIdentifierAndServer(ctx context.Context, identifier, serverAddress string) (bool, error)
	ExistsByEmailAndServer(ctx context.Context, email, serverAddress string) (bool, error)

	Insert(ctx context.Context, u models.User) (int64, error)
	Update(ctx context.Context, u models.User) (int64, error)

	PruneAbandonedWithoutToken(ctx context.Context) (int64, error)
	PruneAbandonedWithTokenNoClientCredentials(ctx context.Context) (int64, error)
	PruneTokenWithoutIdentifier(ctx context.Context) (int64, error)

	ClearCurrent(ctx context.Context) (int64, error)
	SetCurrent(ctx context.Context, id int64) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
}
