package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/users"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/dbx"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
	"github.com/dmitrijs2005/fireflow/internal/tokenx"
)

// UserService manages the users table. It follows AccountService and adds
// duplicate detection on Save and a third stale predicate.
type UserService interface {
	GetCurrent(ctx context.Context) (models.User, error)
	ObserveCurrent(ctx context.Context) <-chan notify.Result[models.User]
	GetByState(ctx context.Context, state string) (models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	ObserveAll(ctx context.Context) <-chan notify.Result[[]models.User]

	// HasProfile reports whether a user with the external identifier exists.
	// An empty serverAddress matches on the identifier alone.
	HasProfile(ctx context.Context, identifier, serverAddress string) (bool, error)

	Save(ctx context.Context, u models.User) (int64, error)
	UpdateCurrent(ctx context.Context, patches ...models.Patch) error
	SetCurrent(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	LogOut(ctx context.Context) error
	RemoveStale(ctx context.Context) error

	CurrentAccessToken(ctx context.Context) (string, error)
	CurrentTokenExpiry(ctx context.Context) (time.Time, bool, error)
}

type userService struct {
	db      *sql.DB
	log     logging.Logger
	newRepo func(dbx.DBTX) users.Repository
}

func NewUserService(db *sql.DB, n *notify.Notifier, log logging.Logger) UserService {
	if log == nil {
		log = logging.Nop()
	}
	return &userService{
		db:  db,
		log: log.With("component", "users"),
		newRepo: func(q dbx.DBTX) users.Repository {
			return users.NewSQLiteRepository(q, n)
		},
	}
}

func (s *userService) repo() users.Repository {
	return s.newRepo(s.db)
}

func (s *userService) GetCurrent(ctx context.Context) (models.User, error) {
	return s.repo().GetCurrent(ctx)
}

func (s *userService) ObserveCurrent(ctx context.Context) <-chan notify.Result[models.User] {
	return s.repo().ObserveCurrent(ctx)
}

func (s *userService) GetByState(ctx context.Context, state string) (models.User, error) {
	return s.repo().GetByState(ctx, state)
}

func (s *userService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.repo().GetAll(ctx)
}

func (s *userService) ObserveAll(ctx context.Context) <-chan notify.Result[[]models.User] {
	return s.repo().ObserveAll(ctx)
}

func (s *userService) HasProfile(ctx context.Context, identifier, serverAddress string) (bool, error) {
	if serverAddress == "" {
		return s.repo().ExistsByIdentifier(ctx, identifier)
	}
	return s.repo().ExistsByIdentifierAndServer(ctx, identifier, serverAddress)
}

// Save inserts u. A remote user whose email is already registered on the
// same server is rejected with common.ErrUserAlreadyExists. When u is
// current, the other rows are demoted in the same transaction.
func (s *userService) Save(ctx context.Context, u models.User) (int64, error) {
	var id int64
	err := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if !u.IsLocal() && u.Email != "" {
			exists, err := repo.ExistsByEmailAndServer(ctx, u.Email, u.ServerAddress)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%s on %s: %w", u.Email, u.ServerAddress, common.ErrUserAlreadyExists)
			}
		}
		if u.IsCurrent {
			if _, err := repo.ClearCurrent(ctx); err != nil {
				return err
			}
		}
		var err error
		id, err = repo.Insert(ctx, u)
		return err
	})
	if err != nil {
		return 0, common.Disk("users.save", err)
	}
	return id, nil
}

// UpdateCurrent folds patches over the current user and writes it back.
// A failed read is returned as is. When the folded record moved to another
// row and stays current, the old current row is demoted in the same
// transaction.
func (s *userService) UpdateCurrent(ctx context.Context, patches ...models.Patch) error {
	return dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		cur, err := repo.GetCurrent(ctx)
		if err != nil {
			return err
		}
		next := cur.Apply(patches...)
		if next.ID != cur.ID && next.IsCurrent {
			if _, err := repo.ClearCurrent(ctx); err != nil {
				return err
			}
		}
		n, err := repo.Update(ctx, next)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrNullUser
		}
		return nil
	})
}

func (s *userService) SetCurrent(ctx context.Context, id int64) error {
	err := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.newRepo(tx).SetCurrent(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrNullUser
		}
		return nil
	})
	return common.Disk("users.set_current", err)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo().DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNullUser
	}
	return nil
}

func (s *userService) LogOut(ctx context.Context) error {
	return s.UpdateCurrent(ctx, models.SetCurrent{Value: false})
}

// RemoveStale deletes rows of unfinished logins and token rows whose profile
// was never fetched.
func (s *userService) RemoveStale(ctx context.Context) error {
	repo := s.repo()
	return removeStale(ctx, s.log, "users",
		pruneStep{name: "without_token", run: repo.PruneAbandonedWithoutToken},
		pruneStep{name: "token_without_client_credentials", run: repo.PruneAbandonedWithTokenNoClientCredentials},
		pruneStep{name: "token_without_identifier", run: repo.PruneTokenWithoutIdentifier},
	)
}

// CurrentAccessToken is empty for local users.
func (s *userService) CurrentAccessToken(ctx context.Context) (string, error) {
	cur, err := s.repo().GetCurrent(ctx)
	if err != nil {
		return "", err
	}
	return cur.AccessToken(), nil
}

func (s *userService) CurrentTokenExpiry(ctx context.Context) (time.Time, bool, error) {
	token, err := s.CurrentAccessToken(ctx)
	if err != nil || token == "" {
		return time.Time{}, false, err
	}
	return tokenx.Expiry(token)
}
