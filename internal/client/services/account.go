package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/dbx"
	"github.com/dmitrijs2005/fireflow/internal/logging"
	"github.com/dmitrijs2005/fireflow/internal/notify"
	"github.com/dmitrijs2005/fireflow/internal/tokenx"
)

// AccountService manages the accounts table.
//
// Contract:
//   - Save of a current account and SetCurrent leave exactly one current row;
//   - UpdateCurrent never creates a row;
//   - RemoveStale deletes only rows of abandoned logins.
type AccountService interface {
	GetCurrent(ctx context.Context) (models.Account, error)
	ObserveCurrent(ctx context.Context) <-chan notify.Result[models.Account]
	GetByState(ctx context.Context, state string) (models.Account, error)
	GetAll(ctx context.Context) ([]models.Account, error)
	ObserveAll(ctx context.Context) <-chan notify.Result[[]models.Account]

	Save(ctx context.Context, a models.Account) (int64, error)
	UpdateCurrent(ctx context.Context, patches ...models.Patch) error
	SetCurrent(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	LogOut(ctx context.Context) error
	RemoveStale(ctx context.Context) error

	CurrentAccessToken(ctx context.Context) (string, error)
	CurrentTokenExpiry(ctx context.Context) (time.Time, bool, error)
}

type accountService struct {
	db      *sql.DB
	log     logging.Logger
	newRepo func(dbx.DBTX) accounts.Repository
}

func NewAccountService(db *sql.DB, n *notify.Notifier, log logging.Logger) AccountService {
	if log == nil {
		log = logging.Nop()
	}
	return &accountService{
		db:  db,
		log: log.With("component", "accounts"),
		newRepo: func(q dbx.DBTX) accounts.Repository {
			return accounts.NewSQLiteRepository(q, n)
		},
	}
}

func (s *accountService) repo() accounts.Repository {
	return s.newRepo(s.db)
}

func (s *accountService) GetCurrent(ctx context.Context) (models.Account, error) {
	return s.repo().GetCurrent(ctx)
}

func (s *accountService) ObserveCurrent(ctx context.Context) <-chan notify.Result[models.Account] {
	return s.repo().ObserveCurrent(ctx)
}

func (s *accountService) GetByState(ctx context.Context, state string) (models.Account, error) {
	return s.repo().GetByState(ctx, state)
}

func (s *accountService) GetAll(ctx context.Context) ([]models.Account, error) {
	return s.repo().GetAll(ctx)
}

func (s *accountService) ObserveAll(ctx context.Context) <-chan notify.Result[[]models.Account] {
	return s.repo().ObserveAll(ctx)
}

// Save inserts a. When a is current, the other rows are demoted in the same
// transaction.
func (s *accountService) Save(ctx context.Context, a models.Account) (int64, error) {
	var id int64
	err := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if a.IsCurrent {
			if _, err := repo.ClearCurrent(ctx); err != nil {
				return err
			}
		}
		var err error
		id, err = repo.Insert(ctx, a)
		return err
	})
	if err != nil {
		return 0, common.Disk("accounts.save", err)
	}
	return id, nil
}

// UpdateCurrent folds patches over the current account and writes it back.
// A failed read is returned as is. When the folded record moved to another
// row and stays current, the old current row is demoted in the same
// transaction.
func (s *accountService) UpdateCurrent(ctx context.Context, patches ...models.Patch) error {
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
			return common.ErrNullAccount
		}
		return nil
	})
}

func (s *accountService) SetCurrent(ctx context.Context, id int64) error {
	err := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.newRepo(tx).SetCurrent(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrNullAccount
		}
		return nil
	})
	return common.Disk("accounts.set_current", err)
}

func (s *accountService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo().DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNullAccount
	}
	return nil
}

// LogOut demotes the current account. The row and its credential stay.
func (s *accountService) LogOut(ctx context.Context) error {
	return s.UpdateCurrent(ctx, models.SetCurrent{Value: false})
}

// RemoveStale deletes rows of logins that never finished: those without a
// token, then token rows without client credentials.
func (s *accountService) RemoveStale(ctx context.Context) error {
	repo := s.repo()
	return removeStale(ctx, s.log, "accounts",
		pruneStep{name: "without_token", run: repo.PruneAbandonedWithoutToken},
		pruneStep{name: "token_without_client_credentials", run: repo.PruneAbandonedWithTokenNoClientCredentials},
	)
}

func (s *accountService) CurrentAccessToken(ctx context.Context) (string, error) {
	cur, err := s.repo().GetCurrent(ctx)
	if err != nil {
		return "", err
	}
	return cur.AccessToken(), nil
}

// CurrentTokenExpiry reads the exp claim of the current access token. ok is
// false when there is no token or it carries no expiry.
func (s *accountService) CurrentTokenExpiry(ctx context.Context) (time.Time, bool, error) {
	token, err := s.CurrentAccessToken(ctx)
	if err != nil || token == "" {
		return time.Time{}, false, err
	}
	return tokenx.Expiry(token)
}
