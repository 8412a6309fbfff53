package accounts

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/dbx"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

const selectColumns = `SELECT id, access_token, client_id, client_secret, email, firefly_id,
	is_current, oauth_code, refresh_token, role, server_address, state, type FROM accounts`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db       dbx.DBTX
	notifier *notify.Notifier
}

// NewSQLiteRepository returns a repository bound to db. Writes are announced
// on n, which may be nil.
func NewSQLiteRepository(db dbx.DBTX, n *notify.Notifier) *SQLiteRepository {
	return &SQLiteRepository{db: db, notifier: n}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (models.Account, error) {
	var (
		a    models.Account
		cred struct{ accessToken, clientID, clientSecret, oauthCode, refreshToken sql.NullString }

		email, fireflyID, role, state, typ sql.NullString
	)
	err := s.Scan(&a.ID, &cred.accessToken, &cred.clientID, &cred.clientSecret, &email, &fireflyID,
		&a.IsCurrent, &cred.oauthCode, &cred.refreshToken, &role, &a.ServerAddress, &state, &typ)
	if err != nil {
		return models.Account{}, err
	}

	a.Auth = models.AuthenticationFromCredentials(models.Credentials{
		AccessToken:  cred.accessToken.String,
		RefreshToken: cred.refreshToken.String,
		ClientID:     cred.clientID.String,
		ClientSecret: cred.clientSecret.String,
		OAuthCode:    cred.oauthCode.String,
	})
	a.Email = email.String
	a.FireflyID = fireflyID.String
	a.Role = role.String
	a.State = state.String
	a.Type = typ.String
	return a, nil
}

func (r *SQLiteRepository) queryOne(ctx context.Context, op string, notFound error, query string, args ...any) (models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if dbx.IsNoRows(err) {
		return models.Account{}, notFound
	}
	if err != nil {
		return models.Account{}, common.Disk(op, err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetCurrent(ctx context.Context) (models.Account, error) {
	return r.queryOne(ctx, "accounts.get_current", common.ErrNoCurrentAccount,
		selectColumns+` WHERE is_current = 1 ORDER BY id DESC LIMIT 1`)
}

func (r *SQLiteRepository) ObserveCurrent(ctx context.Context) <-chan notify.Result[models.Account] {
	return notify.Watch(ctx, r.notifier, notify.TableTopic("accounts"), r.GetCurrent)
}

func (r *SQLiteRepository) GetByState(ctx context.Context, state string) (models.Account, error) {
	return r.queryOne(ctx, "accounts.get_by_state", common.ErrNotFoundByState,
		selectColumns+` WHERE state = ? ORDER BY id DESC LIMIT 1`, state)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (models.Account, error) {
	return r.queryOne(ctx, "accounts.get_by_id", common.ErrNullAccount,
		selectColumns+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, common.Disk("accounts.get_all", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, common.Disk("accounts.get_all", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Disk("accounts.get_all", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ObserveAll(ctx context.Context) <-chan notify.Result[[]models.Account] {
	return notify.Watch(ctx, r.notifier, notify.TableTopic("accounts"), r.GetAll)
}

func columnValues(a models.Account) []any {
	c := models.CredentialsOf(a.Auth)
	return []any{
		dbx.NullString(c.AccessToken), dbx.NullString(c.ClientID), dbx.NullString(c.ClientSecret),
		dbx.NullString(a.Email), dbx.NullString(a.FireflyID), a.IsCurrent,
		dbx.NullString(c.OAuthCode), dbx.NullString(c.RefreshToken), dbx.NullString(a.Role),
		a.ServerAddress, dbx.NullString(a.State), dbx.NullString(a.Type),
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, a models.Account) (int64, error) {
	query := `INSERT INTO accounts (access_token, client_id, client_secret, email, firefly_id,
			is_current, oauth_code, refresh_token, role, server_address, state, type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := dbx.InsertID(r.db.ExecContext(context.WithoutCancel(ctx), query, columnValues(a)...))
	if err != nil {
		return 0, common.Disk("accounts.insert", err)
	}
	r.notifier.Publish(notify.TableTopic("accounts"))
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a models.Account) (int64, error) {
	query := `UPDATE accounts SET access_token = ?, client_id = ?, client_secret = ?, email = ?,
			firefly_id = ?, is_current = ?, oauth_code = ?, refresh_token = ?, role = ?,
			server_address = ?, state = ?, type = ?
			WHERE id = ?`

	return r.exec(ctx, "accounts.update", query, append(columnValues(a), a.ID)...)
}

// PruneAbandonedWithoutToken deletes logins that never received a token.
func (r *SQLiteRepository) PruneAbandonedWithoutToken(ctx context.Context) (int64, error) {
	return r.exec(ctx, "accounts.prune_without_token",
		`DELETE FROM accounts WHERE state IS NOT NULL AND access_token IS NULL`)
}

// PruneAbandonedWithTokenNoClientCredentials deletes token rows left by
// interrupted personal access token logins.
func (r *SQLiteRepository) PruneAbandonedWithTokenNoClientCredentials(ctx context.Context) (int64, error) {
	return r.exec(ctx, "accounts.prune_pat",
		`DELETE FROM accounts WHERE state IS NOT NULL AND access_token IS NOT NULL
			AND client_id IS NULL AND client_secret IS NULL`)
}

func (r *SQLiteRepository) ClearCurrent(ctx context.Context) (int64, error) {
	return r.exec(ctx, "accounts.clear_current", `UPDATE accounts SET is_current = 0 WHERE is_current <> 0`)
}

// SetCurrent marks id current and every other row not current. The affected
// count is the number of rows whose flag was touched; 0 means an empty table.
func (r *SQLiteRepository) SetCurrent(ctx context.Context, id int64) (int64, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ?)`, id).Scan(&exists); err != nil {
		return 0, common.Disk("accounts.set_current", err)
	}
	if !exists {
		return 0, nil
	}
	return r.exec(ctx, "accounts.set_current",
		`UPDATE accounts SET is_current = CASE WHEN id = ? THEN 1 ELSE 0 END`, id)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "accounts.delete", `DELETE FROM accounts WHERE id = ?`, id)
}

// exec runs a write detached from the caller's cancellation and announces it.
func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	n, err := dbx.Affected(r.db.ExecContext(context.WithoutCancel(ctx), query, args...))
	if err != nil {
		return 0, common.Disk(op, err)
	}
	if n > 0 {
		r.notifier.Publish(notify.TableTopic("accounts"))
	}
	return n, nil
}
