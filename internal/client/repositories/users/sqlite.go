package users

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/common"
	"github.com/dmitrijs2005/fireflow/internal/dbx"
	"github.com/dmitrijs2005/fireflow/internal/notify"
)

const selectColumns = `SELECT id, access_token, client_id, client_secret, connectivity_notification,
	email, firefly_id, identifier, is_current, oauth_code, refresh_token, role, server_address,
	state, type FROM users`

var topic = notify.TableTopic("users")

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db       dbx.DBTX
	notifier *notify.Notifier
}

func NewSQLiteRepository(db dbx.DBTX, n *notify.Notifier) *SQLiteRepository {
	return &SQLiteRepository{db: db, notifier: n}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.User, error) {
	var (
		u    models.User
		cred struct{ accessToken, clientID, clientSecret, oauthCode, refreshToken sql.NullString }

		email, fireflyID, identifier, role, server, state, typ sql.NullString
	)
	err := s.Scan(&u.ID, &cred.accessToken, &cred.clientID, &cred.clientSecret, &u.ConnectivityNotification,
		&email, &fireflyID, &identifier, &u.IsCurrent, &cred.oauthCode, &cred.refreshToken, &role, &server,
		&state, &typ)
	if err != nil {
		return models.User{}, err
	}

	u.Auth = models.AuthenticationFromCredentials(models.Credentials{
		AccessToken:  cred.accessToken.String,
		RefreshToken: cred.refreshToken.String,
		ClientID:     cred.clientID.String,
		ClientSecret: cred.clientSecret.String,
		OAuthCode:    cred.oauthCode.String,
	})
	u.Email = email.String
	u.FireflyID = fireflyID.String
	u.Identifier = identifier.String
	u.Role = role.String
	u.ServerAddress = server.String
	u.State = state.String
	u.Type = typ.String
	return u, nil
}

func (r *SQLiteRepository) queryOne(ctx context.Context, op string, notFound error, query string, args ...any) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if dbx.IsNoRows(err) {
		return models.User{}, notFound
	}
	if err != nil {
		return models.User{}, common.Disk(op, err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetCurrent(ctx context.Context) (models.User, error) {
	return r.queryOne(ctx, "users.get_current", common.ErrNoCurrentUser,
		selectColumns+` WHERE is_current = 1 ORDER BY id DESC LIMIT 1`)
}

func (r *SQLiteRepository) ObserveCurrent(ctx context.Context) <-chan notify.Result[models.User] {
	return notify.Watch(ctx, r.notifier, topic, r.GetCurrent)
}

func (r *SQLiteRepository) GetByState(ctx context.Context, state string) (models.User, error) {
	return r.queryOne(ctx, "users.get_by_state", common.ErrNotFoundByState,
		selectColumns+` WHERE state = ? ORDER BY id DESC LIMIT 1`, state)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.queryOne(ctx, "users.get_by_id", common.ErrNullUser, selectColumns+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY identifier, id`)
	if err != nil {
		return nil, common.Disk("users.get_all", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.Disk("users.get_all", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Disk("users.get_all", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ObserveAll(ctx context.Context) <-chan notify.Result[[]models.User] {
	return notify.Watch(ctx, r.notifier, topic, r.GetAll)
}

func (r *SQLiteRepository) exists(ctx context.Context, op, where string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE `+where+`)`, args...).Scan(&ok); err != nil {
		return false, common.Disk(op, err)
	}
	return ok, nil
}

func (r *SQLiteRepository) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	return r.exists(ctx, "users.exists_by_identifier", `identifier = ?`, identifier)
}

// ExistsByIdentifierAndServer matches a local user when serverAddress is "".
func (r *SQLiteRepository) ExistsByIdentifierAndServer(ctx context.Context, identifier, serverAddress string) (bool, error) {
	return r.exists(ctx, "users.exists_by_identifier_and_server",
		`identifier = ? AND server_address IS ?`, identifier, dbx.NullString(serverAddress))
}

func (r *SQLiteRepository) ExistsByEmailAndServer(ctx context.Context, email, serverAddress string) (bool, error) {
	return r.exists(ctx, "users.exists_by_email_and_server",
		`email = ? AND server_address IS ?`, email, dbx.NullString(serverAddress))
}

func columnValues(u models.User) []any {
	c := models.CredentialsOf(u.Auth)
	return []any{
		dbx.NullString(c.AccessToken), dbx.NullString(c.ClientID), dbx.NullString(c.ClientSecret),
		u.ConnectivityNotification, dbx.NullString(u.Email), dbx.NullString(u.FireflyID),
		dbx.NullString(u.Identifier), u.IsCurrent, dbx.NullString(c.OAuthCode),
		dbx.NullString(c.RefreshToken), dbx.NullString(u.Role), dbx.NullString(u.ServerAddress),
		dbx.NullString(u.State), dbx.NullString(u.Type),
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, u models.User) (int64, error) {
	query := `INSERT INTO users (access_token, client_id, client_secret, connectivity_notification,
			email, firefly_id, identifier, is_current, oauth_code, refresh_token, role,
			server_address, state, type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := dbx.InsertID(r.db.ExecContext(context.WithoutCancel(ctx), query, columnValues(u)...))
	if err != nil {
		return 0, common.Disk("users.insert", err)
	}
	r.notifier.Publish(topic)
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, u models.User) (int64, error) {
	query := `UPDATE users SET access_token = ?, client_id = ?, client_secret = ?,
			connectivity_notification = ?, email = ?, firefly_id = ?, identifier = ?,
			is_current = ?, oauth_code = ?, refresh_token = ?, role = ?, server_address = ?,
			state = ?, type = ?
			WHERE id = ?`

	return r.exec(ctx, "users.update", query, append(columnValues(u), u.ID)...)
}

func (r *SQLiteRepository) PruneAbandonedWithoutToken(ctx context.Context) (int64, error) {
	return r.exec(ctx, "users.prune_without_token",
		`DELETE FROM users WHERE state IS NOT NULL AND access_token IS NULL AND identifier IS NULL`)
}

func (r *SQLiteRepository) PruneAbandonedWithTokenNoClientCredentials(ctx context.Context) (int64, error) {
	return r.exec(ctx, "users.prune_pat",
		`DELETE FROM users WHERE state IS NOT NULL AND access_token IS NOT NULL
			AND client_id IS NULL AND client_secret IS NULL AND identifier IS NULL`)
}

// PruneTokenWithoutIdentifier deletes rows that got a token but whose profile
// fetch never completed.
func (r *SQLiteRepository) PruneTokenWithoutIdentifier(ctx context.Context) (int64, error) {
	return r.exec(ctx, "users.prune_token_without_identifier",
		`DELETE FROM users WHERE access_token IS NOT NULL AND identifier IS NULL`)
}

func (r *SQLiteRepository) ClearCurrent(ctx context.Context) (int64, error) {
	return r.exec(ctx, "users.clear_current", `UPDATE users SET is_current = 0 WHERE is_current <> 0`)
}

func (r *SQLiteRepository) SetCurrent(ctx context.Context, id int64) (int64, error) {
	found, err := r.exists(ctx, "users.set_current", `id = ?`, id)
	if err != nil || !found {
		return 0, err
	}
	return r.exec(ctx, "users.set_current",
		`UPDATE users SET is_current = CASE WHEN id = ? THEN 1 ELSE 0 END`, id)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "users.delete", `DELETE FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	n, err := dbx.Affected(r.db.ExecContext(context.WithoutCancel(ctx), query, args...))
	if err != nil {
		return 0, common.Disk(op, err)
	}
	if n > 0 {
		r.notifier.Publish(topic)
	}
	return n, nil
}
