package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/dbx"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, role, status, password_hash, one_time_password_hash,
        totp_secret, totp_enabled, encryption_salt, failed_login_attempts,
        locked_until, created_at, last_login_at, created_by`

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO users (id, username, role, status, password_hash, one_time_password_hash,
                    totp_secret, totp_enabled, encryption_salt, created_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING created_at
         `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Role, user.Status, user.PasswordHash,
		user.OneTimePasswordHash, user.TotpSecret, user.TotpEnabled,
		user.EncryptionSalt, user.CreatedBy).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Update builds the SET clause from the populated fields of upd. The single
// UPDATE keeps counter increment and lockout deadline in one atomic write,
// which is what closes the lockout race across concurrent requests.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {

	set := make([]string, 0, 8)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.TotpSecret != nil {
		add("totp_secret", *upd.TotpSecret)
	}
	if upd.TotpEnabled != nil {
		add("totp_enabled", *upd.TotpEnabled)
	}
	if upd.FailedLoginAttempts != nil {
		add("failed_login_attempts", *upd.FailedLoginAttempts)
	}
	if upd.LockedUntil != nil {
		add("locked_until", *upd.LockedUntil)
	} else if upd.ClearLockedUntil {
		set = append(set, "locked_until = NULL")
	}
	if upd.LastLoginAt != nil {
		add("last_login_at", *upd.LastLoginAt)
	}
	if upd.ClearOneTimePassword {
		set = append(set, "one_time_password_hash = NULL")
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	user := &User{}
	err := scan(
		&user.ID, &user.Username, &user.Role, &user.Status, &user.PasswordHash,
		&user.OneTimePasswordHash, &user.TotpSecret, &user.TotpEnabled,
		&user.EncryptionSalt, &user.FailedLoginAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.LastLoginAt, &user.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
