package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/passvault/passvault/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "role", "status", "password_hash", "one_time_password_hash",
		"totp_secret", "totp_enabled", "encryption_salt", "failed_login_attempts",
		"locked_until", "created_at", "last_login_at", "created_by",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(.+\)\s*VALUES\s*\(\$1.+\$10\)\s*RETURNING\s+created_at\s*$`

	created := time.Now().UTC()
	otpHash := "otp-hash"
	mock.ExpectQuery(q).
		WithArgs("u-1", "alice", string(RoleUser), string(StatusPendingFirstLogin),
			"otp-hash", "otp-hash", nil, false, "c2FsdA==", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &User{
		ID:                  "u-1",
		Username:            "alice",
		Role:                RoleUser,
		Status:              StatusPendingFirstLogin,
		PasswordHash:        "otp-hash",
		OneTimePasswordHash: &otpHash,
		EncryptionSalt:      "c2FsdA==",
	}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := repo.Create(context.Background(), &User{ID: "u-1", Username: "alice"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &User{ID: "u-1", Username: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	rows := userRows().AddRow(
		"u-1", "alice", string(RoleUser), string(StatusActive), "hash", nil,
		nil, true, "c2FsdA==", 2, nil, created, nil, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != "u-1" || got.Username != "alice" || got.Role != RoleUser {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.FailedLoginAttempts != 2 || !got.TotpEnabled {
		t.Fatalf("unexpected user fields: %+v", got)
	}
	if got.OneTimePasswordHash != nil || got.LockedUntil != nil {
		t.Fatalf("expected nil nullable fields: %+v", got)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := userRows().AddRow(
		"u-1", "alice", string(RoleAdmin), string(StatusActive), "hash", nil,
		nil, false, "c2FsdA==", 0, nil, time.Now(), nil, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Role != RoleAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdate_LockoutInSingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	attempts := 5
	deadline := time.Now().Add(15 * time.Minute)

	q := `(?s)^UPDATE\s+users\s+SET\s+failed_login_attempts\s*=\s*\$1,\s*locked_until\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s*$`
	mock.ExpectExec(q).
		WithArgs(attempts, deadline, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "u-1", Update{
		FailedLoginAttempts: &attempts,
		LockedUntil:         &deadline,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_ClearFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	zero := 0
	q := `(?s)^UPDATE\s+users\s+SET\s+failed_login_attempts\s*=\s*\$1,\s*locked_until\s*=\s*NULL,\s*one_time_password_hash\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$2\s*$`
	mock.ExpectExec(q).
		WithArgs(zero, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "u-1", Update{
		FailedLoginAttempts:  &zero,
		ClearLockedUntil:     true,
		ClearOneTimePassword: true,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NoFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// nothing to update means no statement at all
	if err := repo.Update(context.Background(), "u-1", Update{}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	status := StatusActive
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+status\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`).
		WithArgs(string(status), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "ghost", Update{Status: &status})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := userRows().
		AddRow("u-1", "alice", string(RoleUser), string(StatusActive), "h1", nil,
			nil, false, "s1", 0, nil, time.Now(), nil, nil).
		AddRow("u-2", "bob", string(RoleUser), string(StatusPendingFirstLogin), "h2", nil,
			nil, false, "s2", 0, nil, time.Now(), nil, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+ORDER\s+BY\s+created_at\s*$`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alice" || got[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", got)
	}
}
