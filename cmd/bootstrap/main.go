// Command bootstrap creates the first admin account. It connects straight
// to the database, so it runs from the server host, not over the API. The
// printed one-time password is shown exactly once.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/dbx"
	"github.com/passvault/passvault/internal/logging"
	"github.com/passvault/passvault/internal/server/admin"
	"github.com/passvault/passvault/internal/server/config"
	"github.com/passvault/passvault/internal/server/db"
	"github.com/passvault/passvault/internal/server/users"
)

func main() {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	ctx := context.Background()
	cfg := config.LoadConfig()

	manager, err := db.NewManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "database setup failed", "error", err)
		os.Exit(1)
	}
	defer manager.Close()

	user, otp, err := admin.NewInvitedUser(cfg.AdminUsername, users.RoleAdmin, nil)
	if err != nil {
		logger.Error(ctx, "admin account creation failed", "error", err)
		os.Exit(1)
	}

	// existence check and insert share one transaction so two concurrent
	// bootstrap runs cannot both create the account
	err = dbx.WithTx(ctx, manager.Conn(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := users.NewPostgresRepository(tx)

		if _, err := repo.GetByUsername(ctx, cfg.AdminUsername); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		_, err := repo.Create(ctx, user)
		return err
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		logger.Info(ctx, "admin account already exists", "username", cfg.AdminUsername)
		return
	}
	if err != nil {
		logger.Error(ctx, "admin account creation failed", "error", err)
		os.Exit(1)
	}

	logger.Info(ctx, "admin account created", "username", user.Username)

	fmt.Printf("Admin account %q created.\n", user.Username)
	fmt.Printf("One-time password (shown once): %s\n", otp)
	fmt.Println("Log in with it and set a real password immediately.")
}
