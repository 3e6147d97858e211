package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/khanghh/ltcms/internal/auth"
	"github.com/khanghh/ltcms/model"
	"golang.org/x/crypto/bcrypt"
)

const duplicateEntryErrNo = 1062

// BootstrapAdmin creates the initial admin account if it does not already
// exist. The configured password must satisfy the same policy applied to
// logins so the account remains usable.
func BootstrapAdmin(ctx context.Context, repo UserRepository, username string, password string) error {
	if username == "" || password == "" {
		slog.Info("Admin credentials not configured, skipping admin bootstrap")
		return nil
	}
	if err := auth.ValidateUsername(username); err != nil {
		return fmt.Errorf("admin username: %w", err)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}

	existing, err := repo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &model.User{
		Username: username,
		Password: string(hash),
		Role:     "admin",
	}
	if err := repo.Create(ctx, user); err != nil {
		// Another replica may have won the race between lookup and insert.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrNo {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	slog.Info("Created admin account", "username", username)
	return nil
}
