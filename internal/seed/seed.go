package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/placementcell/internal/app/models"
	appRepos "github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/auth"
)

// Development fallback credentials, used only outside production
const (
	DevAdminEmail    = "admin@placement.local"
	DevAdminPassword = "admin123"
)

// AdminAccount is the bootstrap admin to create when none exists
type AdminAccount struct {
	Email    string
	Password string
}

// ResolveAdmin picks the configured admin account, falling back to the
// development credentials when none is configured and production is false.
// ok is false when no account should be seeded.
func ResolveAdmin(email, password string, production bool) (AdminAccount, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && password != "" {
		return AdminAccount{Email: email, Password: password}, true
	}
	if production {
		return AdminAccount{}, false
	}
	return AdminAccount{Email: DevAdminEmail, Password: DevAdminPassword}, true
}

// CreateDefaultAdmin creates a verified admin account unless an admin already exists
func CreateDefaultAdmin(ctx context.Context, store appRepos.Store, account AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking default admin account...")

	return store.WithTransaction(ctx, func(ctx context.Context, tx appRepos.Store) error {
		admins, err := tx.Users().CountByRole(ctx, appModels.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins > 0 {
			lgr.Debug().Int("admins", admins).Msg("Admin account present, skipping seed")
			return nil
		}

		exists, err := tx.Users().EmailExists(ctx, account.Email)
		if err != nil {
			return fmt.Errorf("failed to check admin email: %w", err)
		}
		if exists {
			lgr.Warn().Str("email", account.Email).Msg("Default admin email belongs to a non-admin account, skipping seed")
			return nil
		}

		hash, err := auth.HashPassword(account.Password)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		admin := &appModels.User{
			Email:      account.Email,
			Password:   hash,
			RoleType:   appModels.RoleAdmin,
			IsVerified: true,
		}
		if err := tx.Users().Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		lgr.Info().Str("email", admin.Email).Int64("userID", admin.ID).Msg("Default admin account created")
		return nil
	})
}
