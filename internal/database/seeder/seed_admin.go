package seeder

import (
	"context"
	"fmt"
	"strings"

	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/domain/user"

	"github.com/google/uuid"
)

// AdminSeeder makes sure one administrator account exists. Accounts are
// issued by the identity provider, so the row only carries what moderation
// needs: an id to sign tokens for and the ADMIN role.
type AdminSeeder struct {
	Email string
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context, db database.DB) error {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	if email == "" {
		return fmt.Errorf("admin seeder: empty email")
	}
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "full_name", "role", "status"); err != nil {
		return err
	}

	_, err := db.Exec(
		ctx,
		`INSERT INTO users (id, email, full_name, role, status) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (email) DO NOTHING`,
		uuid.New(),
		email,
		"Administrator",
		string(user.RoleAdmin),
		string(user.StatusActive),
	)
	return err
}
