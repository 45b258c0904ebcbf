// Package cli holds the operational subcommands of the madira binary:
// schema bootstrap and account provisioning.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/tenant"
	"github.com/madira-pos/madira/migrations"
)

// AdminCLI exposes provisioning helpers backed by the primary database.
type AdminCLI struct {
	pool   *pgxpool.Pool
	stores *tenant.Service
	logger *slog.Logger
}

// NewAdminCLI constructs the helper wired to the provided pool.
func NewAdminCLI(pool *pgxpool.Pool, logger *slog.Logger) *AdminCLI {
	return &AdminCLI{
		pool:   pool,
		stores: tenant.NewService(tenant.NewRepository(pool)),
		logger: logger,
	}
}

// InitDB applies the embedded migration files in lexical order.
func (c *AdminCLI) InitDB(ctx context.Context) error {
	if c == nil || c.pool == nil {
		return errors.New("admin cli: pool not configured")
	}
	entries, err := fs.Glob(migrations.Files, "*.sql")
	if err != nil {
		return fmt.Errorf("admin cli: list migrations: %w", err)
	}
	sort.Strings(entries)
	for _, name := range entries {
		script, err := migrations.Files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("admin cli: read migration %s: %w", name, err)
		}
		if _, err := c.pool.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("admin cli: apply migration %s: %w", name, err)
		}
		c.logger.Info("applied migration", slog.String("file", name))
	}
	return nil
}

// CreateStore registers a store and returns its id.
func (c *AdminCLI) CreateStore(ctx context.Context, name, location, validity string) (int64, error) {
	if c == nil || c.stores == nil {
		return 0, errors.New("admin cli: store service not configured")
	}
	id, err := c.stores.CreateStore(ctx, name, location, validity)
	if err != nil {
		return 0, err
	}
	c.logger.Info("store created", slog.Int64("store_id", id), slog.String("name", name))
	return id, nil
}

// CreateUser provisions a user account. Superadmins must not carry a store;
// admin and store accounts must.
func (c *AdminCLI) CreateUser(ctx context.Context, username, password, roleStr string, storeID int64) (int64, error) {
	if c == nil || c.pool == nil {
		return 0, errors.New("admin cli: pool not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, errors.New("admin cli: username required")
	}
	if len(password) < 8 {
		return 0, errors.New("admin cli: password must be at least 8 characters")
	}
	role, err := authz.ParseRole(roleStr)
	if err != nil {
		return 0, err
	}
	if role.RequiresStore() && storeID <= 0 {
		return 0, fmt.Errorf("admin cli: role %s requires a store id", role)
	}
	if !role.RequiresStore() && storeID > 0 {
		return 0, fmt.Errorf("admin cli: role %s must not carry a store id", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("admin cli: hash password: %w", err)
	}

	var id int64
	if role.RequiresStore() {
		err = c.pool.QueryRow(ctx,
			`INSERT INTO users (username, password_hash, role, store_id) VALUES ($1, $2, $3, $4) RETURNING id`,
			username, string(hash), string(role), storeID).Scan(&id)
	} else {
		err = c.pool.QueryRow(ctx,
			`INSERT INTO users (username, password_hash, role, store_id) VALUES ($1, $2, $3, NULL) RETURNING id`,
			username, string(hash), string(role)).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("admin cli: insert user: %w", err)
	}
	c.logger.Info("user created", slog.Int64("user_id", id), slog.String("role", string(role)))
	return id, nil
}
