package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domains/user"
	"storefront-backend/pkg/container"
	"storefront-backend/pkg/database"
	"storefront-backend/pkg/logger"
)

func main() {
	var (
		destroy       = flag.Bool("d", false, "delete all users, products and carts and exit")
		productsFile  = flag.String("products", "", "xlsx file with products to import (same layout as the export)")
		adminEmail    = flag.String("admin-email", "admin@example.com", "email of the seeded admin")
		adminPassword = flag.String("admin-password", "", "password of the seeded admin (skipped when empty)")
	)
	flag.Parse()

	c, err := container.NewContainer()
	if err != nil {
		logger.Fatal("failed to initialize container", err)
	}
	defer c.Cleanup()

	ctx := context.Background()

	if *destroy {
		if err := destroyData(ctx, c); err != nil {
			logger.Fatal("destroy data", err)
		}
		logger.Info("data destroyed", nil)
		return
	}

	if *adminPassword != "" {
		if err := seedAdmin(ctx, c, *adminEmail, *adminPassword); err != nil {
			logger.Fatal("seed admin", err)
		}
	}

	if *productsFile != "" {
		if err := importProducts(ctx, c, *productsFile); err != nil {
			logger.Fatal("import products", err)
		}
	}
}

func destroyData(ctx context.Context, c *container.Container) error {
	return database.WithTransaction(ctx, c.DB.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE carts, products, users`)
		return err
	})
}

func seedAdmin(ctx context.Context, c *container.Container, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &user.User{
		ID:           uuid.New(),
		Email:        user.NormalizeEmail(email),
		PasswordHash: string(hash),
		Name:         "Admin User",
		Role:         user.RoleAdmin,
	}
	if err := c.UserRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			logger.Info("admin already exists", map[string]interface{}{"email": admin.Email})
			return nil
		}
		return err
	}

	logger.Info("admin created", map[string]interface{}{"email": admin.Email})
	return nil
}

func importProducts(ctx context.Context, c *container.Container, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := c.ProductService.ImportExcel(ctx, f)
	if err != nil {
		return err
	}
	for _, rowErr := range result.Errors {
		logger.Info("row skipped", map[string]interface{}{"error": rowErr})
	}
	return nil
}
