// Command pantryctl administers a pantry database: bulk imports, accounts
// and the composition audit stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"pantry/internal/config"
	"pantry/internal/db"
	"pantry/internal/tenant"
	"pantry/models"
)

var (
	openDatabaseFunc = openDatabase
	nowFunc          = func() time.Time { return time.Now().UTC() }
)

func main() {
	if err := newRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "pantryctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Administer pantry customers, catalog data and users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadDotEnv(".env")
		},
	}
	root.SetOut(out)
	root.AddCommand(newImportCommand(), newUserCommand(), newAuditCommand())
	return root
}

func openDatabase(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return nil, errors.New("DATABASE_URL must be set")
	}
	database, err := db.Configure(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database.WithContext(ctx), nil
}

// resolveCustomer accepts a numeric id or an exact, case-insensitive name.
func resolveCustomer(ctx context.Context, database *gorm.DB, value string) (tenant.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return tenant.None, errors.New("--customer is required")
	}

	var customer models.Customer
	query := database.WithContext(ctx)
	if id, err := strconv.ParseUint(value, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("lower(name) = ?", strings.ToLower(value))
	}
	if err := query.First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tenant.None, fmt.Errorf("customer %q not found", value)
		}
		return tenant.None, fmt.Errorf("find customer %q: %w", value, err)
	}
	return tenant.ID(customer.ID), nil
}
