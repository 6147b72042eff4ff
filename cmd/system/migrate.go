package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	"github.com/Alijeyrad/sapan_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed authorization policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, flush, err := readConfig(cmd)
			if err != nil {
				return err
			}
			defer flush()

			// client db
			fmt.Println("Running migrations for application DB.")
			if err := database.Migrate(cfg.Database); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			// casbin db
			fmt.Println("Running migrations for Casbin DB.")
			authCfg := authorize.FromCentralConfig(cfg.Authorization)
			enforcer, cleanup, err := authorize.NewEnforcer(authCfg, database.NewDSN(cfg.CasbinDatabase))
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer, authCfg.SuperadminBypass)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			slog.Info("seeding casbin policies")
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
