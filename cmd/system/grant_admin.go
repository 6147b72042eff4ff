package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	"github.com/Alijeyrad/sapan_backend/pkg/database"
)

func NewGrantAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant-admin <email|user-id>",
		Short: "Give a user the platform admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, flush, err := readConfig(cmd)
			if err != nil {
				return err
			}
			defer flush()

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			client := repo.NewClient(drv)
			defer client.Close()

			var u *repo.User
			if id, perr := uuid.Parse(args[0]); perr == nil {
				u, err = client.Users.Get(ctx, id)
			} else {
				u, err = client.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(args[0])))
			}
			if err != nil {
				return fmt.Errorf("lookup user: %w", err)
			}

			authCfg := authorize.FromCentralConfig(cfg.Authorization)
			enforcer, cleanup, err := authorize.NewEnforcer(authCfg, database.NewDSN(cfg.CasbinDatabase))
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer, authCfg.SuperadminBypass)
			if err != nil {
				return err
			}
			if err := authorize.NewRoles(auth).GrantAdmin(ctx, u.ID); err != nil {
				return fmt.Errorf("grant admin: %w", err)
			}

			fmt.Printf("Granted platform admin to %s (%s).\n", u.Email, u.ID)
			return nil
		},
	}

	return cmd
}
