package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/catalog"
	"github.com/Alijeyrad/sapan_backend/pkg/database"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the industry and objective catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, flush, err := readConfig(cmd)
			if err != nil {
				return err
			}
			defer flush()

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			client := repo.NewClient(drv)
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			var res catalog.SeedResult
			err = client.WithTx(ctx, func(tx *repo.Client) error {
				var err error
				res, err = catalog.New(tx.Catalog).Seed(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}

			fmt.Printf("Catalog seeded: %d categories, %d subcategories, %d objectives.\n",
				res.Categories, res.Subcategories, res.Objectives)
			return nil
		},
	}

	return cmd
}
