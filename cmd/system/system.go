package system

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/pkg/logs"
)

func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Maintenance and tooling commands",
	}

	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewGenDocsCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewRemindCommand())
	cmd.AddCommand(NewGrantAdminCommand())

	return cmd
}

// readConfig loads the config named by the root --config flag and installs
// the configured logger. The returned func flushes buffered log sinks.
func readConfig(cmd *cobra.Command) (*config.Config, func(), error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	logger, flush := logs.New(cfg)
	slog.SetDefault(logger)
	return cfg, flush, nil
}
