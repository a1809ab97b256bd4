package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/internal/config"
	"github.com/mesh-intelligence/survey/internal/paths"
	"github.com/mesh-intelligence/survey/pkg/survey"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the response file",
		Long:  "Write a default config.yaml if none exists, then create the response file as an empty array if it is absent.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if _, err := config.WriteDefaultIfMissing(configDir); err != nil {
		return sysError(err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := survey.NewStore(cfg.StorageFile)
	if err := store.Ensure(cmd.Context()); err != nil {
		return storeError("initialize storage", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Survey storage initialized")
	fmt.Fprintln(out, "  config: ", config.FilePath(configDir))
	fmt.Fprintln(out, "  storage:", cfg.StorageFile)
	return nil
}
