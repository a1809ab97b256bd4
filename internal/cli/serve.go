package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/internal/config"
	"github.com/mesh-intelligence/survey/internal/logging"
	"github.com/mesh-intelligence/survey/internal/server"
	"github.com/mesh-intelligence/survey/pkg/survey"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the survey submission endpoint",
		Long:  "Listen for POST /submit-response and append each JSON body to the response file until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("host", config.DefaultHost, "listen host")
	cmd.Flags().Int("port", config.DefaultPort, "listen port (env PORT)")
	cmd.Flags().String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Log, cmd.ErrOrStderr())
	logger.Info("starting survey server", "version", survey.Version, "storage_file", cfg.StorageFile)

	store := survey.NewStore(cfg.StorageFile)
	if err := store.Ensure(cmd.Context()); err != nil {
		logger.Error("storage is not usable", "err", err)
		return storeError("initialize storage", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(store, cfg, logger).ListenAndServe(ctx); err != nil {
		logger.Error("server stopped with error", "err", err)
		return sysError(fmt.Errorf("serve: %w", err))
	}
	logger.Info("goodbye")
	return nil
}
