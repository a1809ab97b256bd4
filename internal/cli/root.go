// Package cli implements the survey command-line interface: the HTTP server
// and the operator commands that initialize, inspect, and export the
// response store.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/internal/config"
	"github.com/mesh-intelligence/survey/internal/paths"
	"github.com/mesh-intelligence/survey/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	storageFile string
}

var flags rootFlags

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// NewRootCmd creates the top-level "survey" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "survey",
		Short: "Collect survey responses into a crash-safe JSON file",
		Long: "survey serves an HTTP endpoint that appends each submitted JSON response\n" +
			"to a single JSON array file, and provides commands to inspect and export it.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir/survey)")
	root.PersistentFlags().StringVar(&flags.storageFile, "storage-file", "", "response file (default: "+paths.DefaultStorageFile+")")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// loadConfig resolves the config directory and loads the configuration,
// honoring the command's flags. Config errors are user errors.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return types.Config{}, userError(fmt.Errorf("load config: %w", err))
	}
	return cfg, nil
}

// storeError classifies a store failure for the exit code. A corrupt file
// or unavailable storage is a system error.
func storeError(op string, err error) error {
	if errors.Is(err, types.ErrInvalidInput) {
		return userError(fmt.Errorf("%s: %w", op, err))
	}
	return sysError(fmt.Errorf("%s: %w", op, err))
}
