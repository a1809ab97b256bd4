package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/internal/export"
	"github.com/mesh-intelligence/survey/pkg/survey"
)

func newExportCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy stored responses into a SQLite database",
		Long: "Rebuild a SQLite database holding one row per stored response in table\n" +
			"responses(seq, body, exported_at). Query answers with json_extract(body, '$.field').",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			records, err := survey.NewStore(cfg.StorageFile).LoadAll(cmd.Context())
			if err != nil {
				return storeError("load responses", err)
			}

			n, err := export.ToSQLite(cmd.Context(), records, dbPath, cfg.StorageFile)
			if err != nil {
				return sysError(fmt.Errorf("export: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d responses to %s\n", n, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file to write (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
