package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/pkg/survey"
)

func newDumpCmd() *cobra.Command {
	var countOnly bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored responses",
		Long:  "Print every stored response as an indented JSON array, or only their number with --count.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			records, err := survey.NewStore(cfg.StorageFile).LoadAll(cmd.Context())
			if err != nil {
				return storeError("load responses", err)
			}

			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, len(records))
				return nil
			}

			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return sysError(fmt.Errorf("write responses: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the number of stored responses")
	return cmd
}
