package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/survey/pkg/survey"
)

const modulePath = "github.com/mesh-intelligence/survey"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the survey version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "survey v%s\nmodule: %s\n", survey.Version, modulePath)
			return nil
		},
	}
}
