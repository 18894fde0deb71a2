package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Load the country list into an empty database",
	Long: `Load countries from COUNTRIES_CSV_PATH, or the embedded default list, when the
country table is empty. The world and developing sentinel rows are ensured either way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			res, err := e.manager.Bootstrap(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}
