package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived provider payloads",
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print an archived payload",
	Long: `Print a raw provider payload saved under ARCHIVE_TYPE storage.
Keys have the form <provider>/<yyyy>/<mm>/<dd>/<uuid>.json and are logged when written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if !e.archive.Enabled() {
				return fmt.Errorf("payload archive is disabled, set ARCHIVE_TYPE to local or s3")
			}
			rc, err := e.archive.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(cmd.OutOrStdout(), rc)
			return err
		})
	},
}

func init() {
	archiveCmd.AddCommand(archiveShowCmd)
}
