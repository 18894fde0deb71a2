package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

var (
	overviewStart string
	overviewEnd   string
)

var overviewCmd = &cobra.Command{
	Use:   "overview <reporting> <partner> <item>",
	Short: "Show the historical tariff series for an item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := model.TariffOverviewQueryDTO{
			ReportingCountry: args[0],
			PartnerCountry:   args[1],
			Item:             args[2],
			StartDate:        overviewStart,
			EndDate:          overviewEnd,
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			resp, err := e.manager.GetOverview(ctx, query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}

func init() {
	overviewCmd.Flags().StringVar(&overviewStart, "start", "", "first effective date to include (YYYY-MM-DD)")
	overviewCmd.Flags().StringVar(&overviewEnd, "end", "", "last effective date to include (YYYY-MM-DD)")
}
