package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

var currentCmd = &cobra.Command{
	Use:   "current <reporting> <partner> <item> <cost>",
	Short: "Resolve the current tariff for an item",
	Example: `  tariffctl current singapore china slippers 19.99
  tariffctl current "united states" "viet nam" "tennis shoes" 120`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Errorf("invalid item cost %q: %w", args[3], err)
		}
		query := model.CurrentTariffQueryDTO{
			ReportingCountry: args[0],
			PartnerCountry:   args[1],
			Item:             args[2],
			ItemCost:         cost,
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			resp, err := e.manager.ResolveCurrent(ctx, query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}
