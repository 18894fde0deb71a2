package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/utils"
)

var (
	countriesOffset int
	countriesLimit  int
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List stored countries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter model.CountryFilter
		if cmd.Flags().Changed("offset") {
			filter.Offset = &countriesOffset
		}
		if cmd.Flags().Changed("limit") {
			filter.Limit = &countriesLimit
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			result, err := e.manager.ListCountries(ctx, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	countriesCmd.Flags().IntVar(&countriesOffset, "offset", 0, "number of countries to skip")
	countriesCmd.Flags().IntVar(&countriesLimit, "limit", utils.DefaultPageSize, fmt.Sprintf("page size (max %d)", utils.MaxPageSize))
}
