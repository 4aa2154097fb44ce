package main

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show object count, quantity and value per zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			zones, err := store.ListInventory(cmd.Context(), database)
			if err != nil {
				return err
			}
			return a.print(cmd, zones, func() {
				total := decimal.Zero
				rows := make([][]string, 0, len(zones)+1)
				for _, z := range zones {
					total = total.Add(z.TotalValue)
					rows = append(rows, []string{
						z.ZoneName,
						strconv.Itoa(z.Objects),
						strconv.Itoa(z.TotalQuantity),
						z.TotalValue.StringFixed(2),
					})
				}
				output.Table(cmd.OutOrStdout(), []string{"ZONE", "OBJECTS", "QUANTITY", "VALUE"}, rows)
				output.Info(cmd.OutOrStdout(), "Total value: %s", total.StringFixed(2))
			})
		},
	}
}
