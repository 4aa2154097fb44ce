package main

import (
	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/console"
)

func newConsoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Browse the inventory in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			return console.Run(cmd.Context(), database)
		},
	}
}
