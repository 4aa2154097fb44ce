package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newZonesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "zones",
		Aliases: []string{"zone", "z"},
		Short:   "Manage zones",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			zones, err := store.ListZones(cmd.Context(), database)
			if err != nil {
				return err
			}
			return a.print(cmd, zones, func() { printZones(cmd, zones) })
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			zone, err := store.CreateZone(cmd.Context(), database, args[0], description, a.cfg.User)
			if err != nil {
				return err
			}
			return a.print(cmd, zone, func() {
				output.Success(cmd.OutOrStdout(), "Created zone #%d %s", zone.ID, zone.Name)
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "description")

	var newDescription string
	rename := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			desc := newDescription
			if !cmd.Flags().Changed("description") {
				current, err := store.GetZone(cmd.Context(), database, id)
				if err != nil {
					return err
				}
				desc = current.Description
			}
			zone, err := store.UpdateZone(cmd.Context(), database, id, args[1], desc, a.cfg.User)
			if err != nil {
				return err
			}
			return a.print(cmd, zone, func() {
				output.Success(cmd.OutOrStdout(), "Zone #%d is now %s", zone.ID, zone.Name)
			})
		},
	}
	rename.Flags().StringVar(&newDescription, "description", "", "replace the description")

	var comment string
	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an empty zone",
		Long: `Remove deletes a zone that holds no active objects. Move or delete its
objects first. The default zone cannot be removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.RemoveZone(cmd.Context(), database, id, a.cfg.User, comment); err != nil {
				return err
			}
			return a.print(cmd, map[string]int64{"removed": id}, func() {
				output.Success(cmd.OutOrStdout(), "Removed zone #%d", id)
			})
		},
	}
	remove.Flags().StringVar(&comment, "comment", "", "comment recorded in history")

	cmd.AddCommand(list, add, rename, remove)
	return cmd
}

func printZones(cmd *cobra.Command, zones []model.Zone) {
	rows := make([][]string, 0, len(zones))
	for _, z := range zones {
		rows = append(rows, []string{strconv.FormatInt(z.ID, 10), z.Name, z.Description})
	}
	output.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "DESCRIPTION"}, rows)
}
