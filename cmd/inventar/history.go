package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/api"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the change history",
	}

	var (
		filter   model.HistoryFilter
		from, to string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List history entries",
		Long: `List prints history entries in the order they were recorded.

--from is inclusive and --to is exclusive. Both accept a date (2006-01-02),
a UTC timestamp (2006-01-02 15:04:05) or RFC 3339.`,
		Example: `  inventar history list --zone 2 --from 2024-01-01 --to 2024-02-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if from != "" {
				if filter.From, err = api.ParseTime(from); err != nil {
					return err
				}
			}
			if to != "" {
				if filter.To, err = api.ParseTime(to); err != nil {
					return err
				}
			}
			filter.ActionType = strings.ToUpper(filter.ActionType)

			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := store.QueryHistory(cmd.Context(), database, filter)
			if err != nil {
				return err
			}
			return a.print(cmd, entries, func() { printHistory(cmd, entries) })
		},
	}
	f := list.Flags()
	f.Int64Var(&filter.ObjectID, "object", 0, "only entries of this object")
	f.Int64Var(&filter.ZoneID, "zone", 0, "only entries of this zone")
	f.StringVar(&filter.ActionType, "action", "", "only this action (CREATE, UPDATE, DELETE, ZONE_DELETED)")
	f.StringVar(&from, "from", "", "entries at or after this time")
	f.StringVar(&to, "to", "", "entries before this time")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize history per zone and action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			groups, err := store.SummarizeHistory(cmd.Context(), database)
			if err != nil {
				return err
			}
			return a.print(cmd, groups, func() {
				rows := make([][]string, 0, len(groups))
				for _, g := range groups {
					rows = append(rows, []string{
						g.ZoneName,
						g.ActionType,
						strconv.Itoa(g.Count),
						g.LastChange.Format(store.TimeLayout),
						strings.Join(g.Objects, ", "),
					})
				}
				output.Table(cmd.OutOrStdout(), []string{"ZONE", "ACTION", "COUNT", "LAST CHANGE", "OBJECTS"}, rows)
			})
		},
	}

	cmd.AddCommand(list, summary)
	return cmd
}

func printHistory(cmd *cobra.Command, entries []model.HistoryEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		change := ""
		if e.FieldModified != "" {
			change = fmt.Sprintf("%s: %s → %s", e.FieldModified, historyValue(e.OldValue), historyValue(e.NewValue))
		}
		target := e.ObjectName
		if target == "" {
			target = e.ZoneName
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.ModifiedAt.Format(store.TimeLayout),
			e.ActionType,
			target,
			change,
			e.ModificationUser,
			e.Comment,
		})
	}
	output.Table(cmd.OutOrStdout(), []string{"ID", "WHEN", "ACTION", "TARGET", "CHANGE", "USER", "COMMENT"}, rows)
}

func historyValue(v *string) string {
	if v == nil {
		return "∅"
	}
	return *v
}
