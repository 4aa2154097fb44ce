package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/imaging"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newObjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objects",
		Aliases: []string{"object", "o"},
		Short:   "Manage objects",
	}
	cmd.AddCommand(
		newObjectsListCmd(a),
		newObjectsGetCmd(a),
		newObjectsAddCmd(a),
		newObjectsUpdateCmd(a),
		newObjectsDeleteCmd(a),
		newObjectsPurgeCmd(a),
		newObjectsAdjustCmd(a),
		newObjectsImageCmd(a),
		newObjectsHistoryCmd(a),
	)
	return cmd
}

func addFilterFlags(cmd *cobra.Command, filter *model.ObjectFilter) {
	cmd.Flags().Int64Var(&filter.ZoneID, "zone", 0, "only objects in this zone")
	cmd.Flags().Int64Var(&filter.CategoryID, "category", 0, "only objects in this category")
	cmd.Flags().Int64Var(&filter.StatusID, "status", 0, "only objects with this status")
}

func printObjects(cmd *cobra.Command, objects []model.Object) {
	rows := make([][]string, 0, len(objects))
	for _, o := range objects {
		state := ""
		if !o.Active() {
			state = "deleted"
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.Name,
			strconv.Itoa(o.Quantity),
			o.Price.StringFixed(2),
			o.CategoryName,
			o.ZoneName,
			o.StatusName,
			state,
		})
	}
	output.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "QTY", "PRICE", "CATEGORY", "ZONE", "STATUS", ""}, rows)
}

func printObject(cmd *cobra.Command, o *model.Object) {
	w := cmd.OutOrStdout()
	output.Section(w, fmt.Sprintf("#%d %s", o.ID, o.Name))
	if o.Description != "" {
		fmt.Fprintln(w, o.Description)
	}
	fmt.Fprintf(w, "Quantity:  %d\n", o.Quantity)
	fmt.Fprintf(w, "Price:     %s\n", o.Price.StringFixed(2))
	fmt.Fprintf(w, "Category:  %s\n", o.CategoryName)
	fmt.Fprintf(w, "Zone:      %s\n", o.ZoneName)
	fmt.Fprintf(w, "Status:    %s\n", o.StatusName)
	if o.ImageMime != "" {
		fmt.Fprintf(w, "Image:     %s\n", o.ImageMime)
	}
	output.Muted(w, "created %s by %s, modified %s by %s",
		o.CreatedAt.Format(store.TimeLayout), o.CreationUser,
		o.ModifiedAt.Format(store.TimeLayout), o.ModificationUser)
	if o.DeletedAt != nil && o.DeletionUser != nil {
		output.Warning(w, "deleted %s by %s", o.DeletedAt.Format(store.TimeLayout), *o.DeletionUser)
	}
}

func newObjectsListCmd(a *app) *cobra.Command {
	var filter model.ObjectFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			objects, err := store.ListObjects(cmd.Context(), database, filter)
			if err != nil {
				return err
			}
			return a.print(cmd, objects, func() { printObjects(cmd, objects) })
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&filter.IncludeDeleted, "all", false, "include deleted objects")
	return cmd
}

func newObjectsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			obj, err := store.GetObject(cmd.Context(), database, id)
			if err != nil {
				return err
			}
			return a.print(cmd, obj, func() { printObject(cmd, obj) })
		},
	}
}

func newObjectsAddCmd(a *app) *cobra.Command {
	var (
		in    model.ObjectInput
		price string
	)
	cmd := &cobra.Command{
		Use:     "add NAME",
		Short:   "Create an object",
		Example: `  inventar objects add "Cordless drill" --price 89.90 --quantity 2 --category 3 --zone 2 --status 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q", price)
			}
			in.Price = p

			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			obj, err := store.CreateObject(cmd.Context(), database, in, a.cfg.User)
			if err != nil {
				return err
			}
			return a.print(cmd, obj, func() {
				output.Success(cmd.OutOrStdout(), "Created object #%d %s", obj.ID, obj.Name)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&price, "price", "", "unit price")
	f.IntVar(&in.Quantity, "quantity", 0, "quantity")
	f.Int64Var(&in.CategoryID, "category", 0, "category id")
	f.Int64Var(&in.ZoneID, "zone", db.DefaultZoneID, "zone id")
	f.Int64Var(&in.StatusID, "status", 0, "status id")
	f.StringVar(&in.Comment, "comment", "", "comment recorded in history")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newObjectsUpdateCmd(a *app) *cobra.Command {
	var (
		name, description, price, comment string
		quantity                          int
		categoryID, zoneID, statusID      int64
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an object",
		Long: `Update changes only the fields whose flags are given. Every changed field
is recorded as its own history entry.`,
		Example: `  inventar objects update 7 --zone 3 --comment "moved to workshop"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			upd := model.ObjectUpdate{Comment: comment}
			f := cmd.Flags()
			if f.Changed("name") {
				upd.Name = &name
			}
			if f.Changed("description") {
				upd.Description = &description
			}
			if f.Changed("price") {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid price %q", price)
				}
				upd.Price = &p
			}
			if f.Changed("quantity") {
				upd.Quantity = &quantity
			}
			if f.Changed("category") {
				upd.CategoryID = &categoryID
			}
			if f.Changed("zone") {
				upd.ZoneID = &zoneID
			}
			if f.Changed("status") {
				upd.StatusID = &statusID
			}
			if upd.Empty() {
				return fmt.Errorf("nothing to update")
			}

			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.UpdateObject(cmd.Context(), database, id, upd, a.cfg.User); err != nil {
				return err
			}
			obj, err := store.GetObject(cmd.Context(), database, id)
			if err != nil {
				return err
			}
			return a.print(cmd, obj, func() {
				output.Success(cmd.OutOrStdout(), "Updated object #%d %s", obj.ID, obj.Name)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&description, "description", "", "new description")
	f.StringVar(&price, "price", "", "new unit price")
	f.IntVar(&quantity, "quantity", 0, "new quantity")
	f.Int64Var(&categoryID, "category", 0, "new category id")
	f.Int64Var(&zoneID, "zone", 0, "new zone id")
	f.Int64Var(&statusID, "status", 0, "new status id")
	f.StringVar(&comment, "comment", "", "comment recorded in history")
	return cmd
}

func newObjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.DeleteObject(cmd.Context(), database, id, a.cfg.User); err != nil {
				return err
			}
			return a.print(cmd, map[string]int64{"deleted": id}, func() {
				output.Success(cmd.OutOrStdout(), "Deleted object #%d", id)
			})
		},
	}
}

func newObjectsPurgeCmd(a *app) *cobra.Command {
	var (
		filter  model.ObjectFilter
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every active object matching the filters",
		Long: `Purge deletes every active object matching the filters, or every active
object when no filter is given. Each deletion is recorded in history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("purge deletes objects in bulk; pass --confirm to proceed")
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			n, err := store.DeleteObjects(cmd.Context(), database, filter, a.cfg.User)
			if err != nil {
				return err
			}
			return a.print(cmd, map[string]int{"deleted": n}, func() {
				output.Success(cmd.OutOrStdout(), "Deleted %d objects", n)
			})
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm the bulk deletion")
	return cmd
}

func newObjectsAdjustCmd(a *app) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:     "adjust ID DELTA",
		Short:   "Add to or take from the quantity of an object",
		Example: `  inventar objects adjust 7 --comment "two lent out" -- -2`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.AdjustQuantity(cmd.Context(), database, id, delta, a.cfg.User, comment); err != nil {
				return err
			}
			obj, err := store.GetObject(cmd.Context(), database, id)
			if err != nil {
				return err
			}
			return a.print(cmd, obj, func() {
				output.Success(cmd.OutOrStdout(), "Object #%d %s now has quantity %d", obj.ID, obj.Name, obj.Quantity)
			})
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "comment recorded in history")
	return cmd
}

func newObjectsImageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "image ID FILE",
		Short: "Attach a JPEG or PNG photo to an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			photo, err := imaging.Process(f)
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.SetObjectImage(cmd.Context(), database, id, photo.Data, photo.MIME, a.cfg.User); err != nil {
				return err
			}
			return a.print(cmd, map[string]any{"id": id, "width": photo.Width, "height": photo.Height}, func() {
				output.Success(cmd.OutOrStdout(), "Stored %dx%d photo for object #%d", photo.Width, photo.Height, id)
			})
		},
	}
}

func newObjectsHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show the change history of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := store.GetObject(cmd.Context(), database, id); err != nil {
				return err
			}
			entries, err := store.QueryHistory(cmd.Context(), database, model.HistoryFilter{ObjectID: id})
			if err != nil {
				return err
			}
			return a.print(cmd, entries, func() { printHistory(cmd, entries) })
		},
	}
}
