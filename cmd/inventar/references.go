package main

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

// reference is a category or status as the CLI shows it.
type reference struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// referenceStore adapts the category or status functions of the store.
type referenceStore struct {
	noun   string
	list   func(ctx context.Context, db *sql.DB) ([]reference, error)
	create func(ctx context.Context, db *sql.DB, name, description, user string) (reference, error)
}

var categoryStore = referenceStore{
	noun: "category",
	list: func(ctx context.Context, db *sql.DB) ([]reference, error) {
		categories, err := store.ListCategories(ctx, db)
		if err != nil {
			return nil, err
		}
		refs := make([]reference, 0, len(categories))
		for _, c := range categories {
			refs = append(refs, reference{c.ID, c.Name, c.Description})
		}
		return refs, nil
	},
	create: func(ctx context.Context, db *sql.DB, name, description, user string) (reference, error) {
		c, err := store.CreateCategory(ctx, db, name, description, user)
		if err != nil {
			return reference{}, err
		}
		return reference{c.ID, c.Name, c.Description}, nil
	},
}

var statusStore = referenceStore{
	noun: "status",
	list: func(ctx context.Context, db *sql.DB) ([]reference, error) {
		statuses, err := store.ListStatuses(ctx, db)
		if err != nil {
			return nil, err
		}
		refs := make([]reference, 0, len(statuses))
		for _, s := range statuses {
			refs = append(refs, reference{s.ID, s.Name, s.Description})
		}
		return refs, nil
	},
	create: func(ctx context.Context, db *sql.DB, name, description, user string) (reference, error) {
		s, err := store.CreateStatus(ctx, db, name, description, user)
		if err != nil {
			return reference{}, err
		}
		return reference{s.ID, s.Name, s.Description}, nil
	},
}

func newCategoriesCmd(a *app) *cobra.Command {
	return newReferenceCmd(a, categoryStore, "categories", "Manage object categories")
}

func newStatusesCmd(a *app) *cobra.Command {
	return newReferenceCmd(a, statusStore, "statuses", "Manage object statuses")
}

func newReferenceCmd(a *app, rs referenceStore, use, short string) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every " + rs.noun,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			refs, err := rs.list(cmd.Context(), database)
			if err != nil {
				return err
			}
			return a.print(cmd, refs, func() {
				rows := make([][]string, 0, len(refs))
				for _, r := range refs {
					rows = append(rows, []string{strconv.FormatInt(r.ID, 10), r.Name, r.Description})
				}
				output.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "DESCRIPTION"}, rows)
			})
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a " + rs.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			ref, err := rs.create(cmd.Context(), database, args[0], description, a.cfg.User)
			if err != nil {
				return err
			}
			return a.print(cmd, ref, func() {
				output.Success(cmd.OutOrStdout(), "Created %s #%d %s", rs.noun, ref.ID, ref.Name)
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "description")

	cmd.AddCommand(list, add)
	return cmd
}
