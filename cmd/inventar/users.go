package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage API accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			users, err := store.ListUsers(cmd.Context(), database)
			if err != nil {
				return err
			}
			return a.print(cmd, users, func() {
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					state := ""
					if u.DeletedAt != nil {
						state = "deleted"
					}
					rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Username, u.Role, state})
				}
				output.Table(cmd.OutOrStdout(), []string{"ID", "USERNAME", "ROLE", ""}, rows)
			})
		},
	}

	var role, password string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := password
			if pw == "" {
				var err error
				if pw, err = generatePassword(16); err != nil {
					return err
				}
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			user, err := store.CreateUser(cmd.Context(), database, args[0], hash, role)
			if err != nil {
				return err
			}
			return a.print(cmd, user, func() {
				output.Success(cmd.OutOrStdout(), "Created %s account %s", user.Role, user.Username)
				if password == "" {
					output.Info(cmd.OutOrStdout(), "Password: %s", pw)
				}
			})
		},
	}
	add.Flags().StringVar(&role, "role", model.RoleUser, "role (admin, manager, user)")
	add.Flags().StringVar(&password, "password", "", "password (default: generated)")

	var newPassword string
	passwd := &cobra.Command{
		Use:   "passwd USERNAME",
		Short: "Set the password of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(newPassword)
			if err != nil {
				return err
			}
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.UpdateUserPassword(cmd.Context(), database, args[0], hash); err != nil {
				return err
			}
			return a.print(cmd, map[string]string{"username": args[0]}, func() {
				output.Success(cmd.OutOrStdout(), "Password changed for %s", args[0])
			})
		},
	}
	passwd.Flags().StringVar(&newPassword, "password", "", "new password")
	_ = passwd.MarkFlagRequired("password")

	remove := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.DeleteUser(cmd.Context(), database, args[0]); err != nil {
				return err
			}
			return a.print(cmd, map[string]string{"deleted": args[0]}, func() {
				output.Success(cmd.OutOrStdout(), "Deleted account %s", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, passwd, remove)
	return cmd
}
