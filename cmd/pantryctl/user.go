package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pantry/internal/users"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		email, name, password string
		customers             []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account and grant it access to customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := openDatabaseFunc(ctx)
			if err != nil {
				return err
			}

			// Resolve every customer before creating anything.
			ids := make([]uint, 0, len(customers))
			for _, value := range customers {
				id, err := resolveCustomer(ctx, database, value)
				if err != nil {
					return err
				}
				ids = append(ids, uint(id))
			}

			user, err := users.Create(ctx, database, email, name, password)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := users.Grant(ctx, database, user.ID, id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d) with %d customer(s)\n", user.Email, user.ID, len(ids))
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "initial password")
	create.Flags().StringSliceVar(&customers, "customer", nil, "customer id or name to grant (repeatable)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
