package main

import (
	"context"
	"fmt"
	"time"

	"localbazaar/internal/repos"
	"localbazaar/internal/services"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every user's listing and sales counters once",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := services.NewReconciler(repos.NewReconcileRepo(db)).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "corrected %d user(s)\n", n)
		return nil
	},
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <email>",
	Short: "Give an existing user the admin capability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		users := repos.NewUserRepo(db)
		listings := services.NewListingService(repos.NewListingRepo(db))
		admin := services.NewAdminService(users, listings, repos.NewOrderRepo(db), repos.NewStatsRepo(db))
		u, err := admin.GrantAdmin(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("grant admin to %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now an admin\n", u.Name, u.Email)
		return nil
	},
}
