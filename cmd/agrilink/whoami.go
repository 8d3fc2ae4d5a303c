package main

import (
	"fmt"

	"github.com/agrilink/agrilink-go/catalog"
	interrors "github.com/agrilink/agrilink-go/internal/errors"
	"github.com/agrilink/agrilink-go/internal/utils"
	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			a.sessions.Bootstrap(cmd.Context())
			user := a.sessions.CurrentUser()
			if user == nil {
				return interrors.ErrNotLoggedIn
			}

			fmt.Printf("%s (%s)\n", user.Username, user.Role)
			if user.Email != "" {
				fmt.Printf("  email: %s\n", user.Email)
			}
			if user.Phone != "" {
				fmt.Printf("  phone: %s\n", user.Phone)
			}
			return nil
		},
	}
}

func productsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List marketplace products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			a.sessions.Bootstrap(cmd.Context())
			if a.sessions.CurrentUser() == nil {
				return interrors.ErrNotLoggedIn
			}

			opts := catalog.ListOptions{}
			if category != "" {
				opts.Category = utils.Ptr(category)
			}

			products, err := a.catalog.List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			for _, p := range products {
				fmt.Printf("%-12s %-24s %8.2f  %s\n", p.ID, p.Name, p.Price, p.Category)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}
