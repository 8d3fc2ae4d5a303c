package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/users"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var password string
	var role string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and persist the session credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			user, err := a.sessions.Login(cmd.Context(), accounts.Credentials{
				Username: args[0],
				Password: password,
				Role:     users.RoleType(role),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "", "role hint: farmer, supplier, or consumer")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Tear down the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			a.sessions.Logout(cmd.Context())
			fmt.Println("Logged out")
			return nil
		},
	}
}
