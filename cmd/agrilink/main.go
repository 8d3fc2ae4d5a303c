package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Local overrides for backend URL, token path, and portal port.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "agrilink",
		Short: "Client for the AgriLink agricultural marketplace",
		Long: `Command-line client for the AgriLink marketplace backend.

Log in once and the credential pair is persisted locally; every later
command attaches it automatically and refreshes it when it expires.
The serve command starts a local web portal with role-specific dashboards.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		productsCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
