package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stroytech/stroybot/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stroybotd",
		Short: "Stroybot daemon and admin CLI",
		Long:  "Stroybot daemon for running the API server and managing the corpus index",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.InspectCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
