package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/storyweft/personae/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "personae",
		Short: "Personae daemon and CLI",
		Long:  "Personae daemon for extracting character profiles from long documents",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.ProfilesCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
