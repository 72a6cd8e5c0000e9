// Package cli implements the handleswap command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handleswap/handleswap/internal/api"
)

var rootCmd = &cobra.Command{
	Use:   "handleswap",
	Short: "Escrow marketplace for social-media accounts",
	Long: `HandleSwap brokers the sale of social-media accounts between a seller
and a buyer without either party holding funds or credentials
unilaterally. The daemon exposes the escrow REST API; the CLI offers
operator commands for fee quoting and transaction inspection.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the HandleSwap version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "handleswap %s\n", api.Version)
	},
}
