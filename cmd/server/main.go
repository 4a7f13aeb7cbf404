// Package main is the entry point for the GM API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gm-api",
	Short: "Ashfall GM API server",
	Long:  `gm-api runs the game master backend for Ashfall campaigns: encounters, initiative, party HP, items and ability charges.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
