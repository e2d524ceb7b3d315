// Package main is the entry point for the campaign game server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dungeon-server",
	Short: "Campaign Game Engine server",
	Long:  `Serves the browser dungeon crawl: campaigns, turn processing, and the LLM narrator over HTTP.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
