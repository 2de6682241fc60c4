package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "linkpitch",
	Short: "Scrape LinkedIn profiles and draft outreach messages",
	Long: `linkpitch drafts LinkedIn connection requests and follow-ups.

Available subcommands:
  scrape   - Fetch a profile or company through the scraping service
  generate - Generate a message for a contact (or preview the prompt)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to optional YAML config")
	rootCmd.AddCommand(scrapeCmd, generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
