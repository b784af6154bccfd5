package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host      string
	channelID string
	userID    string
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "sladdle-cli",
	Short: "A CLI to interact with the sladdle server",
	Long: `A command-line interface for exercising the slash command endpoints
of the sladdle application without going through Slack.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&channelID, "channel", "C0000000000", "The Slack channel ID to act as")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "U0000000000", "The Slack user ID to act as")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log sends on the server instead of posting to Slack")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
