package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(slashCmd("lineup", "Show or edit the match lineup"))
	rootCmd.AddCommand(slashCmd("score", "Report a court result"))
	rootCmd.AddCommand(slashCmd("available", "Show or mark player availability"))
	rootCmd.AddCommand(slashCmd("pti", "Show the team PTI ranking"))
	rootCmd.AddCommand(slashCmd("rank", "Show the team division skill ranking"))
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

// slashCmd builds a subcommand that posts to the matching slash command
// endpoint the way Slack would, passing the remaining args as the command
// text.
func slashCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [text...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return performCommandRequest("/"+name, strings.Join(args, " "))
		},
	}
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performCommandRequest(endpoint, text string) error {
	target := host + endpoint
	if dryRun {
		target += "?dry_run=true"
	}
	fmt.Printf("Making request to %s\n", target)

	form := url.Values{
		"channel_id": {channelID},
		"user_id":    {userID},
		"text":       {text},
	}
	resp, err := http.PostForm(target, form)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
