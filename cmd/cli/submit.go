package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var submitRepoName string

var submitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Submit a code file for a manual review",
	Long: `Submit the contents of a file to the gateway's manual review endpoint.

The job bypasses GitHub entirely; the review result is only visible on the
live event stream (see "sentinel-cli watch").

Examples:
  sentinel-cli submit main.go
  sentinel-cli submit --repo org/repo patch.diff`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	submitCmd.Flags().StringVar(&submitRepoName, "repo", "", "Repository name to attach to the job (informational)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	payload, err := json.Marshal(map[string]string{
		"repo_name": submitRepoName,
		"code":      string(code),
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(gatewayURL+"/webhook/manual", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach gateway at %s: %w", gatewayURL, err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errorColor.Fprintf(cmd.OutOrStderr(), "Rejected: %s\n", body["detail"])
		return fmt.Errorf("gateway returned %s", resp.Status)
	}

	successColor.Fprintf(cmd.OutOrStdout(), "%s\n", body["message"])
	dimColor.Fprintln(cmd.OutOrStdout(), "Run \"sentinel-cli watch\" to follow the review progress.")
	return nil
}
