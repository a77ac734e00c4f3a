package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-sentinel/internal/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the live review progress stream",
	Long: `Connect to the gateway's WebSocket endpoint and print every progress
event as it is broadcast. Only events published while connected are shown;
there is no replay.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	wsURL, err := streamURL(gatewayURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	dimColor.Fprintf(cmd.OutOrStdout(), "Connected to %s, waiting for events...\n", wsURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			dimColor.Fprintln(cmd.OutOrStdout(), "Stream closed.")
			return nil
		}

		var event core.ProgressEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			errorColor.Fprintf(cmd.OutOrStderr(), "Malformed event: %s\n", payload)
			continue
		}
		printEvent(cmd, &event)
	}
}

func printEvent(cmd *cobra.Command, event *core.ProgressEvent) {
	out := cmd.OutOrStdout()
	subject := event.Repo
	if subject != "" && event.PR > 0 {
		subject = fmt.Sprintf("%s#%d", event.Repo, event.PR)
	}

	switch event.Type {
	case core.EventSuccess:
		successColor.Fprintf(out, "[success] %s %s\n", subject, event.Message)
		if event.Review != "" {
			fmt.Fprintln(out, strings.Repeat("-", 60))
			fmt.Fprintln(out, event.Review)
			fmt.Fprintln(out, strings.Repeat("-", 60))
		}
	case core.EventError:
		errorColor.Fprintf(out, "[error] %s %s\n", subject, event.Message)
	default:
		infoColor.Fprintf(out, "[log] %s %s\n", subject, event.Message)
	}
}

// streamURL converts the gateway base URL into the ws:// stream endpoint.
func streamURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid gateway URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/webhook/ws"
	return u.String(), nil
}
