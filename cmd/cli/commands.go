package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var (
	dryRun    bool
	eventsMax int
	skipInfo  bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Ask the server not to send anything")

	eventsCmd.Flags().IntVar(&eventsMax, "limit", 50, "Maximum number of events")
	firstMatchCmd.Flags().BoolVar(&skipInfo, "skip-info", false, "Skip the info exchange and go straight to final payment")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(firstMatchCmd)
	rootCmd.AddCommand(nextStepCmd)
	rootCmd.AddCommand(finalMatchCmd)
	rootCmd.AddCommand(cancelSlotCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(stateCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get the persisted workflow counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats", nil)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [password]",
	Short: "Exchange the admin password for a bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/admin/login", map[string]string{"password": args[0]})
	},
}

var slotsCmd = &cobra.Command{
	Use:   "slots [date]",
	Short: "Show the admin view of every slot of a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return admin(map[string]any{"action": "get-slots", "dateStr": dateArg(args)})
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams [date]",
	Short: "List the teams registered for a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return admin(map[string]any{"action": "get-teams-by-date", "dateStr": dateArg(args)})
	},
}

var openCmd = &cobra.Command{
	Use:   "open [date] [time]",
	Short: "Toggle whether a slot accepts registrations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return admin(map[string]any{"action": "toggle-slot-open", "dateStr": args[0], "time": args[1]})
	},
}

var boardCmd = &cobra.Command{
	Use:   "board [date]",
	Short: "Post the slot board of a date to Slack",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return admin(map[string]any{"action": "post-slot-board", "dateStr": dateArg(args)})
	},
}

var firstMatchCmd = &cobra.Command{
	Use:   "first-match [date] [time] [guest-id]",
	Short: "Pair the host of a slot with one guest",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return matching(map[string]any{
			"action": "first-match", "date": args[0], "time": args[1], "guestId": args[2], "skipInfoExchange": skipInfo,
		})
	},
}

var nextStepCmd = &cobra.Command{
	Use:   "next-step [date] [time]",
	Short: "Advance the info exchange of a first-confirmed slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return matching(map[string]any{"action": "next-step", "date": args[0], "time": args[1]})
	},
}

var finalMatchCmd = &cobra.Command{
	Use:   "final-match [date] [time] [guest-id]",
	Short: "Confirm the match and schedule the reminders",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return matching(map[string]any{"action": "final-match", "date": args[0], "time": args[1], "guestId": args[2]})
	},
}

var cancelSlotCmd = &cobra.Command{
	Use:   "cancel-slot [date] [time]",
	Short: "Delete every team of a slot without notifying anyone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return matching(map[string]any{"action": "cancel-first-match", "date": args[0], "time": args[1]})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [team-id]",
	Short: "Mark a team's student id as verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return matching(map[string]any{"action": "verify-team", "teamId": args[0]})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events [date]",
	Short: "List recent workflow events, optionally for one date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"action": "get-events", "limit": eventsMax}
		if len(args) == 1 {
			body["dateStr"] = args[0]
		}
		return admin(body)
	},
}

var stateCmd = &cobra.Command{
	Use:   "state [date] [time]",
	Short: "Show the request state of a slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return admin(map[string]any{"action": "get-request-state", "dateStr": args[0], "time": args[1]})
	},
}

func dateArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return time.Now().Format("2006-01-02")
}

func admin(body map[string]any) error {
	return performRequest(http.MethodPost, "/api/admin", body)
}

func matching(body map[string]any) error {
	return performRequest(http.MethodPost, "/api/matching", body)
}

func performRequest(method, endpoint string, body any) error {
	target, err := url.Parse(host + endpoint)
	if err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}
	if dryRun {
		q := target.Query()
		q.Set("dry_run", "true")
		target.RawQuery = q.Encode()
	}
	fmt.Printf("Making request to %s\n", target)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	var pretty bytes.Buffer
	if json.Indent(&pretty, respBody, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(respBody))
	}
	return nil
}
