package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host  string
	token string
)

var rootCmd = &cobra.Command{
	Use:   "slot-cli",
	Short: "A CLI to operate the slot-matcher back office",
	Long: `A command-line interface for the admin endpoints of the slot-matcher
server. Log in once and pass the token with --token or SLOT_ADMIN_TOKEN.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SLOT_ADMIN_TOKEN"), "Admin bearer token")
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
