// Package cli provides the command-line client for a docchat server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docchat-io/docchat/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	username  string
	password  string

	// API client shared by all commands.
	api *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat is the command-line client for a docchat server: a chat
backend that answers with your indexed documents as context and keeps
conversation history server-side.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL, username, password)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default $DOCCHAT_SERVER_URL or http://localhost:5000)")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "basic-auth username (default $AUTH_USERNAME)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "basic-auth password (default $AUTH_PASSWORD)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(healthCmd)
}
