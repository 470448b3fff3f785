package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <conversation-id>",
	Short: "Delete a conversation's stored history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := api.Reset(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Printf("%s (storage: %s)\n", result.Message, result.Storage)
		return nil
	},
}
