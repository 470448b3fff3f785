package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the server's dependency status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := api.HealthCheck(context.Background())
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}

		fmt.Printf("status:     %s\n", health.Status)
		fmt.Printf("redis:      %s\n", health.Redis)
		fmt.Printf("completion: %s\n", health.Completion)
		fmt.Printf("search:     %s\n", health.Search)
		return nil
	},
}
