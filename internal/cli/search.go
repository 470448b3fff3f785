package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up matching document chunks without chatting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hits, err := api.Search(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if len(hits) == 0 {
			fmt.Println("No matching documents.")
			return nil
		}

		for _, hit := range hits {
			fmt.Println(titleStyle.Render(hit.Title))
			fmt.Println(hit.Chunk)
			fmt.Println()
		}
		return nil
	},
}
