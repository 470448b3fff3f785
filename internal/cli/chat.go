package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatConversation string

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	metaStyle      = lipgloss.NewStyle().Faint(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message, or start an interactive session",
	Long: `Send a single message to the server, or start an interactive chat
session when no message is given.

Without --conversation a fresh conversation id is generated, so each
invocation starts from a clean transcript.

Examples:
  docchat chat "What does the handbook say about vacation?"
  docchat chat --conversation support-42 "And about sick days?"
  docchat chat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "conversation id (default: a fresh UUID)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	conversationID := chatConversation
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	if len(args) == 1 {
		return sendMessage(ctx, conversationID, args[0])
	}

	fmt.Println(metaStyle.Render(fmt.Sprintf("conversation %s (empty line to quit)", conversationID)))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}
		if err := sendMessage(ctx, conversationID, message); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func sendMessage(ctx context.Context, conversationID, message string) error {
	result, err := api.Chat(ctx, conversationID, message)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	fmt.Println(assistantStyle.Render(result.Response))
	fmt.Println(metaStyle.Render(fmt.Sprintf("[conversation %s, stored in %s]", result.ConversationID, result.Storage)))
	return nil
}
