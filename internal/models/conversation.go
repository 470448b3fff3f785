// Package models defines the conversation wire and storage types.
package models

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultConversationID is used when the caller supplies no identifier.
const DefaultConversationID = "default"

// DefaultSystemPrompt seeds every new conversation.
const DefaultSystemPrompt = "You are an AI assistant that helps people find information."

// ContentPart is one typed block of turn content. In practice a turn
// always carries a single text part, but the list shape is preserved in
// storage and on the wire.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Turn is one message entry in a conversation.
type Turn struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// NewTurn creates a turn with a single text content part.
func NewTurn(role, text string) Turn {
	return Turn{
		Role:    role,
		Content: []ContentPart{{Type: "text", Text: text}},
	}
}

// Text returns the concatenated text of all content parts.
func (t Turn) Text() string {
	if len(t.Content) == 1 {
		return t.Content[0].Text
	}
	var s string
	for _, p := range t.Content {
		s += p.Text
	}
	return s
}

// Conversation is an ordered, append-only sequence of turns. The full
// sequence is submitted to the completion service on every request.
type Conversation []Turn

// NewConversation creates a conversation seeded with the default system turn.
func NewConversation() Conversation {
	return Conversation{NewTurn(RoleSystem, DefaultSystemPrompt)}
}
