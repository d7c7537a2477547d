package assistant

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// Transcript is a conversation, oldest turn first.
type Transcript []Turn

// Context renders the transcript as "role: content" lines.
func (t Transcript) Context() string {
	lines := make([]string, len(t))
	for i, turn := range t {
		lines[i] = string(turn.Role) + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}
