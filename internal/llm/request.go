package llm

import (
	"github.com/ternlabs/tern/internal/tool"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation sent upstream.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// request is the streaming messages API payload. Tool descriptors marshal to
// the provider's advertisement shape themselves.
type request struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	System      string            `json:"system,omitempty"`
	Stream      bool              `json:"stream"`
	Messages    []Message         `json:"messages"`
	Tools       []tool.Descriptor `json:"tools,omitempty"`
}
