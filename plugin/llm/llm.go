// Package llm is the narrow boundary to the reasoning service: a single
// synchronous call that returns either free text or structured tool calls.
package llm

import (
	"context"
)

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one entry of the ordered conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Tool describes a capability the model may call. Parameters is a JSON
// Schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is a single reasoning-service call.
type Request struct {
	Model    string
	Messages []Message
	Tools    []Tool
	// ForceTool requires the model to answer with a tool call.
	ForceTool bool
	MaxTokens int
}

// ToolCall is a model-issued invocation. Arguments is the raw JSON object
// produced by the model and is untrusted.
type ToolCall struct {
	Name      string
	Arguments string
}

// Response carries the completion text and any tool calls, in model order.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Reasoner invokes the reasoning service.
type Reasoner interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
}

// ReasonerFunc adapts a function to the Reasoner interface.
type ReasonerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ReasonerFunc) Invoke(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
