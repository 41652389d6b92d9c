package agent

import "context"

// Message roles mirror the inference backend's conversation roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// Message is one conversation turn. Model turns may carry requested tool
// calls; tool turns carry the serialized result of one call.
type Message struct {
	Role         string
	Text         string
	Calls        []ToolCall
	ToolName     string
	ToolResponse map[string]any
}

// ToolCall is a structured request from the backend naming one of the
// scheduling tools and its arguments.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Completion is one round trip's outcome: free text, tool calls, or both.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolSpec declares one callable tool to the backend. All parameters of
// the scheduling tools are strings.
type ToolSpec struct {
	Name        string
	Description string
	Params      map[string]string // name -> description
	Required    []string
}

// Completer is the inference backend: one synchronous call per round trip.
type Completer interface {
	Complete(ctx context.Context, system string, conversation []Message, tools []ToolSpec) (*Completion, error)
}
