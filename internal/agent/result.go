package agent

// ToolResult is the tagged union of tool outcomes. Every result is
// explicitly serialized to a payload map before it is appended to the
// conversation; the backend never sees duck-typed values.
type ToolResult interface {
	Payload() map[string]any
}

// TextResult is a ready-to-relay sentence, including soft failures like
// "service not found".
type TextResult string

func (r TextResult) Payload() map[string]any {
	return map[string]any{"content": string(r)}
}

// StructuredResult carries machine-shaped data the model formats itself.
type StructuredResult map[string]any

func (r StructuredResult) Payload() map[string]any {
	return map[string]any(r)
}
