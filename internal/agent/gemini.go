package agent

import (
	"context"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "models/gemini-1.5-pro"

// Gemini implements Completer over the generative-ai SDK's function
// calling.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Complete(ctx context.Context, system string, conversation []Message, tools []ToolSpec) (*Completion, error) {
	if len(conversation) == 0 {
		return nil, fmt.Errorf("empty conversation")
	}

	model := g.client.GenerativeModel(geminiModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	if len(tools) > 0 {
		model.Tools = toGenaiTools(tools)
	}

	session := model.StartChat()
	for _, msg := range conversation[:len(conversation)-1] {
		session.History = append(session.History, toGenaiContent(msg))
	}

	last := toGenaiContent(conversation[len(conversation)-1])
	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	completion := &Completion{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			completion.Text += string(p)
		case genai.FunctionCall:
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				Name: p.Name,
				Args: p.Args,
			})
		}
	}

	return completion, nil
}

func toGenaiContent(msg Message) *genai.Content {
	content := &genai.Content{}

	switch msg.Role {
	case RoleModel:
		content.Role = "model"
		if msg.Text != "" {
			content.Parts = append(content.Parts, genai.Text(msg.Text))
		}
		for _, call := range msg.Calls {
			content.Parts = append(content.Parts, genai.FunctionCall{
				Name: call.Name,
				Args: call.Args,
			})
		}
	case RoleTool:
		content.Role = "function"
		content.Parts = append(content.Parts, genai.FunctionResponse{
			Name:     msg.ToolName,
			Response: msg.ToolResponse,
		})
	default:
		content.Role = "user"
		content.Parts = append(content.Parts, genai.Text(msg.Text))
	}

	return content
}

func toGenaiTools(specs []ToolSpec) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		properties := make(map[string]*genai.Schema, len(spec.Params))
		for name, description := range spec.Params {
			properties[name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: description,
			}
		}

		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   spec.Required,
			},
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}
