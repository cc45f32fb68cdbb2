package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

// maxToolName is the longest tool name the Messages API accepts.
const maxToolName = 64

var invalidToolChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ErrToolFailed wraps the text of a tool result the server flagged as an error.
var ErrToolFailed = errors.New("mcp tool reported an error")

// ToolFilter decides whether a server tool is offered to the model.
type ToolFilter func(session string, tool mcpgo.Tool) bool

// ToolCallbackProvider lists the tools of every session and adapts them to
// tools.ToolDefinition.
type ToolCallbackProvider struct {
	sessions []*Session
	prefix   bool
	filter   ToolFilter
}

type ProviderOption func(*ToolCallbackProvider)

// WithToolNamePrefix controls whether tool names are prefixed with the
// session name. On by default so tools of different servers cannot collide.
func WithToolNamePrefix(on bool) ProviderOption {
	return func(p *ToolCallbackProvider) { p.prefix = on }
}

func WithToolFilter(f ToolFilter) ProviderOption {
	return func(p *ToolCallbackProvider) { p.filter = f }
}

func NewToolCallbackProvider(sessions []*Session, opts ...ProviderOption) *ToolCallbackProvider {
	p := &ToolCallbackProvider{sessions: sessions, prefix: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ToolCallbacks implements tools.Provider.
func (p *ToolCallbackProvider) ToolCallbacks(ctx context.Context) ([]tools.ToolDefinition, error) {
	var defs []tools.ToolDefinition
	for _, s := range p.sessions {
		res, err := s.Client.ListTools(ctx, mcpgo.ListToolsRequest{})
		if err != nil {
			return nil, fmt.Errorf("mcp %s: list tools: %w", s.Name, err)
		}
		for _, t := range res.Tools {
			if p.filter != nil && !p.filter(s.Name, t) {
				continue
			}
			schema, err := inputSchema(t)
			if err != nil {
				return nil, fmt.Errorf("mcp %s: tool %q: %w", s.Name, t.Name, err)
			}
			defs = append(defs, tools.ToolDefinition{
				Name:        p.toolName(s.Name, t.Name),
				Description: t.Description,
				InputSchema: schema,
				Function:    callFunc(s, t.Name),
			})
		}
	}
	return defs, nil
}

func (p *ToolCallbackProvider) toolName(session, tool string) string {
	name := tool
	if p.prefix {
		name = session + "_" + tool
	}
	name = invalidToolChars.ReplaceAllString(name, "_")
	if len(name) > maxToolName {
		name = name[len(name)-maxToolName:]
	}
	return name
}

func inputSchema(t mcpgo.Tool) (anthropic.ToolInputSchemaParam, error) {
	if len(t.RawInputSchema) > 0 {
		var raw struct {
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		if err := json.Unmarshal(t.RawInputSchema, &raw); err != nil {
			return anthropic.ToolInputSchemaParam{}, fmt.Errorf("input schema: %w", err)
		}
		return anthropic.ToolInputSchemaParam{Properties: raw.Properties, Required: raw.Required}, nil
	}
	return anthropic.ToolInputSchemaParam{
		Properties: t.InputSchema.Properties,
		Required:   t.InputSchema.Required,
	}, nil
}

func callFunc(s *Session, tool string) func(context.Context, json.RawMessage) (string, error) {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		args, err := arguments(input)
		if err != nil {
			return "", fmt.Errorf("mcp %s: %s: %w", s.Name, tool, err)
		}
		req := mcpgo.CallToolRequest{}
		req.Params.Name = tool
		req.Params.Arguments = args
		res, err := s.Client.CallTool(ctx, req)
		if err != nil {
			return "", fmt.Errorf("mcp %s: %s: %w", s.Name, tool, err)
		}
		text, err := resultText(res)
		if err != nil {
			return "", fmt.Errorf("mcp %s: %s: %w", s.Name, tool, err)
		}
		if res.IsError {
			return "", fmt.Errorf("%w: %s", ErrToolFailed, text)
		}
		return text, nil
	}
}

// arguments decodes the model's tool input. Empty input means no arguments.
func arguments(input json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(input, &v); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	args, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("arguments must be an object: %w", err)
	}
	return args, nil
}

// resultText joins text content with newlines and renders any other content
// as JSON.
func resultText(res *mcpgo.CallToolResult) (string, error) {
	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("encode %T content: %w", v, err)
			}
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, "\n"), nil
}

var _ tools.Provider = (*ToolCallbackProvider)(nil)
