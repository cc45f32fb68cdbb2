package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// ErrDuplicateTool is returned when two providers expose the same tool name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ToolDefinition is a tool the model may call. Function receives the raw JSON
// input produced by the model and returns the text handed back as tool_result.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// Param converts the definition into the Messages API tool declaration.
func (d ToolDefinition) Param() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
		Name:        d.Name,
		Description: anthropic.String(d.Description),
		InputSchema: d.InputSchema,
	}}
}

// GenerateSchema reflects T into the input schema expected by the Messages API.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
		Required:   schema.Required,
	}
}

// Provider supplies tool definitions. Remote providers may perform I/O, so
// the call is context-aware.
type Provider interface {
	ToolCallbacks(ctx context.Context) ([]ToolDefinition, error)
}

// Static is a Provider over a fixed list of definitions.
type Static []ToolDefinition

func (s Static) ToolCallbacks(context.Context) ([]ToolDefinition, error) {
	out := make([]ToolDefinition, len(s))
	copy(out, s)
	return out, nil
}

// Resolve collects the definitions of every provider in order and rejects
// duplicate names.
func Resolve(ctx context.Context, providers ...Provider) ([]ToolDefinition, error) {
	var out []ToolDefinition
	seen := make(map[string]struct{})
	for _, p := range providers {
		if p == nil {
			continue
		}
		defs, err := p.ToolCallbacks(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve tools: %w", err)
		}
		for _, d := range defs {
			if _, dup := seen[d.Name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, d.Name)
			}
			seen[d.Name] = struct{}{}
			out = append(out, d)
		}
	}
	return out, nil
}
