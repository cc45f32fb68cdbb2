package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/gAmUssA/confluent-mcp-agent/internal/telemetry"
	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

// execTool runs one tool_use block. Failures are reported to the model as an
// error tool_result, never to the caller.
func (r *Runner) execTool(ctx context.Context, req *advisor.Request, tu anthropic.ToolUseBlock) anthropic.ContentBlockParamUnion {
	input := json.RawMessage(tu.JSON.Input.Raw())
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()

	// Telemetry carries sizes and a generic error, never payloads.
	emit := func(outputSize int, errStr string) {
		fields := map[string]any{
			"turn_id":     turnID,
			"tool_name":   tu.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(input),
			"output_size": outputSize,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}

	def, ok := lookup(req.Tools, tu.Name)
	if !ok {
		r.logger().WarnContext(ctx, "runner: unknown tool", "tool", tu.Name)
		emit(0, "tool not found")
		return anthropic.NewToolResultBlock(tu.ID, "tool not found: "+tu.Name, true)
	}

	out, err := def.Function(ctx, input)
	if err != nil {
		r.logger().WarnContext(ctx, "runner: tool failed", "tool", tu.Name, "error", err)
		emit(0, "tool error")
		return anthropic.NewToolResultBlock(tu.ID, err.Error(), true)
	}
	r.logger().DebugContext(ctx, "runner: tool done", "tool", tu.Name, "output_size", len(out))
	emit(len(out), "")
	return anthropic.NewToolResultBlock(tu.ID, out, false)
}

func lookup(defs []tools.ToolDefinition, name string) (tools.ToolDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return tools.ToolDefinition{}, false
}
