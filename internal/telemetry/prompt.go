package telemetry

import (
	"context"

	"github.com/gAmUssA/confluent-mcp-agent/internal/metrics"
)

// EmitPromptShape records the size of a user prompt without its text.
func EmitPromptShape(ctx context.Context, conversationID, prompt string) {
	if !Enabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	s := metrics.Measure(prompt)
	Emit("prompt_shape", map[string]any{
		"turn_id":         turnID,
		"conversation_id": conversationID,
		"prompt": map[string]any{
			"bytes": s.Bytes,
			"runes": s.Runes,
			"words": s.Words,
			"lines": s.Lines,
		},
	})
}
