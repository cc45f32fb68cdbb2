package windowing_test

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/internal/windowing"
	"github.com/stretchr/testify/assert"
)

func TestHeuristicCounter(t *testing.T) {
	const o = windowing.BlockOverhead
	tests := []struct {
		name string
		msg  anthropic.MessageParam
		want int
	}{
		{"empty text is overhead only", user(text("")), o},
		{"runes not bytes", user(text("hello"), text("été")), 5 + 3 + 2*o},
		{"string tool result", user(resultText("t1", "abcdef")), 6 + o},
		{"nested tool result", user(resultNested("t1", "hi", "世界")), 4 + o},
		{"payloadless tool result", user(result("t1", false)), o},
		{"tool_use is overhead only", assistant(toolUse("t1")), o},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windowing.HeuristicCounter{}.Count(tt.msg))
		})
	}
}

func TestCountSpan(t *testing.T) {
	const o = windowing.BlockOverhead
	msgs := []anthropic.MessageParam{
		user(text("a")),
		assistant(text("b"), text("c")),
		user(resultText("t1", "xyz")),
	}
	c := windowing.HeuristicCounter{}
	assert.Equal(t, 1+o, windowing.CountSpan(c, windowing.Span{Start: 0, End: 1}, msgs))
	assert.Equal(t, (2+2*o)+(3+o), windowing.CountSpan(c, windowing.Span{Start: 1, End: 3}, msgs))
	assert.Equal(t, 3+o, windowing.CountSpan(c, windowing.Span{Start: 2, End: 9}, msgs), "span past the end is clipped")
}
