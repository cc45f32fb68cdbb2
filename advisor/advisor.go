package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

// Request is everything about to be sent to the model for one exchange.
// Advisors that need a different request build one with the With* helpers
// instead of mutating the one they were handed.
type Request struct {
	Model     anthropic.Model
	MaxTokens int64
	System    string
	Messages  []anthropic.MessageParam
	Tools     []tools.ToolDefinition
	Context   map[string]any
}

// WithMessages returns a shallow copy of r carrying msgs.
func (r *Request) WithMessages(msgs []anthropic.MessageParam) *Request {
	out := *r
	out.Messages = msgs
	return &out
}

// WithSystem returns a shallow copy of r carrying system.
func (r *Request) WithSystem(system string) *Request {
	out := *r
	out.System = system
	return &out
}

// WithContext returns a copy of r whose context map also holds key=value.
func (r *Request) WithContext(key string, value any) *Request {
	out := *r
	out.Context = make(map[string]any, len(r.Context)+1)
	maps.Copy(out.Context, r.Context)
	out.Context[key] = value
	return &out
}

// ContextString returns Context[key] when it is a non-empty string.
func (r *Request) ContextString(key string) (string, bool) {
	if r == nil || r.Context == nil {
		return "", false
	}
	s, ok := r.Context[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (r *Request) LogValue() slog.Value {
	if r == nil {
		return slog.StringValue("<nil>")
	}
	names := make([]string, 0, len(r.Tools))
	for _, t := range r.Tools {
		names = append(names, t.Name)
	}
	return slog.GroupValue(
		slog.String("model", string(r.Model)),
		slog.Int64("max_tokens", r.MaxTokens),
		slog.String("system", r.System),
		slog.String("messages", jsonString(r.Messages)),
		slog.Any("tools", names),
		slog.Any("context", r.Context),
	)
}

// Usage is the token usage summed over every step of an exchange.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is the outcome of one exchange: the final assistant message after
// any tool round trips.
type Response struct {
	Message *anthropic.Message
	Steps   int
	Usage   Usage
	Context map[string]any
}

// Content joins the text blocks of the final assistant message.
func (r *Response) Content() string {
	if r == nil || r.Message == nil {
		return ""
	}
	var parts []string
	for _, b := range r.Message.Content {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (r *Response) LogValue() slog.Value {
	if r == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{
		slog.String("content", r.Content()),
		slog.Int("steps", r.Steps),
		slog.Int64("input_tokens", r.Usage.InputTokens),
		slog.Int64("output_tokens", r.Usage.OutputTokens),
	}
	if r.Message != nil {
		attrs = append(attrs,
			slog.String("id", r.Message.ID),
			slog.String("model", string(r.Message.Model)),
			slog.String("stop_reason", string(r.Message.StopReason)),
		)
	}
	if len(r.Context) > 0 {
		attrs = append(attrs, slog.Any("context", r.Context))
	}
	return slog.GroupValue(attrs...)
}

// CallChain forwards a request to the rest of the pipeline.
type CallChain interface {
	NextCall(ctx context.Context, req *Request) (*Response, error)
}

// CallAdvisor observes or rewrites one exchange. Name and Order must be
// constant for the lifetime of the advisor.
type CallAdvisor interface {
	AdviseCall(ctx context.Context, req *Request, chain CallChain) (*Response, error)
	Name() string
	Order() int
}

// CallFunc is the terminal stage of a chain.
type CallFunc func(ctx context.Context, req *Request) (*Response, error)

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
