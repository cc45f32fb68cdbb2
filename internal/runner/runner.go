package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/gAmUssA/confluent-mcp-agent/internal/telemetry"
	"github.com/gAmUssA/confluent-mcp-agent/internal/windowing"
	"github.com/google/uuid"
)

const (
	DefaultMaxTokens = 1024
	DefaultMaxSteps  = 10
)

var (
	// ErrMaxToolSteps is returned when the model is still asking for tools
	// after MaxSteps round trips.
	ErrMaxToolSteps = errors.New("runner: tool step limit reached")

	// ErrOverBudget is returned when the newest message group alone does not
	// fit the token budget. No request is sent.
	ErrOverBudget = errors.New("runner: newest message group exceeds token budget")
)

// Runner calls the model and executes tool calls. The zero value of every
// field except Client is usable.
type Runner struct {
	Client    *anthropic.Client
	MaxTokens int64 // used when the request carries none
	MaxSteps  int
	Budget    int // estimated input tokens per step; 0 sends everything
	Counter   windowing.TokenCounter
	Logger    *slog.Logger
}

// Call implements advisor.CallFunc.
func (r *Runner) Call(ctx context.Context, req *advisor.Request) (*advisor.Response, error) {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = uuid.NewString()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}
	log := r.logger().With("turn_id", turnID)

	maxSteps := r.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	conv := slices.Clone(req.Messages)
	var usage advisor.Usage
	for step := 1; step <= maxSteps; step++ {
		msg, results, err := r.RunOneStep(ctx, req, conv)
		if err != nil {
			return nil, err
		}
		usage.InputTokens += msg.Usage.InputTokens
		usage.OutputTokens += msg.Usage.OutputTokens
		log.DebugContext(ctx, "runner: step done",
			"step", step, "stop_reason", msg.StopReason, "tool_results", len(results))

		if len(results) == 0 {
			return &advisor.Response{Message: msg, Steps: step, Usage: usage, Context: req.Context}, nil
		}
		conv = append(conv, msg.ToParam(), anthropic.NewUserMessage(results...))
	}
	return nil, fmt.Errorf("%w (%d)", ErrMaxToolSteps, maxSteps)
}

// RunOneStep sends conv with the model, system prompt and tools of req and
// executes every tool_use block of the reply. The returned tool_result blocks
// belong in the next user turn; none means the model is done.
func (r *Runner) RunOneStep(ctx context.Context, req *advisor.Request, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	window, err := r.prepare(ctx, req.Model, conv)
	if err != nil {
		return nil, nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = r.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  window,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, t.Param())
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("runner: messages: %w", err)
	}

	var results []anthropic.ContentBlockParamUnion
	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			results = append(results, r.execTool(ctx, req, tu))
		}
	}
	return msg, results, nil
}

func (r *Runner) prepare(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) ([]anthropic.MessageParam, error) {
	if r.Budget <= 0 {
		return conv, nil
	}
	w := windowing.Window{Budget: r.Budget, Counter: r.Counter, Logger: r.logger()}
	window, stats := w.Fit(ctx, conv)

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":            turnID,
		"model":              string(model),
		"budget":             stats.Budget,
		"total_estimated":    stats.Tokens,
		"included_groups":    stats.Kept,
		"skipped_groups":     stats.Dropped,
		"over_budget_newest": stats.NewestOverBudget,
	})
	r.logger().DebugContext(ctx, "runner: window prepared",
		"budget", stats.Budget, "estimated", stats.Tokens, "kept", stats.Kept, "dropped", stats.Dropped)

	if stats.NewestOverBudget {
		return nil, fmt.Errorf("%w (budget %d)", ErrOverBudget, r.Budget)
	}
	return window, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
