// Package chat is the fluent entry point for one-shot exchanges: a Builder
// holds the defaults, a Client hands out prompts, and a PromptSpec runs one
// request through the advisor chain.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/gAmUssA/confluent-mcp-agent/internal/telemetry"
	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

// ErrEmptyPrompt is returned by Call when the user text is blank.
var ErrEmptyPrompt = errors.New("chat: empty prompt")

const DefaultMaxTokens = 1024

type Builder struct {
	terminal  advisor.CallFunc
	system    string
	model     anthropic.Model
	maxTokens int64
	advisors  []advisor.CallAdvisor
	providers []tools.Provider
	logger    *slog.Logger
}

// NewBuilder starts a client whose chain ends in terminal.
func NewBuilder(terminal advisor.CallFunc) *Builder {
	return &Builder{terminal: terminal, maxTokens: DefaultMaxTokens}
}

func (b *Builder) DefaultSystem(text string) *Builder {
	b.system = text
	return b
}

func (b *Builder) DefaultModel(model anthropic.Model) *Builder {
	b.model = model
	return b
}

func (b *Builder) DefaultMaxTokens(n int64) *Builder {
	if n > 0 {
		b.maxTokens = n
	}
	return b
}

// DefaultAdvisors adds advisors to every prompt. Repeated calls accumulate.
func (b *Builder) DefaultAdvisors(advisors ...advisor.CallAdvisor) *Builder {
	b.advisors = append(b.advisors, advisors...)
	return b
}

// DefaultToolCallbacks adds tool providers. They are resolved once, by Build.
func (b *Builder) DefaultToolCallbacks(providers ...tools.Provider) *Builder {
	b.providers = append(b.providers, providers...)
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build resolves the tool providers and freezes the defaults.
func (b *Builder) Build(ctx context.Context) (*Client, error) {
	if b.terminal == nil {
		return nil, advisor.ErrNoTerminal
	}
	defs, err := tools.Resolve(ctx, b.providers...)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	log := b.logger
	if log == nil {
		log = slog.Default()
	}
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	log.DebugContext(ctx, "chat client built", "model", string(b.model), "tools", names, "advisors", len(b.advisors))

	return &Client{
		terminal:  b.terminal,
		system:    b.system,
		model:     b.model,
		maxTokens: b.maxTokens,
		advisors:  append([]advisor.CallAdvisor(nil), b.advisors...),
		tools:     defs,
		logger:    log,
	}, nil
}

// Client is immutable and safe for concurrent prompts.
type Client struct {
	terminal  advisor.CallFunc
	system    string
	model     anthropic.Model
	maxTokens int64
	advisors  []advisor.CallAdvisor
	tools     []tools.ToolDefinition
	logger    *slog.Logger
}

// Tools returns the resolved tool definitions.
func (c *Client) Tools() []tools.ToolDefinition {
	return append([]tools.ToolDefinition(nil), c.tools...)
}

// Prompt starts a request carrying user text.
func (c *Client) Prompt(text string) *PromptSpec {
	return &PromptSpec{client: c, user: text, system: c.system}
}

// PromptSpec is one request under construction. It is not safe for
// concurrent use.
type PromptSpec struct {
	client         *Client
	user           string
	system         string
	conversationID string
	advisors       []advisor.CallAdvisor
}

// System replaces the default system prompt for this request.
func (p *PromptSpec) System(text string) *PromptSpec {
	p.system = text
	return p
}

// ConversationID selects the chat memory conversation.
func (p *PromptSpec) ConversationID(id string) *PromptSpec {
	p.conversationID = id
	return p
}

// Advisors adds advisors for this request only.
func (p *PromptSpec) Advisors(advisors ...advisor.CallAdvisor) *PromptSpec {
	p.advisors = append(p.advisors, advisors...)
	return p
}

// Call runs the request through the advisor chain.
func (p *PromptSpec) Call(ctx context.Context) (*advisor.Response, error) {
	if strings.TrimSpace(p.user) == "" {
		return nil, ErrEmptyPrompt
	}
	c := p.client
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, uuid.NewString())
	}
	telemetry.EmitPromptShape(ctx, p.conversationID, p.user)

	req := &advisor.Request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    p.system,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(p.user))},
		Tools:     c.tools,
	}
	if p.conversationID != "" {
		req = req.WithContext(advisor.ConversationIDKey, p.conversationID)
	}

	advisors := make([]advisor.CallAdvisor, 0, len(c.advisors)+len(p.advisors))
	advisors = append(advisors, c.advisors...)
	advisors = append(advisors, p.advisors...)
	return advisor.NewChain(c.terminal, advisors...).Call(ctx, req)
}

// Content runs the request and returns the text of the reply.
func (p *PromptSpec) Content(ctx context.Context) (string, error) {
	resp, err := p.Call(ctx)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}
