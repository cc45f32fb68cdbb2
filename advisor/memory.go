package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/memory"
)

const (
	MessageChatMemoryName = "MessageChatMemoryAdvisor"

	// ConversationIDKey selects the conversation in Request.Context.
	ConversationIDKey = "chat_memory_conversation_id"

	// DefaultChatMemoryOrder runs memory ahead of the other advisors so they
	// observe the request with its history attached.
	DefaultChatMemoryOrder = math.MinInt32 + 1000
)

// ChatMemory is the storage the memory advisor reads and appends to.
type ChatMemory interface {
	Add(ctx context.Context, conversationID string, msgs ...memory.Message) error
	Get(ctx context.Context, conversationID string) ([]memory.Message, error)
}

// MessageChatMemory replays remembered messages ahead of each request and
// remembers the user prompt and the assistant reply.
type MessageChatMemory struct {
	memory         ChatMemory
	conversationID string
	order          int
	logger         *slog.Logger
}

type MemoryOption func(*MessageChatMemory)

// WithConversationID sets the conversation used when the request names none.
func WithConversationID(id string) MemoryOption {
	return func(m *MessageChatMemory) {
		if strings.TrimSpace(id) != "" {
			m.conversationID = id
		}
	}
}

func WithOrder(order int) MemoryOption {
	return func(m *MessageChatMemory) { m.order = order }
}

func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(m *MessageChatMemory) { m.logger = l }
}

func NewMessageChatMemory(mem ChatMemory, opts ...MemoryOption) *MessageChatMemory {
	m := &MessageChatMemory{
		memory:         mem,
		conversationID: memory.DefaultConversationID,
		order:          DefaultChatMemoryOrder,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func (m *MessageChatMemory) Name() string { return MessageChatMemoryName }
func (m *MessageChatMemory) Order() int   { return m.order }

func (m *MessageChatMemory) AdviseCall(ctx context.Context, req *Request, chain CallChain) (*Response, error) {
	convID := m.conversationID
	if id, ok := req.ContextString(ConversationIDKey); ok {
		convID = id
	}

	history, err := m.memory.Get(ctx, convID)
	if err != nil {
		return nil, fmt.Errorf("chat memory: load %q: %w", convID, err)
	}
	if err := m.memory.Add(ctx, convID, userMessages(req.Messages)...); err != nil {
		return nil, fmt.Errorf("chat memory: store prompt %q: %w", convID, err)
	}

	params, system := toParams(history)
	msgs := make([]anthropic.MessageParam, 0, len(params)+len(req.Messages))
	msgs = append(msgs, params...)
	msgs = append(msgs, req.Messages...)
	processed := req.WithMessages(msgs)
	if len(system) > 0 {
		if req.System != "" {
			system = append([]string{req.System}, system...)
		}
		processed = processed.WithSystem(strings.Join(system, "\n"))
	}

	resp, err := chain.NextCall(ctx, processed)
	if err != nil {
		return resp, err
	}

	if text := resp.Content(); text != "" {
		reply := memory.Message{Role: memory.RoleAssistant, Text: text}
		if err := m.memory.Add(ctx, convID, reply); err != nil {
			m.logger.WarnContext(ctx, "chat memory: store reply failed", "conversation_id", convID, "error", err)
		}
	}
	return resp, nil
}

var _ CallAdvisor = (*MessageChatMemory)(nil)
