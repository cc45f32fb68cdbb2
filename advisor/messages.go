package advisor

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/memory"
)

// messageText joins the text blocks of m; tool blocks are ignored.
func messageText(m anthropic.MessageParam) string {
	var parts []string
	for _, blk := range m.Content {
		if tb := blk.OfText; tb != nil && tb.Text != "" {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// userMessages extracts the user text of msgs in the persisted form.
func userMessages(msgs []anthropic.MessageParam) []memory.Message {
	var out []memory.Message
	for _, m := range msgs {
		if m.Role != anthropic.MessageParamRoleUser {
			continue
		}
		if text := messageText(m); text != "" {
			out = append(out, memory.Message{Role: memory.RoleUser, Text: text})
		}
	}
	return out
}

// toParams rebuilds Messages API params from remembered messages. System
// messages have no place in the message list and are returned separately.
func toParams(history []memory.Message) (params []anthropic.MessageParam, system []string) {
	for _, m := range history {
		switch m.Role {
		case memory.RoleUser:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		case memory.RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		case memory.RoleSystem:
			system = append(system, m.Text)
		}
	}
	return params, system
}
