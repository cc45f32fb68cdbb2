// Package provider builds the Anthropic client the agent talks to.
package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = anthropic.ModelClaudeSonnet4_20250514

// NewAnthropicClient returns a client for apiKey. An empty baseURL keeps the
// SDK default (which also honors ANTHROPIC_BASE_URL).
func NewAnthropicClient(apiKey, baseURL string, extra ...option.RequestOption) *anthropic.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)
	c := anthropic.NewClient(opts...)
	return &c
}
