// Package config reads the agent settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config is the resolved runtime configuration.
type Config struct {
	APIKey  string
	BaseURL string

	Model          string
	MaxTokens      int64
	MaxToolSteps   int
	TokenBudget    int
	RequestTimeout time.Duration

	LogRequests  bool
	LogResponses bool
	LogLevel     string
	LogFormat    string

	MemoryMaxMessages int
	MemoryDir         string

	MCPServersConfig string

	SourceTopic  string
	SummaryTopic string
}

const (
	DefaultModel          = "claude-sonnet-4-20250514"
	DefaultMaxTokens      = 1024
	DefaultMaxToolSteps   = 10
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMemoryMessages = 20
	DefaultMCPConfig      = "mcp-servers.yaml"
	DefaultSourceTopic    = "user_messages"
	DefaultSummaryTopic   = "llm_summaries"
)

// Load reads the environment and validates the result. Every malformed
// variable is reported, not just the first.
func Load() (*Config, error) {
	var errs []error
	c := &Config{
		APIKey:            os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL:           os.Getenv("ANTHROPIC_BASE_URL"),
		Model:             str("AGENT_MODEL", DefaultModel),
		MaxTokens:         parse(&errs, "AGENT_MAX_TOKENS", int64(DefaultMaxTokens), cast.ToInt64E),
		MaxToolSteps:      parse(&errs, "AGENT_MAX_TOOL_STEPS", DefaultMaxToolSteps, cast.ToIntE),
		TokenBudget:       parse(&errs, "AGENT_TOKEN_BUDGET", 0, cast.ToIntE),
		RequestTimeout:    parse(&errs, "AGENT_REQUEST_TIMEOUT", DefaultRequestTimeout, cast.ToDurationE),
		LogRequests:       parse(&errs, "AGENT_LOG_REQUESTS", true, cast.ToBoolE),
		LogResponses:      parse(&errs, "AGENT_LOG_RESPONSES", false, cast.ToBoolE),
		LogLevel:          strings.ToLower(str("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(str("LOG_FORMAT", "text")),
		MemoryMaxMessages: parse(&errs, "CHAT_MEMORY_MAX_MESSAGES", DefaultMemoryMessages, cast.ToIntE),
		MemoryDir:         os.Getenv("CHAT_MEMORY_DIR"),
		MCPServersConfig:  str("MCP_SERVERS_CONFIG", DefaultMCPConfig),
		SourceTopic:       str("SOURCE_TOPIC", DefaultSourceTopic),
		SummaryTopic:      str("SUMMARY_TOPIC", DefaultSummaryTopic),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("ANTHROPIC_API_KEY is required"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("AGENT_MAX_TOKENS must be positive, got %d", c.MaxTokens))
	}
	if c.MaxToolSteps <= 0 {
		errs = append(errs, fmt.Errorf("AGENT_MAX_TOOL_STEPS must be positive, got %d", c.MaxToolSteps))
	}
	if c.TokenBudget < 0 {
		errs = append(errs, fmt.Errorf("AGENT_TOKEN_BUDGET must not be negative, got %d", c.TokenBudget))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("AGENT_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if c.MemoryMaxMessages <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_MEMORY_MAX_MESSAGES must be positive, got %d", c.MemoryMaxMessages))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if strings.TrimSpace(c.SourceTopic) == "" {
		errs = append(errs, errors.New("SOURCE_TOPIC must not be empty"))
	}
	return errors.Join(errs...)
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parse[T any](errs *[]error, key string, def T, conv func(any) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := conv(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}
