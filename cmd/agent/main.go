package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/gAmUssA/confluent-mcp-agent/internal/chat"
	"github.com/gAmUssA/confluent-mcp-agent/internal/config"
	"github.com/gAmUssA/confluent-mcp-agent/internal/mcp"
	"github.com/gAmUssA/confluent-mcp-agent/internal/provider"
	"github.com/gAmUssA/confluent-mcp-agent/internal/runner"
	"github.com/gAmUssA/confluent-mcp-agent/memory"
	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content, err := run(ctx, cfg, log)
	if err != nil {
		log.Error("agent failed", "error", err)
		stop()
		os.Exit(1)
	}
	fmt.Println("\nASSISTANT: " + content)
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	servers, err := config.LoadMCPServers(cfg.MCPServersConfig)
	if err != nil {
		return "", err
	}
	if len(servers) == 0 {
		log.Warn("no MCP servers configured; only built-in tools are available", "path", cfg.MCPServersConfig)
	}
	sessions, err := mcp.ConnectAll(ctx, servers, log)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := mcp.CloseAll(sessions); err != nil {
			log.Warn("closing MCP sessions", "error", err)
		}
	}()

	var repo memory.Repository
	if cfg.MemoryDir != "" {
		fr, err := memory.NewFileRepository(cfg.MemoryDir)
		if err != nil {
			return "", err
		}
		repo = fr
	}
	chatMemory := memory.NewWindow(repo, cfg.MemoryMaxMessages)

	r := &runner.Runner{
		Client:    provider.NewAnthropicClient(cfg.APIKey, cfg.BaseURL),
		MaxTokens: cfg.MaxTokens,
		MaxSteps:  cfg.MaxToolSteps,
		Budget:    cfg.TokenBudget,
		Logger:    log,
	}

	client, err := chat.NewBuilder(r.Call).
		DefaultSystem(systemPrompt).
		DefaultModel(anthropic.Model(cfg.Model)).
		DefaultMaxTokens(cfg.MaxTokens).
		DefaultAdvisors(advisor.NewSimpleLogger(cfg.LogRequests, cfg.LogResponses)).
		DefaultToolCallbacks(mcp.NewToolCallbackProvider(sessions), tools.Static(tools.Registry())).
		DefaultAdvisors(advisor.NewMessageChatMemory(chatMemory, advisor.WithMemoryLogger(log))).
		WithLogger(log).
		Build(ctx)
	if err != nil {
		return "", err
	}

	return client.Prompt(summaryPrompt(cfg.SourceTopic, cfg.SummaryTopic)).Content(ctx)
}
