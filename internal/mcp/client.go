package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/gAmUssA/confluent-mcp-agent/internal/config"
)

// ClientName and ClientVersion identify the agent during initialization.
const (
	ClientName    = "confluent-mcp-agent"
	ClientVersion = "0.1.0"
)

// Client is the part of an MCP client session the agent uses.
// *client.Client from mcp-go satisfies it.
type Client interface {
	Initialize(ctx context.Context, req mcpgo.InitializeRequest) (*mcpgo.InitializeResult, error)
	ListTools(ctx context.Context, req mcpgo.ListToolsRequest) (*mcpgo.ListToolsResult, error)
	CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
	Close() error
}

// Session is an initialized client together with the server it talks to.
type Session struct {
	Name   string
	Client Client
	Server mcpgo.Implementation
}

// Connect opens a session to one configured server.
func Connect(ctx context.Context, srv config.MCPServer) (*Session, error) {
	c, err := dial(ctx, srv)
	if err != nil {
		return nil, fmt.Errorf("mcp %s: %w", srv.Name, err)
	}
	s, err := Initialize(ctx, srv.Name, c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

// Initialize performs the protocol handshake on an already started client.
func Initialize(ctx context.Context, name string, c Client) (*Session, error) {
	req := mcpgo.InitializeRequest{}
	req.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcpgo.Implementation{Name: ClientName, Version: ClientVersion}
	res, err := c.Initialize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mcp %s: initialize: %w", name, err)
	}
	return &Session{Name: name, Client: c, Server: res.ServerInfo}, nil
}

func dial(ctx context.Context, srv config.MCPServer) (*mcpclient.Client, error) {
	switch srv.Transport {
	case config.TransportStdio:
		// The stdio client launches the process itself.
		return mcpclient.NewStdioMCPClient(srv.Command, srv.EnvList(), srv.Args...)
	case config.TransportSSE:
		c, err := mcpclient.NewSSEMCPClient(srv.URL, transport.WithHeaders(srv.Headers))
		if err != nil {
			return nil, err
		}
		return started(ctx, c)
	case config.TransportStreamableHTTP:
		c, err := mcpclient.NewStreamableHttpClient(srv.URL, transport.WithHTTPHeaders(srv.Headers))
		if err != nil {
			return nil, err
		}
		return started(ctx, c)
	default:
		return nil, fmt.Errorf("unknown transport %q", srv.Transport)
	}
}

func started(ctx context.Context, c *mcpclient.Client) (*mcpclient.Client, error) {
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("start: %w", err)
	}
	return c, nil
}

// ConnectAll opens a session per server. When any server fails the sessions
// already opened are closed.
func ConnectAll(ctx context.Context, servers []config.MCPServer, log *slog.Logger) ([]*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	sessions := make([]*Session, 0, len(servers))
	for _, srv := range servers {
		s, err := Connect(ctx, srv)
		if err != nil {
			return nil, errors.Join(err, CloseAll(sessions))
		}
		log.InfoContext(ctx, "mcp server connected",
			"name", srv.Name, "transport", srv.Transport,
			"server", s.Server.Name, "server_version", s.Server.Version)
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// CloseAll closes every session and reports all failures.
func CloseAll(sessions []*Session) error {
	var errs []error
	for _, s := range sessions {
		if err := s.Client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mcp %s: close: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
