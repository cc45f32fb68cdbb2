package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// MCPServer describes how to reach one MCP server. Either Command (stdio) or
// URL (sse, streamable-http) is set.
type MCPServer struct {
	Name      string            `yaml:"-"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	URL       string            `yaml:"url"`
	Transport string            `yaml:"transport"`
	Headers   map[string]string `yaml:"headers"`
}

type serversFile struct {
	MCPServers map[string]MCPServer `yaml:"mcpServers"`
}

// LoadMCPServers reads the servers file at path. A missing file means no
// servers. Servers are returned sorted by name with Transport filled in.
func LoadMCPServers(path string) ([]MCPServer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mcp servers: read %s: %w", path, err)
	}
	return ParseMCPServers(data)
}

// ParseMCPServers decodes a servers document. JSON is accepted as well.
func ParseMCPServers(data []byte) ([]MCPServer, error) {
	var f serversFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("mcp servers: decode: %w", err)
	}
	names := make([]string, 0, len(f.MCPServers))
	for name := range f.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MCPServer, 0, len(names))
	var errs []error
	for _, name := range names {
		s := f.MCPServers[name]
		s.Name = name
		if err := s.normalize(); err != nil {
			errs = append(errs, fmt.Errorf("mcp server %q: %w", name, err))
			continue
		}
		out = append(out, s)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MCPServer) normalize() error {
	s.Command = os.ExpandEnv(strings.TrimSpace(s.Command))
	s.URL = os.ExpandEnv(strings.TrimSpace(s.URL))
	for k, v := range s.Env {
		s.Env[k] = os.ExpandEnv(v)
	}
	for k, v := range s.Headers {
		s.Headers[k] = os.ExpandEnv(v)
	}
	if s.Transport == "" {
		switch {
		case s.Command != "":
			s.Transport = TransportStdio
		case s.URL != "":
			s.Transport = TransportStreamableHTTP
		}
	}
	switch s.Transport {
	case TransportStdio:
		if s.Command == "" {
			return errors.New("stdio transport needs a command")
		}
	case TransportSSE, TransportStreamableHTTP:
		if s.URL == "" {
			return fmt.Errorf("%s transport needs a url", s.Transport)
		}
	case "":
		return errors.New("either command or url is required")
	default:
		return fmt.Errorf("unknown transport %q", s.Transport)
	}
	return nil
}

// EnvList renders Env as KEY=VALUE pairs in key order.
func (s MCPServer) EnvList() []string {
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+s.Env[k])
	}
	return out
}
