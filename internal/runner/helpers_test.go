package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/gAmUssA/confluent-mcp-agent/internal/telemetry"
	"github.com/gAmUssA/confluent-mcp-agent/tools"
)

// fakeTransport replays canned Messages API replies in order, repeating the
// last one, and keeps every request body it receives.
type fakeTransport struct {
	mu      sync.Mutex
	status  int
	replies []string
	bodies  [][]byte
}

func newFake(replies ...string) *fakeTransport {
	return &fakeTransport{status: http.StatusOK, replies: replies}
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()

	f.mu.Lock()
	idx := len(f.bodies)
	f.bodies = append(f.bodies, b)
	reply := f.replies[min(idx, len(f.replies)-1)]
	f.mu.Unlock()

	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(reply)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func (f *fakeTransport) requests() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies
}

func newClient(rt http.RoundTripper) *anthropic.Client {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return &c
}

func textReply(text string) string {
	return fmt.Sprintf(`{"id":"msg_t","type":"message","role":"assistant","model":"test-model","stop_reason":"end_turn",
"content":[{"type":"text","text":%q}],"usage":{"input_tokens":10,"output_tokens":5}}`, text)
}

func toolReply(id, name, input string) string {
	return fmt.Sprintf(`{"id":"msg_u","type":"message","role":"assistant","model":"test-model","stop_reason":"tool_use",
"content":[{"type":"tool_use","id":%q,"name":%q,"input":%s}],"usage":{"input_tokens":7,"output_tokens":3}}`, id, name, input)
}

// sentBody is the part of a Messages API request the tests look at.
type sentBody struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Tools []struct {
		Name string `json:"name"`
	} `json:"tools"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type      string          `json:"type"`
			Text      string          `json:"text,omitempty"`
			ID        string          `json:"id,omitempty"`
			Input     json.RawMessage `json:"input,omitempty"`
			ToolUseID string          `json:"tool_use_id,omitempty"`
			IsError   bool            `json:"is_error,omitempty"`
			Content   json.RawMessage `json:"content,omitempty"`
		} `json:"content"`
	} `json:"messages"`
}

func decodeSent(t *testing.T, b []byte) sentBody {
	t.Helper()
	var sb sentBody
	if err := json.Unmarshal(b, &sb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, b)
	}
	return sb
}

func echoTool() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "echo",
		Description: "returns its input",
		InputSchema: tools.GenerateSchema[struct {
			Text string `json:"text"`
		}](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(bytes.TrimSpace(input)), nil
		},
	}
}

func request(text string, defs ...tools.ToolDefinition) *advisor.Request {
	return &advisor.Request{
		Model:     "test-model",
		MaxTokens: 256,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(text))},
		Tools:     defs,
	}
}

// observe enables telemetry into a temp dir and returns the events path.
func observe(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(telemetry.DirEnv, dir)
	t.Setenv(telemetry.ObserveEnv, "1")
	return filepath.Join(dir, "events.jsonl")
}

func readEvents(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		var m map[string]any
		if err := json.Unmarshal(s.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", s.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func lastEvent(events []map[string]any, name string) map[string]any {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i]["event"] == name {
			return events[i]
		}
	}
	return nil
}
