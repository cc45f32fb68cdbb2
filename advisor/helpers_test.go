package advisor_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gAmUssA/confluent-mcp-agent/advisor"
)

// recorder is a slog.Handler that keeps every record it sees and can share an
// event log with stub chains to assert ordering.
type recorder struct {
	mu      sync.Mutex
	level   slog.Level
	records []slog.Record
	events  *[]string
}

func newRecorder(level slog.Level, events *[]string) *recorder {
	return &recorder{level: level, events: events}
}

func (r *recorder) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if r.events != nil {
		*r.events = append(*r.events, "log:"+rec.Message)
	}
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Message)
	}
	return out
}

func (r *recorder) attr(i int, key string) (slog.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		v     slog.Value
		found bool
	)
	r.records[i].Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v, found = a.Value, true
			return false
		}
		return true
	})
	return v, found
}

// failingHandler reports debug enabled and fails every write.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error  { return errors.New("sink down") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

// panickingHandler simulates a misconfigured sink.
type panickingHandler struct{}

func (panickingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (panickingHandler) Handle(context.Context, slog.Record) error {
	panic("nil writer")
}
func (p panickingHandler) WithAttrs([]slog.Attr) slog.Handler { return p }
func (p panickingHandler) WithGroup(string) slog.Handler      { return p }

// stubChain counts invocations and returns a fixed result.
type stubChain struct {
	calls  int
	got    []*advisor.Request
	resp   *advisor.Response
	err    error
	events *[]string
}

func (s *stubChain) NextCall(_ context.Context, req *advisor.Request) (*advisor.Response, error) {
	s.calls++
	s.got = append(s.got, req)
	if s.events != nil {
		*s.events = append(*s.events, "next")
	}
	return s.resp, s.err
}

// textResponse decodes a Messages API payload so the SDK union types carry
// their raw JSON like they do in production.
func textResponse(text string) *advisor.Response {
	body, _ := json.Marshal(map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "test-model",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"usage":       map[string]any{"input_tokens": 3, "output_tokens": 5},
	})
	var msg anthropic.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		panic(err)
	}
	return &advisor.Response{Message: &msg, Steps: 1}
}

func userRequest(text string) *advisor.Request {
	return &advisor.Request{
		Model:     "test-model",
		MaxTokens: 64,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(text))},
	}
}
