package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gAmUssA/confluent-mcp-agent/advisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracer records entry and exit around the rest of the chain.
type tracer struct {
	name  string
	order int
	mu    *sync.Mutex
	trace *[]string
}

func (t tracer) Name() string { return t.name }
func (t tracer) Order() int   { return t.order }

func (t tracer) AdviseCall(ctx context.Context, req *advisor.Request, chain advisor.CallChain) (*advisor.Response, error) {
	t.record("before " + t.name)
	resp, err := chain.NextCall(ctx, req)
	t.record("after " + t.name)
	return resp, err
}

func (t tracer) record(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.trace = append(*t.trace, s)
}

func TestChain_OnionOrdering(t *testing.T) {
	var (
		mu    sync.Mutex
		trace []string
	)
	mk := func(name string, order int) tracer {
		return tracer{name: name, order: order, mu: &mu, trace: &trace}
	}
	terminal := func(context.Context, *advisor.Request) (*advisor.Response, error) {
		mu.Lock()
		trace = append(trace, "terminal")
		mu.Unlock()
		return textResponse("done"), nil
	}

	c := advisor.NewChain(terminal, mk("late", 10), mk("first", -5), nil, mk("tie-a", 0), mk("tie-b", 0))
	resp, err := c.Call(context.Background(), userRequest("q"))
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content())

	assert.Equal(t, []string{
		"before first", "before tie-a", "before tie-b", "before late",
		"terminal",
		"after late", "after tie-b", "after tie-a", "after first",
	}, trace)

	names := make([]string, 0, 4)
	for _, a := range c.Advisors() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"first", "tie-a", "tie-b", "late"}, names)
}

func TestChain_EmptyCallsTerminal(t *testing.T) {
	want := textResponse("x")
	var got *advisor.Request
	c := advisor.NewChain(func(_ context.Context, req *advisor.Request) (*advisor.Response, error) {
		got = req
		return want, nil
	})
	req := userRequest("q")

	resp, err := c.Call(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, want, resp)
	assert.Same(t, req, got)
}

func TestChain_NoTerminal(t *testing.T) {
	c := advisor.NewChain(nil, advisor.NewDefaultSimpleLogger())
	_, err := c.Call(context.Background(), userRequest("q"))
	assert.ErrorIs(t, err, advisor.ErrNoTerminal)
}

func TestChain_TerminalErrorReachesCaller(t *testing.T) {
	boom := errors.New("model down")
	c := advisor.NewChain(func(context.Context, *advisor.Request) (*advisor.Response, error) {
		return nil, boom
	}, advisor.NewDefaultSimpleLogger())

	_, err := c.Call(context.Background(), userRequest("q"))
	assert.Same(t, boom, err)
}

func TestChain_ConcurrentCalls(t *testing.T) {
	var (
		mu    sync.Mutex
		trace []string
	)
	c := advisor.NewChain(func(_ context.Context, req *advisor.Request) (*advisor.Response, error) {
		return textResponse(req.System), nil
	}, tracer{name: "a", order: 1, mu: &mu, trace: &trace}, advisor.NewDefaultSimpleLogger())

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sys := fmt.Sprintf("s%d", i)
			resp, err := c.Call(context.Background(), userRequest("q").WithSystem(sys))
			assert.NoError(t, err)
			assert.Equal(t, sys, resp.Content())
		}(i)
	}
	wg.Wait()
	assert.Len(t, trace, 2*n)
}
