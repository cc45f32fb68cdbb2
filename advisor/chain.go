package advisor

import (
	"context"
	"errors"
	"sort"
)

// ErrNoTerminal is returned when a chain has no terminal stage.
var ErrNoTerminal = errors.New("advisor: chain has no terminal call")

// Chain is an immutable, ordered advisor pipeline. It is safe for concurrent
// exchanges: each Call walks the advisors with its own cursor.
type Chain struct {
	advisors []CallAdvisor
	terminal CallFunc
}

// NewChain sorts advisors by Order ascending; ties keep registration order.
// Nil advisors are skipped.
func NewChain(terminal CallFunc, advisors ...CallAdvisor) *Chain {
	sorted := make([]CallAdvisor, 0, len(advisors))
	for _, a := range advisors {
		if a != nil {
			sorted = append(sorted, a)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return &Chain{advisors: sorted, terminal: terminal}
}

// Advisors returns the advisors in execution order.
func (c *Chain) Advisors() []CallAdvisor {
	out := make([]CallAdvisor, len(c.advisors))
	copy(out, c.advisors)
	return out
}

// Call runs req through every advisor and the terminal stage.
func (c *Chain) Call(ctx context.Context, req *Request) (*Response, error) {
	return cursor{chain: c}.NextCall(ctx, req)
}

type cursor struct {
	chain *Chain
	pos   int
}

func (c cursor) NextCall(ctx context.Context, req *Request) (*Response, error) {
	if c.pos >= len(c.chain.advisors) {
		if c.chain.terminal == nil {
			return nil, ErrNoTerminal
		}
		return c.chain.terminal(ctx, req)
	}
	next := cursor{chain: c.chain, pos: c.pos + 1}
	return c.chain.advisors[c.pos].AdviseCall(ctx, req, next)
}
