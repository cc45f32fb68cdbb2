package windowing

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// Stats describes what Fit kept.
type Stats struct {
	Tokens           int // estimated cost of the kept spans
	Budget           int
	Kept             int
	Dropped          int
	NewestOverBudget bool
}

// Window fits conversations into Budget estimated tokens.
type Window struct {
	Budget  int
	Counter TokenCounter
	Logger  *slog.Logger
}

// Fit returns the newest suffix of msgs made of whole spans whose estimated
// cost is within Budget. When even the newest span is too large, or Budget is
// not positive, the result is empty and NewestOverBudget is set.
func (w Window) Fit(ctx context.Context, msgs []anthropic.MessageParam) ([]anthropic.MessageParam, Stats) {
	stats := Stats{Budget: w.Budget}
	if len(msgs) == 0 {
		return nil, stats
	}
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	counter := w.Counter
	if counter == nil {
		counter = HeuristicCounter{}
	}

	all := spans(msgs, func(idx int, reason string) {
		log.DebugContext(ctx, "windowing: tool_use left unpaired", "index", idx, "reason", reason)
	})

	start := len(all)
	for i := len(all) - 1; i >= 0 && w.Budget > 0; i-- {
		cost := CountSpan(counter, all[i], msgs)
		if stats.Tokens+cost > w.Budget {
			if start == len(all) {
				log.DebugContext(ctx, "windowing: newest span over budget", "budget", w.Budget, "cost", cost)
			}
			break
		}
		stats.Tokens += cost
		start = i
	}

	stats.Kept = len(all) - start
	stats.Dropped = start
	if stats.Kept == 0 {
		stats.NewestOverBudget = true
		return nil, stats
	}
	return msgs[all[start].Start:], stats
}
