package windowing

import "github.com/anthropics/anthropic-sdk-go"

// Span is a contiguous run [Start, End) of messages that must be kept or
// dropped together.
type Span struct {
	Start  int
	End    int
	Paired bool
}

func (s Span) Len() int { return s.End - s.Start }

// Spans splits msgs into atomic spans. An assistant turn carrying tool_use
// blocks is paired with the next message when that message is a user turn
// whose leading tool_result blocks answer exactly those tool_use ids. Text
// may follow the results. Everything else is its own span.
func Spans(msgs []anthropic.MessageParam) []Span {
	return spans(msgs, nil)
}

func spans(msgs []anthropic.MessageParam, onUnpaired func(idx int, reason string)) []Span {
	out := make([]Span, 0, len(msgs))
	for i := 0; i < len(msgs); i++ {
		if msgs[i].Role != anthropic.MessageParamRoleAssistant {
			out = append(out, Span{Start: i, End: i + 1})
			continue
		}
		uses := toolUseIDs(msgs[i])
		if len(uses) == 0 {
			out = append(out, Span{Start: i, End: i + 1})
			continue
		}
		var reason string
		if i+1 < len(msgs) {
			reason = pairReason(uses, msgs[i+1])
		} else {
			reason = "no_following_message"
		}
		if reason == "" {
			out = append(out, Span{Start: i, End: i + 2, Paired: true})
			i++
			continue
		}
		if onUnpaired != nil {
			onUnpaired(i, reason)
		}
		out = append(out, Span{Start: i, End: i + 1})
	}
	return out
}

// pairReason reports why next cannot complete the tool_use ids in uses, or ""
// when it can.
func pairReason(uses map[string]struct{}, next anthropic.MessageParam) string {
	if next.Role != anthropic.MessageParamRoleUser {
		return "not_followed_by_user"
	}
	results := make(map[string]struct{})
	inResults := true
	for _, blk := range next.Content {
		tr := blk.OfToolResult
		if tr == nil {
			inResults = false
			continue
		}
		if !inResults {
			return "ordering_invalid"
		}
		if tr.ToolUseID != "" {
			results[tr.ToolUseID] = struct{}{}
		}
	}
	for id := range uses {
		if _, ok := results[id]; !ok {
			return "missing_results"
		}
	}
	for id := range results {
		if _, ok := uses[id]; !ok {
			return "extra_results"
		}
	}
	return ""
}

func toolUseIDs(m anthropic.MessageParam) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, blk := range m.Content {
		if tu := blk.OfToolUse; tu != nil && tu.ID != "" {
			ids[tu.ID] = struct{}{}
		}
	}
	return ids
}
