package windowing

import (
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
)

// TokenCounter estimates the input tokens of one message.
type TokenCounter interface {
	Count(m anthropic.MessageParam) int
}

// BlockOverhead is charged once per content block by HeuristicCounter.
const BlockOverhead = 4

// HeuristicCounter charges one token per rune of text plus BlockOverhead per
// block. Tool results count their string or nested text payload; any other
// block costs the overhead alone.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(m anthropic.MessageParam) int {
	n := 0
	for _, blk := range m.Content {
		n += BlockOverhead + blockRunes(blk)
	}
	return n
}

func blockRunes(blk anthropic.ContentBlockParamUnion) int {
	switch {
	case blk.OfText != nil:
		return utf8.RuneCountInString(blk.OfText.Text)
	case blk.OfToolResult != nil:
		return toolResultRunes(blk.OfToolResult.Content)
	default:
		return 0
	}
}

func toolResultRunes(content any) int {
	switch c := content.(type) {
	case string:
		return utf8.RuneCountInString(c)
	case []anthropic.ToolResultBlockParamContentUnion:
		n := 0
		for _, part := range c {
			if part.OfText != nil {
				n += utf8.RuneCountInString(part.OfText.Text)
			}
		}
		return n
	default:
		return 0
	}
}

// CountSpan sums c over the messages of s.
func CountSpan(c TokenCounter, s Span, msgs []anthropic.MessageParam) int {
	n := 0
	for i := s.Start; i < s.End && i < len(msgs); i++ {
		n += c.Count(msgs[i])
	}
	return n
}
