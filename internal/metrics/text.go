// Package metrics derives size measurements from text that are safe to
// record where the text itself must not be.
package metrics

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

type TextStats struct {
	Bytes int
	Runes int
	Words int // separated by Unicode whitespace
	Lines int // 0 for "", otherwise 1 + the number of '\n'
}

func Measure(s string) TextStats {
	st := TextStats{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		st.Lines = 1 + strings.Count(s, "\n")
	}
	return st
}

func (s TextStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bytes", s.Bytes),
		slog.Int("runes", s.Runes),
		slog.Int("words", s.Words),
		slog.Int("lines", s.Lines),
	)
}
