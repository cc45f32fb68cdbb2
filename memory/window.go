package memory

import (
	"context"
	"fmt"
	"sync"
)

// DefaultMaxMessages bounds a Window when no size is given.
const DefaultMaxMessages = 20

// Window is a chat memory that keeps at most MaxMessages per conversation.
// System messages are never evicted by the bound; a new system message
// replaces the previously stored ones.
type Window struct {
	repo        Repository
	maxMessages int
	mu          sync.Mutex
}

// NewWindow returns a Window over repo. maxMessages <= 0 selects
// DefaultMaxMessages and a nil repo selects an in-memory one.
func NewWindow(repo Repository, maxMessages int) *Window {
	if repo == nil {
		repo = NewInMemoryRepository()
	}
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Window{repo: repo, maxMessages: maxMessages}
}

func (w *Window) MaxMessages() int { return w.maxMessages }

// Add appends msgs to the conversation and applies the window bound.
func (w *Window) Add(ctx context.Context, conversationID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	stored, err := w.repo.Find(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("memory: find %q: %w", conversationID, err)
	}
	kept := trimWindow(stored, msgs, w.maxMessages)
	if err := w.repo.SaveAll(ctx, conversationID, kept); err != nil {
		return fmt.Errorf("memory: save %q: %w", conversationID, err)
	}
	return nil
}

// Get returns the remembered messages, oldest first.
func (w *Window) Get(ctx context.Context, conversationID string) ([]Message, error) {
	msgs, err := w.repo.Find(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("memory: find %q: %w", conversationID, err)
	}
	return msgs, nil
}

func (w *Window) Clear(ctx context.Context, conversationID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.repo.Delete(ctx, conversationID)
}

func trimWindow(stored, added []Message, max int) []Message {
	storedSet := make(map[Message]struct{}, len(stored))
	for _, m := range stored {
		storedSet[m] = struct{}{}
	}
	newSystem := false
	for _, m := range added {
		if _, ok := storedSet[m]; m.Role == RoleSystem && !ok {
			newSystem = true
			break
		}
	}

	merged := make([]Message, 0, len(stored)+len(added))
	for _, m := range stored {
		if newSystem && m.Role == RoleSystem {
			continue
		}
		merged = append(merged, m)
	}
	merged = append(merged, added...)
	if len(merged) <= max {
		return merged
	}

	// Evict oldest non-system messages first.
	toRemove := len(merged) - max
	out := make([]Message, 0, max)
	removed := 0
	for _, m := range merged {
		if m.Role == RoleSystem || removed >= toRemove {
			out = append(out, m)
			continue
		}
		removed++
	}
	return out
}
