package memory

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Repository stores whole conversations keyed by conversation id.
type Repository interface {
	ConversationIDs(ctx context.Context) ([]string, error)
	Find(ctx context.Context, conversationID string) ([]Message, error)
	// SaveAll replaces the stored conversation with msgs.
	SaveAll(ctx context.Context, conversationID string, msgs []Message) error
	Delete(ctx context.Context, conversationID string) error
}

// InMemoryRepository keeps conversations for the lifetime of the process.
type InMemoryRepository struct {
	mu    sync.RWMutex
	convs map[string][]Message
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{convs: make(map[string][]Message)}
}

func (r *InMemoryRepository) ConversationIDs(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.convs))
	for id := range r.convs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryRepository) Find(_ context.Context, conversationID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.convs[conversationID]
	if len(msgs) == 0 {
		return nil, nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *InMemoryRepository) SaveAll(_ context.Context, conversationID string, msgs []Message) error {
	stored := make([]Message, len(msgs))
	copy(stored, msgs)
	r.mu.Lock()
	r.convs[conversationID] = stored
	r.mu.Unlock()
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, conversationID string) error {
	r.mu.Lock()
	delete(r.convs, conversationID)
	r.mu.Unlock()
	return nil
}

const transcriptExt = ".json"

// FileRepository stores one JSON transcript per conversation under Dir.
type FileRepository struct {
	Dir string
	mu  sync.Mutex
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("memory: file repository needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memory: mkdir %s: %w", dir, err)
	}
	return &FileRepository{Dir: dir}, nil
}

// path escapes the id so arbitrary ids cannot leave Dir.
func (r *FileRepository) path(conversationID string) string {
	return filepath.Join(r.Dir, url.PathEscape(conversationID)+transcriptExt)
}

func (r *FileRepository) ConversationIDs(context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, transcriptExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, transcriptExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *FileRepository) Find(_ context.Context, conversationID string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return LoadConversation(r.path(conversationID))
}

func (r *FileRepository) SaveAll(_ context.Context, conversationID string, msgs []Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SaveConversation(r.path(conversationID), msgs)
}

func (r *FileRepository) Delete(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path(conversationID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
