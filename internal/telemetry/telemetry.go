// Package telemetry appends structured events to a local JSONL file so runs
// can be inspected after the fact.
package telemetry

import (
	"encoding/json"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// ObserveEnv turns emission on when set to "1".
	ObserveEnv = "AGENT_OBSERVE_JSON"
	// DirEnv overrides the directory holding events.jsonl.
	DirEnv = "AGENT_ARTIFACTS_DIR"

	defaultDir = ".agent"
	eventsFile = "events.jsonl"
)

var mu sync.Mutex

// Enabled reports whether Emit writes anything. The environment is read on
// every call.
func Enabled() bool { return os.Getenv(ObserveEnv) == "1" }

// Path is the file Emit appends to.
func Path() string {
	dir := os.Getenv(DirEnv)
	if dir == "" {
		dir = defaultDir
	}
	return filepath.Join(dir, eventsFile)
}

// Emit writes one JSON line holding fields plus "event" and an RFC3339Nano
// "time". Failures are logged and otherwise ignored.
func Emit(name string, fields map[string]any) {
	if !Enabled() {
		return
	}

	m := make(map[string]any, len(fields)+2)
	maps.Copy(m, fields)
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		slog.Warn("telemetry: marshal", "event", name, "error", err)
		return
	}

	path := Path()
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("telemetry: mkdir", "path", path, "error", err)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("telemetry: open", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		slog.Warn("telemetry: write", "path", path, "error", err)
	}
}
