package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// writeMu serialises appends from concurrent conversations.
	writeMu sync.Mutex
	seq     atomic.Uint64

	logger = zerolog.New(os.Stderr).With().Str("component", "telemetry").Logger()
)

// SetLogger replaces the logger used to report write failures.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "telemetry").Logger()
}

// Emit appends a single JSON line to <artifacts>/events.jsonl when
// AGT_OBSERVE_JSON=1. It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		logger.Warn().Err(err).Str("event", name).Msg("marshal event")
		return
	}

	dir := ArtifactsDir()
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("create artifacts dir")
		return
	}

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("open events file")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("write event")
	}
}

// PersistPayload writes v as indented JSON to
// <artifacts>/payloads/<turnID>-<seq>-<kind>.json when AGT_PERSIST_API_PAYLOADS=1.
// It returns the written path, or "" when persistence is off or failed.
func PersistPayload(turnID, kind string, v any) string {
	if !PersistPayloadsEnabled() {
		return ""
	}
	if turnID == "" {
		turnID = "turn-unknown"
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Str("kind", kind).Msg("marshal payload")
		return ""
	}
	dir := filepath.Join(ArtifactsDir(), "payloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("create payloads dir")
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%04d-%s.json", turnID, seq.Add(1), kind))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("write payload")
		return ""
	}
	return path
}
