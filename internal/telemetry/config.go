package telemetry

import (
	"os"
)

const defaultArtifactsDir = ".agent"

// Env switches. They are read on every call so a process (or a test) can flip
// them without re-initialising the package.
const (
	EnvObserve         = "AGT_OBSERVE_JSON"
	EnvPersistPayloads = "AGT_PERSIST_API_PAYLOADS"
	EnvArtifactsDir    = "AGT_ARTIFACTS_DIR"
)

// ObserveEnabled reports whether JSONL event emission is on.
func ObserveEnabled() bool { return os.Getenv(EnvObserve) == "1" }

// PersistPayloadsEnabled reports whether request/response payloads are written to disk.
func PersistPayloadsEnabled() bool { return os.Getenv(EnvPersistPayloads) == "1" }

// ArtifactsDir is where events.jsonl and payloads/ live.
func ArtifactsDir() string {
	if v := os.Getenv(EnvArtifactsDir); v != "" {
		return v
	}
	return defaultArtifactsDir
}
