package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// Clip is one finished recording handed off by the controller: the
// transient WAV artifact on disk plus the raw samples for backends that
// re-encode before upload.
type Clip struct {
	WavPath string
	Samples []int16
}

type Result struct {
	Text      string
	Duration  float64         // audio seconds as reported by the backend, 0 if unknown
	RateLimit string          // "remaining/limit" for remote backends, else empty
	Metrics   *NetworkMetrics // non-nil for remote backends
}

type Config struct {
	Format    string // "wav" or "flac" upload encoding (remote backends)
	Language  string
	ModelPath string // ggml model file for the local backend
}

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, clip Clip) (*Result, error)
}

// New picks a backend: a local whisper.cpp binary when one is installed,
// otherwise the Groq Whisper API when a key is present.
func New(cfg Config) (Transcriber, error) {
	if bin := findWhisperBinary(); bin != "" {
		return NewLocal(bin, cfg), nil
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key, cfg), nil
	}
	return nil, fmt.Errorf("no transcription backend: install whisper.cpp (whisper-cli) or set GROQ_API_KEY")
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}
