package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultModel = "ggml-small.en.bin"

// Local runs a whisper.cpp CLI against the WAV artifact. The binary is
// invoked once per clip; the model stays on disk and whisper.cpp mmaps it,
// so repeated runs are cheap enough for interactive use.
type Local struct {
	binPath   string
	modelPath string
	language  string
}

func NewLocal(binPath string, cfg Config) *Local {
	modelPath := cfg.ModelPath
	if modelPath == "" {
		modelPath = defaultModelPath()
	}
	return &Local{
		binPath:   binPath,
		modelPath: modelPath,
		language:  cfg.Language,
	}
}

func (l *Local) Name() string { return "whisper.cpp" }

// whisper.cpp -oj output, stdout variant
type whisperOutput struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

func (l *Local) Transcribe(ctx context.Context, clip Clip) (*Result, error) {
	if _, err := os.Stat(l.modelPath); err != nil {
		return nil, fmt.Errorf("whisper model not found at %s (set EQVOX_WHISPER_MODEL)", l.modelPath)
	}

	args := []string{
		"-m", l.modelPath,
		"-f", clip.WavPath,
		"-oj",
		"--no-prints",
	}
	if l.language != "" {
		args = append(args, "-l", l.language)
	}

	cmd := exec.CommandContext(ctx, l.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w: %s", err, stderr.String())
	}

	// whisper.cpp also writes <wav>.json next to the artifact; prefer it
	// over stdout since --no-prints leaves stdout empty on some builds.
	jsonPath := clip.WavPath + ".json"
	if data, err := os.ReadFile(jsonPath); err == nil {
		os.Remove(jsonPath)
		if text, ok := parseWhisperJSON(data); ok {
			return &Result{Text: text}, nil
		}
	}
	if text, ok := parseWhisperJSON(stdout.Bytes()); ok {
		return &Result{Text: text}, nil
	}
	return &Result{Text: strings.TrimSpace(stdout.String())}, nil
}

func parseWhisperJSON(data []byte) (string, bool) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil || len(out.Transcription) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, seg := range out.Transcription {
		sb.WriteString(seg.Text)
	}
	return strings.TrimSpace(sb.String()), true
}

// findWhisperBinary checks EQVOX_WHISPER_BIN, then PATH, then the usual
// install locations. Empty string when nothing is found.
func findWhisperBinary() string {
	if bin := os.Getenv("EQVOX_WHISPER_BIN"); bin != "" {
		return bin
	}

	names := []string{"whisper-cli", "whisper-cpp", "whisper"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	home, _ := os.UserHomeDir()
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		filepath.Join(home, ".local", "bin"),
	}
	for _, loc := range locations {
		for _, name := range names {
			path := filepath.Join(loc, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func defaultModelPath() string {
	if p := os.Getenv("EQVOX_WHISPER_MODEL"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "whisper", defaultModel)
}
