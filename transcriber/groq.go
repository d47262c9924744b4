package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"

	"eqvox/encoder"
)

const groqTranscriptionURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// Groq uploads the clip to the Groq Whisper API. FLAC upload (the default)
// cuts the request body to roughly a third of the raw WAV.
type Groq struct {
	client   *TracedClient
	apiURL   string
	apiKey   string
	format   string
	language string
}

func NewGroq(apiKey string, cfg Config) *Groq {
	format := cfg.Format
	if format != "wav" && format != "flac" {
		format = "flac"
	}
	return &Groq{
		client:   NewTracedClient(),
		apiURL:   groqTranscriptionURL,
		apiKey:   apiKey,
		format:   format,
		language: cfg.Language,
	}
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

func (g *Groq) Transcribe(ctx context.Context, clip Clip) (*Result, error) {
	audioData, err := g.encode(clip)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+g.format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, err
	}

	writer.WriteField("model", "whisper-large-v3-turbo")
	writer.WriteField("response_format", "json")
	if g.language != "" {
		writer.WriteField("language", g.language)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("groq API error %d: %s", resp.StatusCode, string(resp.Body))
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("groq response parse error: %w", err)
	}

	remaining := firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests")
	limit := firstNonEmpty(resp.Header, "x-ratelimit-limit-requests")

	return &Result{
		Text:      gResp.Text,
		Duration:  gResp.Duration,
		RateLimit: remaining + "/" + limit,
		Metrics:   resp.Metrics,
	}, nil
}

func (g *Groq) encode(clip Clip) ([]byte, error) {
	if g.format == "flac" {
		data, err := encoder.EncodeFlac(clip.Samples)
		if err != nil {
			return nil, fmt.Errorf("flac encode: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(clip.WavPath)
	if err != nil {
		return nil, fmt.Errorf("reading wav artifact: %w", err)
	}
	return data, nil
}
