package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"eqvox/encoder"
)

func testClip(t *testing.T, nSamples int) Clip {
	t.Helper()
	samples := make([]int16, nSamples)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	path, err := encoder.WriteTemp(samples)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(path) })
	return Clip{WavPath: path, Samples: samples}
}

func TestGroqTranscribe(t *testing.T) {
	var gotAuth, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if f := r.MultipartForm.File["file"]; len(f) == 1 {
			gotFilename = f[0].Filename
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		w.Write([]byte(`{"text":"A equals tan inverse x","duration":1.5}`))
	}))
	defer srv.Close()

	g := NewGroq("test-key", Config{Format: "flac"})
	g.apiURL = srv.URL

	result, err := g.Transcribe(context.Background(), testClip(t, encoder.SampleRate))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "A equals tan inverse x" {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Duration != 1.5 {
		t.Errorf("Duration = %f, want 1.5", result.Duration)
	}
	if result.Metrics == nil {
		t.Error("Metrics should be non-nil for remote backend")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotFilename != "audio.flac" {
		t.Errorf("upload filename = %q, want audio.flac", gotFilename)
	}
}

func TestGroqTranscribeWavUpload(t *testing.T) {
	var gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		if f := r.MultipartForm.File["file"]; len(f) == 1 {
			gotFilename = f[0].Filename
		}
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	g := NewGroq("k", Config{Format: "wav"})
	g.apiURL = srv.URL

	if _, err := g.Transcribe(context.Background(), testClip(t, 1600)); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotFilename != "audio.wav" {
		t.Errorf("upload filename = %q, want audio.wav", gotFilename)
	}
}

func TestGroqTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGroq("bad-key", Config{})
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), testClip(t, 1600))
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry status code, got: %v", err)
	}
}

func TestGroqDefaultFormat(t *testing.T) {
	g := NewGroq("k", Config{Format: "mp3"})
	if g.format != "flac" {
		t.Errorf("format = %q, want flac fallback for unknown formats", g.format)
	}
}

func TestParseWhisperJSON(t *testing.T) {
	data := []byte(`{"transcription":[{"text":" A equals","offsets":{"from":0,"to":500}},{"text":" tan inverse x","offsets":{"from":500,"to":1200}}]}`)
	text, ok := parseWhisperJSON(data)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if text != "A equals tan inverse x" {
		t.Errorf("text = %q", text)
	}
}

func TestParseWhisperJSONInvalid(t *testing.T) {
	for _, input := range []string{"", "not json", `{"transcription":[]}`} {
		if _, ok := parseWhisperJSON([]byte(input)); ok {
			t.Errorf("parseWhisperJSON(%q) should fail", input)
		}
	}
}

func TestFakeTranscriber(t *testing.T) {
	f := NewFake("hello", nil)
	result, err := f.Transcribe(context.Background(), Clip{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "hello" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}
