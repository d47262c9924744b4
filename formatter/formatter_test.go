package formatter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripMarker(t *testing.T) {
	for _, tt := range []struct{ input, want string }{
		{`LaTeX code: x^2`, `x^2`},
		{`x^2`, `x^2`},
		{`LaTeX code: A = \tan^{-1}(x)`, `A = \tan^{-1}(x)`},
		// only one leading occurrence is stripped
		{`LaTeX code: LaTeX code: x`, `LaTeX code: x`},
		// marker elsewhere in the text is untouched
		{`see LaTeX code: x`, `see LaTeX code: x`},
		// refusals pass through verbatim
		{`I cannot convert that into an equation.`, `I cannot convert that into an equation.`},
		{``, ``},
	} {
		if got := stripMarker(tt.input); got != tt.want {
			t.Errorf("stripMarker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestChatFormat(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"LaTeX code: A = \\tan^{-1}(x)"}}]}`))
	}))
	defer srv.Close()

	c := NewChat("test-key")
	c.apiURL = srv.URL

	latex, err := c.Format(context.Background(), "A equals tan inverse x")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if latex != `A = \tan^{-1}(x)` {
		t.Errorf("latex = %q", latex)
	}

	if gotReq.Model != defaultModel {
		t.Errorf("model = %q, want %q", gotReq.Model, defaultModel)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || !strings.Contains(gotReq.Messages[0].Content, "LaTeX code:") {
		t.Error("first message should be the fixed system instruction")
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "A equals tan inverse x" {
		t.Errorf("user turn = %+v", gotReq.Messages[1])
	}
}

func TestChatFormatPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Sorry, that does not sound like an equation."}}]}`))
	}))
	defer srv.Close()

	c := NewChat("k")
	c.apiURL = srv.URL

	got, err := c.Format(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Sorry, that does not sound like an equation." {
		t.Errorf("unexpected rewrite of unmarked response: %q", got)
	}
}

func TestChatFormatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewChat("k")
	c.apiURL = srv.URL

	if _, err := c.Format(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestChatFormatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewChat("k")
	c.apiURL = srv.URL

	if _, err := c.Format(context.Background(), "x"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestFakeFormatter(t *testing.T) {
	f := NewFake("LaTeX code: E = mc^2", nil)
	got, err := f.Format(context.Background(), "E equals m c squared")
	if err != nil {
		t.Fatal(err)
	}
	if got != "E = mc^2" {
		t.Errorf("got %q", got)
	}
}
