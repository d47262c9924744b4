package main

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"eqvox/audio"
	"eqvox/beep"
	"eqvox/formatter"
	"eqvox/transcriber"
)

func TestMain(m *testing.M) {
	beep.Disable()
	m.Run()
}

// fakeCapture feeds a fixed clip into the recorder callback on Start.
type fakeCapture struct {
	mu       sync.Mutex
	cb       audio.DataCallback
	clip     []int16
	startErr error
}

func (f *fakeCapture) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb == nil {
		return nil
	}
	data := make([]byte, len(f.clip)*2)
	for i, v := range f.clip {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	cb(data, uint32(len(f.clip)))
	return nil
}

func (f *fakeCapture) Stop()  {}
func (f *fakeCapture) Close() {}

func (f *fakeCapture) SetCallback(cb audio.DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *fakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *fakeCapture) DeviceName() string { return "fake" }

// recordingView captures controller output for assertions.
type recordingView struct {
	mu         sync.Mutex
	status     string
	recording  bool
	transcript string
	latex      string
	errs       []string
}

func (v *recordingView) SetStatus(text string) {
	v.mu.Lock()
	v.status = text
	v.mu.Unlock()
}

func (v *recordingView) SetRecording(on bool) {
	v.mu.Lock()
	v.recording = on
	v.mu.Unlock()
}

func (v *recordingView) SetTranscript(text string) {
	v.mu.Lock()
	v.transcript = text
	v.mu.Unlock()
}

func (v *recordingView) SetLatex(text string) {
	v.mu.Lock()
	v.latex = text
	v.mu.Unlock()
}

func (v *recordingView) SetLevel(level float64) {}

func (v *recordingView) ShowError(msg string) {
	v.mu.Lock()
	v.errs = append(v.errs, msg)
	v.mu.Unlock()
}

func (v *recordingView) snapshot() recordingView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return recordingView{
		status:     v.status,
		recording:  v.recording,
		transcript: v.transcript,
		latex:      v.latex,
		errs:       append([]string(nil), v.errs...),
	}
}

func waitDone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case <-c.pipelineDone:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not finish")
	}
}

func newTestController(capture *fakeCapture, trans transcriber.Transcriber, fmtr formatter.Formatter, view View) *Controller {
	c := NewController(audio.NewRecorder(capture), trans, fmtr, view, false)
	c.copyFn = func(string) error { return nil }
	return c
}

func TestToggleHappyPath(t *testing.T) {
	capture := &fakeCapture{clip: make([]int16, 16000)}
	view := &recordingView{}

	var copied string
	c := newTestController(capture,
		transcriber.NewFake("A equals tan inverse x", nil),
		formatter.NewFake(`LaTeX code: A = \tan^{-1}(x)`, nil),
		view)
	c.copyFn = func(s string) error {
		copied = s
		return nil
	}

	c.Toggle()
	if c.State() != StateRecording {
		t.Fatalf("state after first toggle = %v, want Recording", c.State())
	}
	if got := view.snapshot(); !got.recording {
		t.Error("view not showing recording")
	}

	c.Toggle()
	waitDone(t, c)

	if c.State() != StateIdle {
		t.Errorf("state after pipeline = %v, want Idle", c.State())
	}
	got := view.snapshot()
	if got.transcript != "A equals tan inverse x" {
		t.Errorf("transcript = %q", got.transcript)
	}
	if got.latex != `A = \tan^{-1}(x)` {
		t.Errorf("latex = %q", got.latex)
	}
	if copied != `A = \tan^{-1}(x)` {
		t.Errorf("clipboard got %q", copied)
	}
	if len(got.errs) != 0 {
		t.Errorf("unexpected errors: %v", got.errs)
	}
	if c.Count() != 1 {
		t.Errorf("count = %d, want 1", c.Count())
	}
}

func TestToggleWhileProcessing(t *testing.T) {
	capture := &fakeCapture{clip: make([]int16, 1600)}
	view := &recordingView{}

	release := make(chan struct{})
	c := newTestController(capture,
		transcriber.NewFake("x squared", nil),
		blockingFormatter{release: release, result: "x^2"},
		view)

	c.Toggle()
	c.Toggle()
	if c.State() != StateProcessing {
		t.Fatalf("state = %v, want Processing", c.State())
	}

	// Extra toggles while in flight are ignored.
	c.Toggle()
	c.Toggle()
	if c.State() != StateProcessing {
		t.Fatalf("toggle during processing changed state to %v", c.State())
	}
	if c.recorder.Armed() {
		t.Error("recorder re-armed during processing")
	}

	close(release)
	waitDone(t, c)
	if c.State() != StateIdle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

type blockingFormatter struct {
	release chan struct{}
	result  string
}

func (b blockingFormatter) Format(ctx context.Context, _ string) (string, error) {
	select {
	case <-b.release:
		return b.result, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestFormatterFailureKeepsDisplay(t *testing.T) {
	view := &recordingView{}

	// First run succeeds and populates the display.
	capture := &fakeCapture{clip: make([]int16, 1600)}
	c := newTestController(capture,
		transcriber.NewFake("a plus b", nil),
		formatter.NewFake("LaTeX code: a + b", nil),
		view)
	c.Toggle()
	c.Toggle()
	waitDone(t, c)

	// Second run fails at the formatting step.
	c.fmtr = formatter.NewFake("", errors.New("rate limited"))
	c.Toggle()
	c.Toggle()
	waitDone(t, c)

	got := view.snapshot()
	if got.latex != "a + b" {
		t.Errorf("previous latex cleared, got %q", got.latex)
	}
	if len(got.errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", got.errs)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

func TestTranscriberFailure(t *testing.T) {
	capture := &fakeCapture{clip: make([]int16, 1600)}
	view := &recordingView{}
	c := newTestController(capture,
		transcriber.NewFake("", errors.New("api down")),
		formatter.NewFake("unused", nil),
		view)

	c.Toggle()
	c.Toggle()
	waitDone(t, c)

	got := view.snapshot()
	if len(got.errs) != 1 {
		t.Fatalf("errors = %v, want one", got.errs)
	}
	if got.latex != "" {
		t.Errorf("latex set despite failure: %q", got.latex)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

func TestDeviceErrorStaysIdle(t *testing.T) {
	capture := &fakeCapture{startErr: errors.New("device busy")}
	view := &recordingView{}
	c := newTestController(capture,
		transcriber.NewFake("unused", nil),
		formatter.NewFake("unused", nil),
		view)

	c.Toggle()
	if c.State() != StateIdle {
		t.Errorf("state = %v, want Idle", c.State())
	}
	got := view.snapshot()
	if len(got.errs) != 1 {
		t.Errorf("errors = %v, want one", got.errs)
	}
}

func TestEmptyTranscriptSkipsFormatter(t *testing.T) {
	capture := &fakeCapture{clip: make([]int16, 1600)}
	view := &recordingView{}
	c := newTestController(capture,
		transcriber.NewFake("   ", nil),
		formatter.NewFake("LaTeX code: should not appear", nil),
		view)

	c.Toggle()
	c.Toggle()
	waitDone(t, c)

	got := view.snapshot()
	if got.latex != "" {
		t.Errorf("formatter ran on empty transcript: %q", got.latex)
	}
	if got.status != "No speech detected" {
		t.Errorf("status = %q", got.status)
	}
	if len(got.errs) != 0 {
		t.Errorf("empty transcript reported as error: %v", got.errs)
	}
}

func TestCopyWithoutResultIsNoop(t *testing.T) {
	view := &recordingView{}
	c := newTestController(&fakeCapture{},
		transcriber.NewFake("unused", nil),
		formatter.NewFake("unused", nil),
		view)

	calls := 0
	c.copyFn = func(string) error {
		calls++
		return nil
	}
	c.CopyTranscript()
	c.CopyLatex()
	if calls != 0 {
		t.Errorf("copy called %d times with nothing to copy", calls)
	}
}
