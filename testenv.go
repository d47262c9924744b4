package main

import (
	"fmt"
	"os"
	"sync"

	"eqvox/audio"
	"eqvox/formatter"
	"eqvox/transcriber"
)

// consoleView prints controller output line by line for headless runs.
type consoleView struct {
	mu  sync.Mutex
	err bool
}

func (v *consoleView) SetStatus(text string)  { fmt.Println("status:", text) }
func (v *consoleView) SetRecording(on bool)   {}
func (v *consoleView) SetLevel(level float64) {}

func (v *consoleView) SetTranscript(text string) {
	fmt.Println("transcript:", text)
}

func (v *consoleView) SetLatex(text string) {
	fmt.Println("latex:", text)
}

func (v *consoleView) ShowError(msg string) {
	v.mu.Lock()
	v.err = true
	v.mu.Unlock()
	fmt.Println("error:", msg)
}

func (v *consoleView) failed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// runTestMode replays a WAV file through the full pipeline once and
// prints the result. Exit code 0 means the pipeline completed.
func runTestMode(wavPath string, trans transcriber.Transcriber, fmtr formatter.Formatter) int {
	ctx, err := audio.NewFakeContext(wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ctx.Close()

	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	view := &consoleView{}
	c := NewController(audio.NewRecorder(capture), trans, fmtr, view, false)

	// The fake capture replays the whole file synchronously on Start, so
	// two toggles complete a session.
	c.Toggle()
	c.Toggle()
	<-c.pipelineDone

	if view.failed() {
		return 1
	}
	return 0
}
