package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"eqvox/audio"
	"eqvox/beep"
	"eqvox/clipboard"
	"eqvox/encoder"
	"eqvox/formatter"
	"eqvox/log"
	"eqvox/transcriber"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

// View is the UI surface the controller drives. Both the fyne window and
// the terminal UI implement it; methods must be safe to call from any
// goroutine.
type View interface {
	SetStatus(text string)
	SetRecording(on bool)
	SetTranscript(text string)
	SetLatex(text string)
	SetLevel(level float64)
	ShowError(msg string)
}

const pipelineTimeout = 60 * time.Second

// Controller owns the record-transcribe-format state machine. Toggle
// moves Idle to Recording to Processing and back; the pipeline itself
// runs on a background goroutine so the UI thread never blocks on the
// network.
type Controller struct {
	recorder *audio.Recorder
	trans    transcriber.Transcriber
	fmtr     formatter.Formatter
	view     View

	autopaste bool

	mu         sync.Mutex
	state      State
	transcript string
	latex      string
	count      int

	// copyFn is swapped out in tests; pipelineDone gets one send per
	// finished pipeline run.
	copyFn       func(string) error
	pipelineDone chan struct{}
}

func NewController(rec *audio.Recorder, trans transcriber.Transcriber, fmtr formatter.Formatter, view View, autopaste bool) *Controller {
	return &Controller{
		recorder:     rec,
		trans:        trans,
		fmtr:         fmtr,
		view:         view,
		autopaste:    autopaste,
		copyFn:       clipboard.Copy,
		pipelineDone: make(chan struct{}, 1),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle starts a recording from Idle, finishes one from Recording, and
// is a no-op while a previous clip is still in flight.
func (c *Controller) Toggle() {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		if err := c.recorder.Arm(); err != nil {
			c.mu.Unlock()
			log.Errorf("arm failed: %v", err)
			c.view.ShowError(fmt.Sprintf("microphone: %v", err))
			beep.PlayError()
			return
		}
		c.state = StateRecording
		c.mu.Unlock()
		log.Info("recording started")
		beep.PlayStart()
		c.view.SetRecording(true)
		c.view.SetStatus("Recording... (toggle to stop)")

	case StateRecording:
		samples, err := c.recorder.Disarm()
		if err != nil {
			c.state = StateIdle
			c.mu.Unlock()
			log.Errorf("disarm failed: %v", err)
			c.view.ShowError(fmt.Sprintf("microphone: %v", err))
			beep.PlayError()
			return
		}
		c.state = StateProcessing
		c.mu.Unlock()
		log.Info("recording stopped")
		beep.PlayEnd()
		c.view.SetRecording(false)
		c.view.SetLevel(0)
		c.view.SetStatus("Processing...")
		go c.process(samples)

	case StateProcessing:
		c.mu.Unlock()
	}
}

func (c *Controller) process(samples []int16) {
	defer c.finish()

	audioLen := float64(len(samples)) / encoder.SampleRate
	if len(samples) == 0 {
		c.fail("no audio captured")
		return
	}

	start := time.Now()

	wavPath, err := encoder.WriteTemp(samples)
	if err != nil {
		c.fail(fmt.Sprintf("writing audio: %v", err))
		return
	}
	defer os.Remove(wavPath)

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	sttStart := time.Now()
	result, err := c.trans.Transcribe(ctx, transcriber.Clip{WavPath: wavPath, Samples: samples})
	if err != nil {
		c.fail(fmt.Sprintf("transcription: %v", err))
		return
	}
	sttMs := float64(time.Since(sttStart).Milliseconds())

	transcript := strings.TrimSpace(result.Text)
	if transcript == "" {
		log.Warn("no speech detected")
		c.view.SetStatus("No speech detected")
		return
	}
	c.view.SetTranscript(transcript)

	latexStart := time.Now()
	latex, err := c.fmtr.Format(ctx, transcript)
	if err != nil {
		// Keep the transcript on screen; only the formatting step failed.
		c.mu.Lock()
		c.transcript = transcript
		c.mu.Unlock()
		c.fail(fmt.Sprintf("formatting: %v", err))
		return
	}
	latexMs := float64(time.Since(latexStart).Milliseconds())

	c.mu.Lock()
	c.transcript = transcript
	c.latex = latex
	c.count++
	c.mu.Unlock()

	c.view.SetLatex(latex)

	copied := ""
	if err := c.copyFn(latex); err != nil {
		log.Warnf("clipboard copy failed: %v", err)
	} else {
		copied = ", copied"
	}
	if c.autopaste {
		if err := clipboard.Paste(); err != nil {
			log.Warnf("autopaste failed: %v", err)
		}
	}

	totalMs := float64(time.Since(start).Milliseconds())
	c.view.SetStatus(fmt.Sprintf("Done in %.1fs%s", totalMs/1000, copied))

	log.Pipeline(log.PipelineMetrics{
		AudioLengthS: audioLen,
		RawSizeKB:    float64(len(samples)*2) / 1024,
		STTTimeMs:    sttMs,
		LatexTimeMs:  latexMs,
		TotalTimeMs:  totalMs,
	}, c.trans.Name(), "")
	log.Result(transcript, latex)
}

// fail surfaces a pipeline error without clearing whatever transcript and
// LaTeX are already displayed.
func (c *Controller) fail(msg string) {
	log.Error(msg)
	c.view.ShowError(msg)
	beep.PlayError()
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	select {
	case c.pipelineDone <- struct{}{}:
	default:
	}
}

// Tick refreshes the live recording readout; the UI calls it on a
// ~100ms timer.
func (c *Controller) Tick() {
	c.mu.Lock()
	recording := c.state == StateRecording
	c.mu.Unlock()
	if !recording {
		return
	}
	c.view.SetLevel(c.recorder.Level())
	c.view.SetStatus(fmt.Sprintf("Recording %.1fs", c.recorder.Elapsed().Seconds()))
}

func (c *Controller) CopyTranscript() {
	c.mu.Lock()
	text := c.transcript
	c.mu.Unlock()
	if text == "" {
		return
	}
	if err := c.copyFn(text); err != nil {
		log.Warnf("clipboard copy failed: %v", err)
		c.view.ShowError("clipboard copy failed")
		return
	}
	c.view.SetStatus("Transcript copied")
}

func (c *Controller) CopyLatex() {
	c.mu.Lock()
	text := c.latex
	c.mu.Unlock()
	if text == "" {
		return
	}
	if err := c.copyFn(text); err != nil {
		log.Warnf("clipboard copy failed: %v", err)
		c.view.ShowError("clipboard copy failed")
		return
	}
	c.view.SetStatus("LaTeX copied")
}

// Count returns how many clips finished the full pipeline this session.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
