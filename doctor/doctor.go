// Package doctor runs interactive end-to-end diagnostics: microphone,
// transcription backend, LaTeX formatting, clipboard, and the global hotkey.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"eqvox/audio"
	"eqvox/clipboard"
	"eqvox/encoder"
	"eqvox/formatter"
	"eqvox/hotkey"
	"eqvox/transcriber"
)

// Run executes the checks in pipeline order and returns an exit code
// (0 = all pass, 1 = any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("eqvox doctor - system diagnostics")
	fmt.Println("=================================")

	allPass := true

	clip, ok := checkMicrophone()
	if !ok {
		allPass = false
	}
	if allPass && !checkTranscription(clip) {
		allPass = false
	}
	if allPass && !checkFormatter() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}
	if !checkHotkey() {
		allPass = false
	}

	if clip != nil && clip.WavPath != "" {
		os.Remove(clip.WavPath)
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkMicrophone() (*transcriber.Clip, bool) {
	fmt.Println()
	fmt.Println("[1/5] Microphone")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}
	for _, d := range devices {
		tag := ""
		if audio.IsBluetooth(d.Name) {
			tag = " [bluetooth]"
		}
		fmt.Printf("  found: %s%s\n", d.Name, tag)
	}

	capture, err := ctx.NewCapture(&devices[0], audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot open %s: %v\n", devices[0].Name, err)
		return nil, false
	}
	defer capture.Close()

	rec := audio.NewRecorder(capture)

	fmt.Print("  Recording 2 seconds, speak an equation now...")
	if err := rec.Arm(); err != nil {
		fmt.Printf("\n  FAIL: cannot start recording: %v\n", err)
		return nil, false
	}
	time.Sleep(2 * time.Second)
	samples, err := rec.Disarm()
	fmt.Println(" done")
	if err != nil {
		fmt.Printf("  FAIL: cannot stop recording: %v\n", err)
		return nil, false
	}
	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured (muted mic?)")
		return nil, false
	}

	wavPath, err := encoder.WriteTemp(samples)
	if err != nil {
		fmt.Printf("  FAIL: cannot write WAV artifact: %v\n", err)
		return nil, false
	}

	fmt.Printf("  PASS: captured %.1f KB from %s\n", float64(len(samples)*2)/1024, devices[0].Name)
	return &transcriber.Clip{WavPath: wavPath, Samples: samples}, true
}

func checkTranscription(clip *transcriber.Clip) bool {
	fmt.Println()
	fmt.Println("[2/5] Transcription backend")

	trans, err := transcriber.New(transcriber.Config{})
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  backend: %s\n", trans.Name())

	if clip == nil {
		fmt.Println("  SKIP: no recorded clip")
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := trans.Transcribe(ctx, *clip)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("  PASS: transcript: %s\n", text)
	return true
}

func checkFormatter() bool {
	fmt.Println()
	fmt.Println("[3/5] LaTeX formatting")

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		fmt.Println("  FAIL: GROQ_API_KEY not set")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	latex, err := formatter.NewChat(apiKey).Format(ctx, "A is equal to tan inverse x")
	if err != nil {
		fmt.Printf("  FAIL: chat endpoint error: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %q -> %s\n", "A is equal to tan inverse x", latex)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/5] Clipboard")

	testStr := fmt.Sprintf("eqvox-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Println("  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Println("  FAIL: clipboard timed out (compositor not accessible?)")
		return false
	}
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[5/5] Global hotkey")
	fmt.Println("Press Ctrl+Shift+Space...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Toggled():
		fmt.Println("  PASS: hotkey detected")
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}
