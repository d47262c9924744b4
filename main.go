package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"eqvox/audio"
	"eqvox/beep"
	"eqvox/clipboard"
	"eqvox/doctor"
	"eqvox/encoder"
	"eqvox/formatter"
	"eqvox/gui"
	"eqvox/hotkey"
	"eqvox/log"
	"eqvox/shutdown"
	"eqvox/transcriber"
)

var version = "dev"

func run() {
	autoPasteFlag := flag.Bool("autopaste", false, "Paste the LaTeX into the focused window after copying")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "flac", "Upload encoding for remote transcription: wav or flac")
	langFlag := flag.String("lang", "en", "Language code for transcription (e.g., en, es, fr). Empty = auto-detect")
	modelFlag := flag.String("model", "", "Path to a whisper.cpp ggml model (local transcription)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	beepFlag := flag.Bool("beep", true, "Play audio cues on record start/stop")
	tuiFlag := flag.Bool("tui", false, "Run with terminal UI instead of the window")
	testFlag := flag.Bool("test", false, "Headless mode: run the pipeline once on a WAV file")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *versionFlag {
		fmt.Printf("eqvox %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	switch *formatFlag {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", *formatFlag)
		os.Exit(1)
	}

	if !*beepFlag {
		beep.Disable()
	}

	trans, err := transcriber.New(transcriber.Config{
		Format:    *formatFlag,
		Language:  *langFlag,
		ModelPath: *modelFlag,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		fmt.Println("Error: GROQ_API_KEY is required for LaTeX formatting")
		os.Exit(1)
	}
	fmtr := formatter.NewChat(apiKey)

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	log.SessionStart(trans.Name(), *formatFlag)

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: eqvox -test <wav-file>")
			os.Exit(1)
		}
		os.Exit(runTestMode(args[0], trans, fmtr))
	}

	if *autoPasteFlag {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Warning: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Printf("Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v, using default\n", err)
			selectedDevice = nil
		}
	}

	captureDevice, err := ctx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()
	log.Info("capture device: " + captureDevice.DeviceName())

	recorder := audio.NewRecorder(captureDevice)

	var controller *Controller
	startBackground := func() {
		sigCh := make(chan os.Signal, 1)
		shutdown.Notify(sigCh)
		go func() {
			<-sigCh
			log.SessionEnd(controller.Count())
			log.Close()
			os.Exit(0)
		}()

		hk := hotkey.New()
		if err := hk.Register(); err != nil {
			log.Warnf("hotkey unavailable: %v", err)
		} else {
			go func() {
				for range hk.Toggled() {
					controller.Toggle()
				}
			}()
		}

		go func() {
			for range time.Tick(100 * time.Millisecond) {
				controller.Tick()
			}
		}()
	}

	if *tuiFlag {
		t := NewTUI(
			func() { controller.Toggle() },
			func() { controller.CopyTranscript() },
			func() { controller.CopyLatex() },
		)
		controller = NewController(recorder, trans, fmtr, t, *autoPasteFlag)
		startBackground()
		if err := t.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
		}
	} else {
		app := gui.NewApp()
		controller = NewController(recorder, trans, fmtr, app, *autoPasteFlag)
		app.OnToggle = controller.Toggle
		app.OnCopyTranscript = controller.CopyTranscript
		app.OnCopyLatex = controller.CopyLatex
		app.Run(startBackground)
	}

	log.SessionEnd(controller.Count())
}
