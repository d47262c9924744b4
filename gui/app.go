// Package gui is the fyne desktop surface: a record toggle, live status,
// and the transcript/LaTeX result pair with copy buttons.
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type App struct {
	// Callbacks wired by the caller before Run. OnToggle fires from the
	// record button and the Space shortcut.
	OnToggle         func()
	OnCopyTranscript func()
	OnCopyLatex      func()

	fyneApp    fyne.App
	window     fyne.Window
	status     *widget.Label
	recordBtn  *widget.Button
	transcript *widget.Entry
	latex      *widget.Entry
	level      *widget.ProgressBar
}

func NewApp() *App {
	a := &App{}

	a.fyneApp = app.NewWithID("io.eqvox.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	a.window = a.fyneApp.NewWindow("eqvox - speech to LaTeX")

	a.status = widget.NewLabel("Ready")
	a.recordBtn = widget.NewButtonWithIcon("Record", theme.MediaRecordIcon(), func() {
		if a.OnToggle != nil {
			a.OnToggle()
		}
	})

	a.level = widget.NewProgressBar()
	a.level.TextFormatter = func() string { return "" }

	a.transcript = widget.NewMultiLineEntry()
	a.transcript.Wrapping = fyne.TextWrapWord
	a.transcript.SetPlaceHolder("Spoken equation appears here")

	a.latex = widget.NewMultiLineEntry()
	a.latex.Wrapping = fyne.TextWrapWord
	a.latex.TextStyle = fyne.TextStyle{Monospace: true}
	a.latex.SetPlaceHolder("LaTeX appears here")

	copyTranscript := widget.NewButtonWithIcon("Copy Text", theme.ContentCopyIcon(), func() {
		if a.OnCopyTranscript != nil {
			a.OnCopyTranscript()
		}
	})
	copyLatex := widget.NewButtonWithIcon("Copy LaTeX", theme.ContentCopyIcon(), func() {
		if a.OnCopyLatex != nil {
			a.OnCopyLatex()
		}
	})

	top := container.NewVBox(
		container.NewBorder(nil, nil, nil, a.recordBtn, a.status),
		a.level,
	)
	results := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel("Transcript"), copyTranscript, nil, nil, a.transcript),
		container.NewBorder(widget.NewLabel("LaTeX"), copyLatex, nil, nil, a.latex),
	)

	a.window.SetContent(container.NewBorder(top, nil, nil, nil, results))
	a.window.Resize(fyne.NewSize(640, 360))

	a.registerShortcuts()

	return a
}

func (a *App) registerShortcuts() {
	canvas := a.window.Canvas()

	canvas.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		// Space toggles recording unless an entry has focus.
		if ev.Name == fyne.KeySpace && canvas.Focused() == nil && a.OnToggle != nil {
			a.OnToggle()
		}
	})

	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyC,
		Modifier: fyne.KeyModifierControl,
	}, func(fyne.Shortcut) {
		if a.OnCopyTranscript != nil {
			a.OnCopyTranscript()
		}
	})
	canvas.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyL,
		Modifier: fyne.KeyModifierControl,
	}, func(fyne.Shortcut) {
		if a.OnCopyLatex != nil {
			a.OnCopyLatex()
		}
	})
}

// Run enters the fyne event loop. onReady runs on its own goroutine once
// the loop is live.
func (a *App) Run(onReady func()) {
	if onReady != nil {
		go onReady()
	}
	a.window.ShowAndRun()
}

func (a *App) Quit() {
	fyne.Do(func() {
		a.fyneApp.Quit()
	})
}

func (a *App) SetStatus(text string) {
	fyne.Do(func() {
		a.status.SetText(text)
	})
}

func (a *App) SetRecording(on bool) {
	fyne.Do(func() {
		if on {
			a.recordBtn.SetIcon(theme.MediaStopIcon())
			a.recordBtn.SetText("Stop")
		} else {
			a.recordBtn.SetIcon(theme.MediaRecordIcon())
			a.recordBtn.SetText("Record")
		}
	})
}

func (a *App) SetTranscript(text string) {
	fyne.Do(func() {
		a.transcript.SetText(text)
	})
}

func (a *App) SetLatex(text string) {
	fyne.Do(func() {
		a.latex.SetText(text)
	})
}

func (a *App) SetLevel(level float64) {
	fyne.Do(func() {
		a.level.SetValue(level)
	})
}

func (a *App) ShowError(msg string) {
	fyne.Do(func() {
		a.status.SetText("Error: " + msg)
	})
}
