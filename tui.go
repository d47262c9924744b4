package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type statusMsg string
type recordingMsg bool
type transcriptMsg string
type latexMsg string
type levelMsg float64
type errorMsg string
type frameMsg time.Time

var (
	styleTitle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	styleRec        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleIdle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleStatus     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleError      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleLevelOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleLevelOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	stylePaneTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	styleTranscript = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleLatex      = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	styleHelp       = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type tuiModel struct {
	status        string
	recording     bool
	transcript    string
	latex         string
	level         float64
	errText       string
	width, height int

	onToggle         func()
	onCopyTranscript func()
	onCopyLatex      func()
}

// TUI adapts a bubbletea program to the controller's View. The Set*
// methods run on pipeline goroutines, so state changes travel as
// messages into the program loop.
type TUI struct {
	program *tea.Program
}

func NewTUI(onToggle, onCopyTranscript, onCopyLatex func()) *TUI {
	m := tuiModel{
		status:           "Ready",
		onToggle:         onToggle,
		onCopyTranscript: onCopyTranscript,
		onCopyLatex:      onCopyLatex,
	}
	return &TUI{program: tea.NewProgram(m, tea.WithAltScreen())}
}

func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

func (t *TUI) Quit() { t.program.Quit() }

func (t *TUI) SetStatus(text string)     { t.program.Send(statusMsg(text)) }
func (t *TUI) SetRecording(on bool)      { t.program.Send(recordingMsg(on)) }
func (t *TUI) SetTranscript(text string) { t.program.Send(transcriptMsg(text)) }
func (t *TUI) SetLatex(text string)      { t.program.Send(latexMsg(text)) }
func (t *TUI) SetLevel(level float64)    { t.program.Send(levelMsg(level)) }
func (t *TUI) ShowError(msg string)      { t.program.Send(errorMsg(msg)) }

func tuiFrame() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(ts time.Time) tea.Msg {
		return frameMsg(ts)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiFrame()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ":
			// Callbacks re-enter via Send, so they run off the loop.
			if m.onToggle != nil {
				go m.onToggle()
			}
		case "t":
			if m.onCopyTranscript != nil {
				go m.onCopyTranscript()
			}
		case "l":
			if m.onCopyLatex != nil {
				go m.onCopyLatex()
			}
		}

	case frameMsg:
		return m, tuiFrame()

	case statusMsg:
		m.status = string(msg)
		m.errText = ""

	case recordingMsg:
		m.recording = bool(msg)
		if m.recording {
			m.errText = ""
		}
		if !m.recording {
			m.level = 0
		}

	case transcriptMsg:
		m.transcript = string(msg)

	case latexMsg:
		m.latex = string(msg)

	case levelMsg:
		// Light smoothing so the meter doesn't flicker.
		m.level = m.level*0.6 + float64(msg)*0.4

	case errorMsg:
		m.errText = string(msg)
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(styleTitle.Render("eqvox - speak an equation, get LaTeX"))
	b.WriteString("\n\n")

	if m.recording {
		b.WriteString(styleRec.Render("● REC "))
	} else {
		b.WriteString(styleIdle.Render("○ IDLE "))
	}
	if m.errText != "" {
		b.WriteString(styleError.Render("Error: " + m.errText))
	} else {
		b.WriteString(styleStatus.Render(m.status))
	}
	b.WriteString("\n")

	b.WriteString(renderLevelBar(m.level, m.recording))
	b.WriteString("\n\n")

	wrapWidth := m.width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	b.WriteString(stylePaneTitle.Render("Transcript"))
	b.WriteString("\n")
	if m.transcript != "" {
		for _, line := range wrapText(m.transcript, wrapWidth) {
			b.WriteString("  " + styleTranscript.Render(line) + "\n")
		}
	} else {
		b.WriteString(styleIdle.Render("  (none yet)") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(stylePaneTitle.Render("LaTeX"))
	b.WriteString("\n")
	if m.latex != "" {
		for _, line := range wrapText(m.latex, wrapWidth) {
			b.WriteString("  " + styleLatex.Render(line) + "\n")
		}
	} else {
		b.WriteString(styleIdle.Render("  (none yet)") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styleHelp.Render("space record/stop   t copy transcript   l copy latex   q quit"))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("eqvox " + version))

	return b.String()
}

func renderLevelBar(level float64, recording bool) string {
	const width = 30
	filled := int(level * width * 3) // quiet speech should still register
	if filled > width {
		filled = width
	}
	if !recording {
		filled = 0
	}
	bar := styleLevelOn.Render(strings.Repeat("█", filled)) +
		styleLevelOff.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("  %s", bar)
}

func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len(cur)+1+len(w) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		lines = append(lines, cur)
	}
	return lines
}
