package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-humanclock/engine"
	"midi-humanclock/model"
	"midi-humanclock/theme"
)

const defaultMaxLines = 8

type Model struct {
	Shared *model.Model
	Engine *engine.Engine
	Theme  *theme.Theme

	maxLines int
	lines    []string
	quitting bool
	now      time.Time
}

type FrameMsg time.Time

type LineMsg string

func NewModel(shared *model.Model, eng *engine.Engine, th *theme.Theme, maxLines int) Model {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	return Model{
		Shared:   shared,
		Engine:   eng,
		Theme:    th,
		maxLines: maxLines,
		now:      time.Now(),
	}
}

func ListenForLines(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-eng.Lines()
		if !ok {
			return nil
		}
		return LineMsg(line)
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForLines(m.Engine),
		frameTick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			m.lines = nil
		}

	case LineMsg:
		// Like the original display: wipe and start over when full.
		if len(m.lines) >= m.maxLines {
			m.lines = nil
		}
		m.lines = append(m.lines, string(msg))
		return m, ListenForLines(m.Engine)

	case FrameMsg:
		m.now = time.Time(msg)
		return m, frameTick()
	}

	return m, nil
}

// ledRune picks the beat LED glyph for the current frame. The LED runs at
// the quarter-note period recovered by the PLL, half on, half off.
func (m Model) ledRune(s model.Snapshot) rune {
	switch s.LedStatus {
	case model.LedOn:
		if s.LedIntervalMs == 0 {
			return m.Theme.Symbols.LedOn
		}
		period := int64(s.LedIntervalMs)
		if m.now.UnixMilli()%period < period/2 {
			return m.Theme.Symbols.LedOn
		}
		return m.Theme.Symbols.LedOff
	case model.LedOff:
		return m.Theme.Symbols.LedOff
	default:
		return m.Theme.Symbols.LedUndef
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Shared.Get()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	valueStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	header := headerStyle.Render(fmt.Sprintf("midi-humanclock  %c", m.ledRune(s)))

	hrMark := m.Theme.Symbols.Unlinked
	if s.HRConnected {
		hrMark = m.Theme.Symbols.Linked
	}
	hr := valueStyle.Render(fmt.Sprintf("%c BLE hr: %d BPM", hrMark, s.HRBpm))
	meas := valueStyle.Render(fmt.Sprintf("Meas: %s", s.MeasSbpm))
	pll := valueStyle.Render(fmt.Sprintf("PLL:  %s", s.PllSbpm))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(hr)
	out.WriteString("\n")
	out.WriteString(meas)
	out.WriteString("\n")
	out.WriteString(pll)
	out.WriteString("\n\n")

	for _, line := range m.lines {
		out.WriteString(dimStyle.Render(line))
		out.WriteString("\n")
	}
	for i := len(m.lines); i < m.maxLines; i++ {
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("c:clear  q:quit"))

	return out.String()
}
