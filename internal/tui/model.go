package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shrink/internal/processor"
)

// Model follows a processor run. Which counters it shows depends on the run
// mode: a scan never writes, so it has no savings to report.
type Model struct {
	mode    processor.Mode
	updates <-chan processor.ProgressUpdate
	started time.Time
	width   int

	total    int
	counts   processor.Summary
	current  string
	quitting bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

func NewModel(mode processor.Mode, updates <-chan processor.ProgressUpdate) Model {
	return Model{mode: mode, updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.apply(processor.ProgressUpdate(msg))
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) apply(u processor.ProgressUpdate) {
	if u.Current != "" {
		m.current = u.Current
	}
	m.total += u.TotalDelta
	m.counts.Processed += u.ProcessedDelta
	m.counts.Errors += u.ErrorDelta
	m.counts.Stripped += u.StrippedDelta
	m.counts.Passthrough += u.PassthroughDelta
	m.counts.BytesSaved += u.BytesSavedDelta
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		titleStyle.Render("shrink") + dimStyle.Render(" "+m.mode.String()),
		m.filesLine(),
	}

	switch m.mode {
	case processor.ModeStrip:
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("EXIF stripped: %d", m.counts.Stripped)),
			m.savedLine(),
		)
	case processor.ModeCompress:
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("EXIF stripped: %d", m.counts.Stripped))+
				dimStyle.Render(fmt.Sprintf("  originals kept: %d", m.counts.Passthrough)),
			m.savedLine(),
		)
	}

	if m.current != "" {
		lines = append(lines, dimStyle.Render("Now: "+truncatePath(m.current, m.barWidth())))
	}
	lines = append(lines,
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", time.Since(m.started).Round(time.Millisecond))),
		barStyle.Render(renderBar(m.barWidth(), m.ratio())),
	)

	return strings.Join(lines, "\n")
}

func (m Model) filesLine() string {
	line := labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.counts.Processed, m.total))
	if m.counts.Errors > 0 {
		return line + errorStyle.Render(fmt.Sprintf("  errors:%d", m.counts.Errors))
	}
	return line + dimStyle.Render("  errors:0")
}

func (m Model) savedLine() string {
	style := savedStyle
	if m.counts.BytesSaved < 0 {
		style = errorStyle
	}
	return labelStyle.Render("Bytes saved: ") + style.Render(FormatBytes(m.counts.BytesSaved))
}

func (m Model) barWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(20, min(60, m.width-10))
}

func (m Model) ratio() float64 {
	if m.total == 0 {
		return 0
	}
	return math.Min(1, float64(m.counts.Processed)/float64(m.total))
}

// truncatePath keeps the tail of p, where the file name is.
func truncatePath(p string, width int) string {
	if len(p) <= width || width < 4 {
		return p
	}
	return "..." + p[len(p)-(width-3):]
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	savedStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle = lipgloss.NewStyle().Foreground(ColorWarn)
)
