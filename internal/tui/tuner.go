// SPDX-License-Identifier: MIT
/*
Package tui renders the tuner display: detected note, frequency, a cents
gauge colored by tuning accuracy, an input level meter and the key
bindings for adjusting the target note, octave and A4 reference.

The display polls the analysis loop's latest result on its own cadence;
it never blocks or back-pressures the pipeline.
*/
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/tuner"
)

// refreshInterval is the display poll rate (~30 Hz), decoupled from both
// the capture callback and the analysis tick.
const refreshInterval = 33 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	inTuneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	closeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")).
			Bold(true)

	outOfTuneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// ResultProvider exposes the analysis loop's latest published result.
type ResultProvider interface {
	Latest() tuner.Result
}

// LevelProvider exposes the capture engine's input peak level.
type LevelProvider interface {
	InputLevel() float64
}

type keyMap struct {
	NotePrev   key.Binding
	NoteNext   key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	A4Up       key.Binding
	A4Down     key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NotePrev:   key.NewBinding(key.WithKeys("left")),
		NoteNext:   key.NewBinding(key.WithKeys("right")),
		OctaveUp:   key.NewBinding(key.WithKeys("up")),
		OctaveDown: key.NewBinding(key.WithKeys("down")),
		A4Up:       key.NewBinding(key.WithKeys("+", "=")),
		A4Down:     key.NewBinding(key.WithKeys("-", "_")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model for the tuner display.
type Model struct {
	results ResultProvider
	level   LevelProvider
	refs    *tuner.ReferenceStore
	keys    keyMap

	result tuner.Result
	width  int
}

// NewModel creates the display model over the given providers.
func NewModel(results ResultProvider, level LevelProvider, refs *tuner.ReferenceStore) Model {
	return Model{
		results: results,
		level:   level,
		refs:    refs,
		keys:    defaultKeyMap(),
	}
}

// Init starts the display poll loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles poll ticks, resizes and key input. Key input swaps whole
// validated reference snapshots; the analysis loop picks them up on its
// next pass.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.result = m.results.Latest()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		ref := m.refs.Load()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NotePrev):
			ref.TargetNote = ref.TargetNote.Prev()
		case key.Matches(msg, m.keys.NoteNext):
			ref.TargetNote = ref.TargetNote.Next()
		case key.Matches(msg, m.keys.OctaveUp):
			ref.TargetOctave++
		case key.Matches(msg, m.keys.OctaveDown):
			ref.TargetOctave--
		case key.Matches(msg, m.keys.A4Up):
			ref.A4 += 0.1
		case key.Matches(msg, m.keys.A4Down):
			ref.A4 -= 0.1
		default:
			return m, nil
		}
		m.refs.Swap(ref) // Swap re-clamps out-of-range values.
	}

	return m, nil
}

// View renders the full display.
func (m Model) View() string {
	ref := m.refs.Load()
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Instrument Tuner"))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target: %s  A4 = %s\n\n",
		targetStyle.Render(fmt.Sprintf("%s%d (%.2f Hz)", ref.TargetNote, ref.TargetOctave, ref.TargetFrequency())),
		infoStyle.Render(fmt.Sprintf("%.1f Hz", ref.A4))))

	sb.WriteString(m.renderReading())
	sb.WriteString("\n")
	sb.WriteString(m.renderGauge())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderLevel())
	sb.WriteString("\n\n")
	sb.WriteString(infoStyle.Render("←/→: Note • ↑/↓: Octave • +/-: A4 • q: Quit"))
	sb.WriteString("\n")

	return sb.String()
}

// renderReading shows the detected note, frequency and cents deviation.
func (m Model) renderReading() string {
	if !m.result.HasSignal {
		return neutralStyle.Render("Detected: --            listening...") + "\n"
	}

	style := m.accuracyStyle()
	return fmt.Sprintf("Detected: %s  %s  %s\n",
		style.Render(fmt.Sprintf("%s%d", m.result.NoteName, m.result.Octave)),
		infoStyle.Render(fmt.Sprintf("%.2f Hz", m.result.Frequency)),
		style.Render(fmt.Sprintf("%+.1f cents (%s)", m.result.Cents, m.result.Accuracy)))
}

// renderGauge draws a fixed-width ruler spanning -50..+50 cents with a
// marker at the current deviation.
func (m Model) renderGauge() string {
	const halfWidth = 20 // cells per side; 2.5 cents each

	gauge := make([]rune, 2*halfWidth+1)
	for i := range gauge {
		gauge[i] = '·'
	}
	gauge[halfWidth] = '|'

	if m.result.HasSignal {
		cents := m.result.Cents
		if cents > 50 {
			cents = 50
		}
		if cents < -50 {
			cents = -50
		}
		pos := halfWidth + int(cents/50*halfWidth)
		gauge[pos] = '●'
	}

	return fmt.Sprintf("  -50 %s +50", m.accuracyStyle().Render(string(gauge)))
}

// renderLevel draws the input peak meter.
func (m Model) renderLevel() string {
	const cells = 20

	level := 0.0
	if m.level != nil {
		level = m.level.InputLevel()
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * cells)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return fmt.Sprintf("Input:    %s", infoStyle.Render(bar))
}

func (m Model) accuracyStyle() lipgloss.Style {
	switch m.result.Accuracy {
	case tuner.AccuracyInTune:
		return inTuneStyle
	case tuner.AccuracyClose:
		return closeStyle
	case tuner.AccuracyOutOfTune:
		return outOfTuneStyle
	default:
		return neutralStyle
	}
}

// Run launches the tuner display and blocks until the user quits.
func Run(results ResultProvider, level LevelProvider, refs *tuner.ReferenceStore) error {
	p := tea.NewProgram(
		NewModel(results, level, refs),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
