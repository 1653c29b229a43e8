// ABOUTME: Bubbletea model for the haptic player TUI
// ABOUTME: Defines clip selection, playback state display and key handling
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Clips
	clips   []string
	current int

	// Playback
	state   string
	playing string
	lastErr string
	gain    int
	muted   bool

	// Receiver
	listening string
	senders   int

	control *Control

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderClips()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders playback and receiver status
func (m Model) renderHeader() string {
	receiver := "Local only"
	if m.listening != "" {
		receiver = fmt.Sprintf("Receiving on %s (%d senders)", m.listening, m.senders)
	}

	status := m.state
	if m.playing != "" {
		status = fmt.Sprintf("%s: %s", m.state, m.playing)
	}

	s := fmt.Sprintf(`┌─ Resonate Haptics ───────────────────────────────────┐
│ State:  %-45s │
│ Remote: %-45s │
`, truncate(status, 45), truncate(receiver, 45))

	if m.lastErr != "" {
		s += fmt.Sprintf("│ Error:  %-45s │\n", truncate(m.lastErr, 45))
	}

	return s + "├──────────────────────────────────────────────────────┤\n"
}

// renderClips renders the clip list with the selection marker
func (m Model) renderClips() string {
	if len(m.clips) == 0 {
		return "│ No haptic clips found                                │\n"
	}

	s := ""
	for i, name := range m.clips {
		marker := " "
		if i == m.current {
			marker = "▶"
		}
		s += fmt.Sprintf("│ %s %-50s │\n", marker, truncate(name, 50))
	}
	return s
}

// renderControls renders gain and mute status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	return fmt.Sprintf("├──────────────────────────────────────────────────────┤\n"+
		"│ Gain: [%s] %3d%%%-26s │\n",
		renderBar(m.gain, 100, 10), m.gain, muteIcon)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ space:Play/Stop+Next  enter:Stop+Next  s:Stop  ←/→:Clip │
│ ↑/↓:Gain  m:Mute  q:Quit                             │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case " ":
		if m.state == "playing" {
			// Releasing a playing clip stops it and moves to the next one
			m.send(ActionMsg{Kind: ActionStop})
			m.current = m.next(1)
		} else if len(m.clips) > 0 {
			m.send(ActionMsg{Kind: ActionPlay, Clip: m.clips[m.current]})
		}
	case "enter":
		if m.state == "playing" {
			m.send(ActionMsg{Kind: ActionStop})
			m.current = m.next(1)
		}
	case "s":
		m.send(ActionMsg{Kind: ActionStop})
	case "right", "n":
		m.current = m.next(1)
	case "left", "p":
		m.current = m.next(-1)
	case "up":
		m.gain += 5
		if m.gain > 100 {
			m.gain = 100
		}
		m.send(ActionMsg{Kind: ActionGain, Gain: m.gain})
	case "down":
		m.gain -= 5
		if m.gain < 0 {
			m.gain = 0
		}
		m.send(ActionMsg{Kind: ActionGain, Gain: m.gain})
	case "m":
		m.muted = !m.muted
		m.send(ActionMsg{Kind: ActionMute, Muted: m.muted})
	}

	return m, nil
}

// next returns the clip index delta steps away, wrapping around
func (m Model) next(delta int) int {
	if len(m.clips) == 0 {
		return 0
	}
	return ((m.current+delta)%len(m.clips) + len(m.clips)) % len(m.clips)
}

// send forwards an action without blocking the UI
func (m Model) send(action ActionMsg) {
	if m.control == nil {
		return
	}
	select {
	case m.control.Actions <- action:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Clip != "" {
		m.playing = msg.Clip
	}
	if msg.Error != nil {
		m.lastErr = *msg.Error
	}
	if msg.Listening != "" {
		m.listening = msg.Listening
	}
	if msg.Senders != nil {
		m.senders = *msg.Senders
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	State     string
	Clip      string
	Error     *string // nil leaves the last error, "" clears it
	Listening string
	Senders   *int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
