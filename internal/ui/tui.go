// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the haptic player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind identifies a user request from the TUI
type ActionKind int

const (
	ActionPlay ActionKind = iota
	ActionStop
	ActionGain
	ActionMute
)

// ActionMsg is a playback request sent from the TUI to the app
type ActionMsg struct {
	Kind  ActionKind
	Clip  string // ActionPlay
	Gain  int    // ActionGain
	Muted bool   // ActionMute
}

// QuitMsg signals the user asked to quit
type QuitMsg struct{}

// Control holds channels for TUI to app communication
type Control struct {
	Actions chan ActionMsg
	Quit    chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Actions: make(chan ActionMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// Levels is the output level the TUI starts from
type Levels struct {
	Gain  int
	Muted bool
}

// NewModel creates a new TUI model for the given clip names
func NewModel(ctrl *Control, clips []string, levels Levels) Model {
	gain := levels.Gain
	if gain < 0 {
		gain = 0
	}
	if gain > 100 {
		gain = 100
	}

	return Model{
		clips:   clips,
		state:   "idle",
		gain:    gain,
		muted:   levels.Muted,
		control: ctrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctrl *Control, clips []string, levels Levels) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, clips, levels), tea.WithAltScreen())
	return p, nil
}
