// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates clip library, controller, receiver and UI
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/clips"
	"github.com/Resonate-Protocol/resonate-haptics/internal/receiver"
	"github.com/Resonate-Protocol/resonate-haptics/internal/ui"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	tea "github.com/charmbracelet/bubbletea"
)

// pollInterval is how often playback state is refreshed
const pollInterval = 100 * time.Millisecond

// Levels adjusts output strength; implemented by audio-coupled platforms
type Levels interface {
	SetGain(gain int)
	SetMuted(muted bool)
}

// Config holds player configuration
type Config struct {
	Library  *clips.Library
	Platform haptic.Platform
	Levels   Levels // optional

	// Gain and Muted are the output levels Levels was configured with
	Gain  int
	Muted bool

	UseTUI bool

	// Serve exposes the controller to remote senders
	Serve      bool
	Port       int
	Name       string
	EnableMDNS bool

	// Autoplay plays one clip and returns when it ends (headless mode)
	Autoplay string
}

// Player represents the main player application
type Player struct {
	config   Config
	ctrl     *haptic.Controller
	receiver *receiver.Receiver
	source   *Source

	tuiProg *tea.Program
	control *ui.Control

	stateMu sync.Mutex
	clip    string

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a player and allocates its controller
func New(config Config) (*Player, error) {
	if config.Library == nil {
		config.Library = clips.NewLibrary()
	}
	if config.Platform == nil {
		return nil, fmt.Errorf("actuator platform is required")
	}
	if config.Serve && config.Port == 0 {
		config.Port = receiver.DefaultPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	if config.Serve {
		// One receiver per process; it owns the controller
		r, err := receiver.NewReceiver(receiver.Config{
			Port:          config.Port,
			Name:          config.Name,
			Platform:      config.Platform,
			EnableMDNS:    config.EnableMDNS,
			OnStateChange: p.handleStateChange,
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create receiver: %w", err)
		}
		p.receiver = r
		p.ctrl = r.Controller()
		p.source = NewSource(config.Library, p.ctrl, r.Load)
	} else {
		ctrl, err := haptic.NewController(haptic.ControllerConfig{
			Platform:      config.Platform,
			OnStateChange: p.handleStateChange,
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create controller: %w", err)
		}
		p.ctrl = ctrl
		p.source = NewSource(config.Library, ctrl, p.trackClip)
	}

	return p, nil
}

// Controller returns the player's playback controller
func (p *Player) Controller() *haptic.Controller {
	return p.ctrl
}

// Source returns the named clip source
func (p *Player) Source() *Source {
	return p.source
}

// Start runs the player until Stop is called or the UI quits
func (p *Player) Start() error {
	if p.config.UseTUI {
		p.control = ui.NewControl()
		prog, err := ui.Run(p.control, p.config.Library.Names(), p.tuiLevels())
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		p.tuiProg = prog

		go func() {
			if _, err := prog.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			p.Stop()
		}()
		go p.handleActions()
	}

	receiverDone := make(chan struct{})
	var receiverErr error
	if p.receiver != nil {
		go func() {
			defer close(receiverDone)
			if receiverErr = p.receiver.Start(); receiverErr != nil {
				log.Printf("Receiver error: %v", receiverErr)
				p.Stop()
			}
		}()
		p.sendStatus(ui.StatusMsg{Listening: fmt.Sprintf(":%d", p.config.Port)})
	} else {
		close(receiverDone)
	}

	var playErr error
	if p.config.Autoplay != "" {
		if playErr = p.source.Play(p.config.Autoplay); playErr != nil {
			p.Stop()
		}
	}

	p.watchState()
	p.shutdown(receiverDone)

	if receiverErr != nil {
		return fmt.Errorf("receiver failed: %w", receiverErr)
	}
	return playErr
}

// shutdown stops the receiver, releases the controller and closes the UI
func (p *Player) shutdown(receiverDone <-chan struct{}) {
	// Receiver releases its own controller on shutdown
	if p.receiver != nil {
		p.receiver.Stop()
	}
	<-receiverDone
	p.release()

	if p.tuiProg != nil {
		p.tuiProg.Quit()
	}
}

// tuiLevels returns the levels the TUI starts from
func (p *Player) tuiLevels() ui.Levels {
	return ui.Levels{Gain: p.config.Gain, Muted: p.config.Muted}
}

// Stop stops the player
func (p *Player) Stop() {
	p.cancel()
}

// watchState polls the controller so clip ends are noticed, until shutdown
func (p *Player) watchState() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastSenders := -1
	for {
		select {
		case <-ticker.C:
			state := p.ctrl.State()

			if p.autoplayOnly() && state != haptic.StatePlaying {
				log.Printf("Clip %s finished", p.config.Autoplay)
				return
			}

			if p.receiver != nil {
				if n := len(p.receiver.Clients()); n != lastSenders {
					lastSenders = n
					p.sendStatus(ui.StatusMsg{Senders: &n})
				}
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// autoplayOnly reports whether the player exits once the autoplay clip ends
func (p *Player) autoplayOnly() bool {
	return p.config.Autoplay != "" && !p.config.UseTUI && p.receiver == nil
}

// release frees the local controller; a second release is harmless
func (p *Player) release() {
	if err := p.ctrl.Release(); err != nil && haptic.KindOf(err) != haptic.InvalidHandle {
		log.Printf("Error releasing controller: %v", err)
	}
}

// handleActions applies requests from the TUI
func (p *Player) handleActions() {
	for {
		select {
		case action := <-p.control.Actions:
			var err error
			switch action.Kind {
			case ui.ActionPlay:
				err = p.source.Play(action.Clip)
			case ui.ActionStop:
				err = p.source.Stop()
			case ui.ActionGain:
				if p.config.Levels != nil {
					p.config.Levels.SetGain(action.Gain)
				}
			case ui.ActionMute:
				if p.config.Levels != nil {
					p.config.Levels.SetMuted(action.Muted)
				}
			}

			msg := ""
			if err != nil {
				log.Printf("Action failed: %v", err)
				msg = err.Error()
			}
			p.sendStatus(ui.StatusMsg{Error: &msg})

		case <-p.control.Quit:
			p.Stop()
			return

		case <-p.ctx.Done():
			return
		}
	}
}

// trackClip loads into the local controller and remembers the clip name
func (p *Player) trackClip(name string, data []byte) error {
	if err := p.ctrl.Load(data); err != nil {
		return err
	}

	p.stateMu.Lock()
	p.clip = name
	p.stateMu.Unlock()
	return nil
}

// handleStateChange reports controller transitions
func (p *Player) handleStateChange(state haptic.State) {
	clip := p.currentClip()

	log.Printf("Playback %s: %s", state, clip)
	p.sendStatus(ui.StatusMsg{State: state.String(), Clip: clip})
}

// currentClip returns the name of the loaded clip
func (p *Player) currentClip() string {
	if p.receiver != nil {
		// Remote senders load through the receiver too
		return p.receiver.ClipName()
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.clip
}

// sendStatus forwards a status update to the TUI if running
func (p *Player) sendStatus(msg ui.StatusMsg) {
	if p.tuiProg != nil {
		p.tuiProg.Send(msg)
	}
}
