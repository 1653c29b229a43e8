// ABOUTME: Single-session haptic playback controller
// ABOUTME: Owns one loaded clip and one actuator session with load/play/stop/release semantics
package haptic

import (
	"log"
	"sync"
)

// State is the playback state of a controller
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Actuator renders haptic patterns on a device
type Actuator interface {
	// Start begins playback of p from its beginning, restarting if already active
	Start(p *Pattern) error

	// Stop halts playback; stopping an inactive actuator is not an error
	Stop() error

	// Active reports whether the device is still rendering the last pattern
	Active() bool

	// Close releases the actuator session
	Close() error
}

// Platform hands out actuator sessions
type Platform interface {
	Open() (Actuator, error)
}

// ControllerConfig holds controller configuration
type ControllerConfig struct {
	// Platform provides the actuator session (required)
	Platform Platform

	// Decoder validates clip data (default: JSONDecoder)
	Decoder Decoder

	// OnStateChange is called after every state transition, outside the controller lock
	OnStateChange func(State)
}

// Controller plays one haptic clip at a time on one actuator session.
// It is safe for concurrent use; every transition runs under the controller's lock.
type Controller struct {
	mu       sync.Mutex
	config   ControllerConfig
	actuator Actuator
	clip     *Clip
	state    State

	// transitions made under the current lock, delivered after unlock
	changes []State
}

// NewController allocates an actuator session and returns an idle controller with no clip
func NewController(config ControllerConfig) (*Controller, error) {
	if config.Platform == nil {
		return nil, newError("create", ResourceExhausted, "no actuator platform configured")
	}
	if config.Decoder == nil {
		config.Decoder = JSONDecoder{}
	}

	act, err := config.Platform.Open()
	if err != nil {
		return nil, &Error{Op: "create", Kind: ResourceExhausted, Err: err}
	}

	return &Controller{
		config:   config,
		actuator: act,
		state:    StateIdle,
	}, nil
}

// Load decodes data and replaces the current clip. Active playback is stopped first.
func (c *Controller) Load(data []byte) error {
	if c == nil {
		return newError("load", InvalidHandle, "nil controller")
	}
	return c.transition(func() error {
		if c.state == StateReleased {
			return newError("load", InvalidHandle, "controller released")
		}

		clip, err := NewClip(data, c.config.Decoder)
		if err != nil {
			return err
		}

		c.reconcile()
		if c.state == StatePlaying {
			if err := c.actuator.Stop(); err != nil {
				return &Error{Op: "load", Kind: ActuatorUnavailable, Err: err}
			}
		}

		c.clip = clip
		c.setState(StateIdle)
		log.Printf("Haptic clip loaded (%d bytes, %v)", len(data), clip.Duration())
		return nil
	})
}

// Play starts the loaded clip from the beginning. Playing again restarts it.
func (c *Controller) Play() error {
	if c == nil {
		return newError("play", InvalidHandle, "nil controller")
	}
	return c.transition(func() error {
		if c.state == StateReleased {
			return newError("play", InvalidHandle, "controller released")
		}
		if c.clip == nil {
			return newError("play", NoClipLoaded, "")
		}

		// A clip that already ended is replayed, not restarted
		c.reconcile()

		if err := c.actuator.Start(c.clip.Pattern()); err != nil {
			return &Error{Op: "play", Kind: ActuatorUnavailable, Err: err}
		}

		if c.state == StatePlaying {
			log.Printf("Haptic playback restarted")
		}
		c.setState(StatePlaying)
		return nil
	})
}

// Stop halts playback. Stopping when nothing plays succeeds without side effects.
func (c *Controller) Stop() error {
	if c == nil {
		return newError("stop", InvalidHandle, "nil controller")
	}
	return c.transition(func() error {
		if c.state == StateReleased {
			return newError("stop", InvalidHandle, "controller released")
		}

		c.reconcile()
		if c.state != StatePlaying {
			return nil
		}

		if err := c.actuator.Stop(); err != nil {
			return &Error{Op: "stop", Kind: ActuatorUnavailable, Err: err}
		}
		c.setState(StateStopped)
		return nil
	})
}

// Release stops playback, frees the actuator session and the clip, and
// invalidates the controller. A second release fails without repeating teardown.
func (c *Controller) Release() error {
	if c == nil {
		return newError("release", InvalidHandle, "nil controller")
	}
	return c.transition(func() error {
		if c.state == StateReleased {
			return newError("release", InvalidHandle, "controller already released")
		}

		c.reconcile()
		if c.state == StatePlaying {
			if err := c.actuator.Stop(); err != nil {
				log.Printf("Failed to stop actuator during release: %v", err)
			}
		}
		if err := c.actuator.Close(); err != nil {
			log.Printf("Failed to close actuator session: %v", err)
		}

		c.actuator = nil
		c.clip = nil
		c.setState(StateReleased)
		return nil
	})
}

// State returns the current state, folding an actuator that finished the
// clip on its own into StateStopped
func (c *Controller) State() State {
	if c == nil {
		return StateReleased
	}
	var s State
	c.transition(func() error {
		if c.state != StateReleased {
			c.reconcile()
		}
		s = c.state
		return nil
	})
	return s
}

// Clip returns the loaded clip, or nil
func (c *Controller) Clip() *Clip {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip
}

// transition runs fn under the lock and then delivers state change callbacks
func (c *Controller) transition(fn func() error) error {
	var changes []State
	err := func() error {
		c.mu.Lock()
		defer func() {
			changes = c.changes
			c.changes = nil
			c.mu.Unlock()
		}()
		return fn()
	}()

	if c.config.OnStateChange != nil {
		for _, s := range changes {
			c.config.OnStateChange(s)
		}
	}
	return err
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	log.Printf("Haptic state: %s -> %s", c.state, s)
	c.state = s
	c.changes = append(c.changes, s)
}

// reconcile moves Playing to Stopped once the actuator reports the clip ended
func (c *Controller) reconcile() {
	if c.state == StatePlaying && !c.actuator.Active() {
		c.setState(StateStopped)
	}
}
