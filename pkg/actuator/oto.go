// ABOUTME: Oto-based actuator for audio-coupled haptic devices
// ABOUTME: Plays rendered patterns through a shared oto context with gain and mute control
package actuator

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	"github.com/ebitengine/oto/v3"
)

var (
	// ErrMuted is returned by Start while output is muted
	ErrMuted = errors.New("haptic output muted")

	// ErrNoSessions is returned by Open when MaxSessions sessions are open
	ErrNoSessions = errors.New("no actuator sessions available")

	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("actuator session closed")

	// ErrPatternTooLong is returned by Start for patterns beyond haptic.MaxClipDuration
	ErrPatternTooLong = errors.New("pattern exceeds maximum clip length")
)

// oto allows one context per process, so every Oto platform shares it
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoRate   int
	otoCtxErr error
)

func sharedContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoCtxErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoRate = sampleRate
		log.Printf("Haptic output initialized: %dHz mono", sampleRate)
	})

	if otoCtx != nil && otoRate != sampleRate {
		log.Printf("Warning: oto context already running at %dHz, ignoring requested %dHz", otoRate, sampleRate)
	}
	return otoCtx, otoCtxErr
}

// OtoConfig holds oto actuator configuration
type OtoConfig struct {
	// SampleRate for rendered patterns (default: 48000)
	SampleRate int

	// Gain is the output level 0-100 (default: 100)
	Gain int

	// Muted makes Start fail with ErrMuted
	Muted bool

	// MaxSessions limits concurrently open sessions (0 = unlimited)
	MaxSessions int
}

// Oto hands out actuator sessions that render through the audio device
type Oto struct {
	mu       sync.Mutex
	config   OtoConfig
	sessions int
}

// NewOto creates an Oto platform
func NewOto(config OtoConfig) *Oto {
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Gain == 0 {
		config.Gain = 100
	}
	return &Oto{config: config}
}

// Open implements haptic.Platform
func (o *Oto) Open() (haptic.Actuator, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.config.MaxSessions > 0 && o.sessions >= o.config.MaxSessions {
		return nil, ErrNoSessions
	}

	ctx, err := sharedContext(o.config.SampleRate)
	if err != nil {
		return nil, err
	}

	o.sessions++
	return &otoSession{platform: o, ctx: ctx}, nil
}

// SetGain sets the output gain (0-100)
func (o *Oto) SetGain(gain int) {
	if gain < 0 {
		gain = 0
	}
	if gain > 100 {
		gain = 100
	}
	o.mu.Lock()
	o.config.Gain = gain
	o.mu.Unlock()
	log.Printf("Haptic gain set to %d", gain)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	o.config.Muted = muted
	o.mu.Unlock()
	log.Printf("Haptics muted: %v", muted)
}

// GetGain returns current gain
func (o *Oto) GetGain() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config.Gain
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config.Muted
}

// Sessions returns the number of open sessions
func (o *Oto) Sessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions
}

func (o *Oto) levels() (sampleRate, gain int, muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config.SampleRate, o.config.Gain, o.config.Muted
}

func (o *Oto) closeSession() {
	o.mu.Lock()
	o.sessions--
	o.mu.Unlock()
}

// otoSession is one actuator session on the shared context
type otoSession struct {
	mu       sync.Mutex
	platform *Oto
	ctx      *oto.Context
	player   *oto.Player
	closed   bool
}

// Start renders p and plays it from the beginning
func (s *otoSession) Start(p *haptic.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	sampleRate, gain, muted := s.platform.levels()
	if muted {
		return ErrMuted
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("audio device error: %w", err)
	}

	if p.Duration() > haptic.MaxClipDuration {
		return ErrPatternTooLong
	}

	s.stopLocked()

	pcm := Render(p, sampleRate, gain)
	s.player = s.ctx.NewPlayer(bytes.NewReader(encodePCM(pcm)))
	s.player.Play()

	return nil
}

// Stop halts playback
func (s *otoSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	return s.stopLocked()
}

// Active reports whether the player is still draining the pattern
func (s *otoSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil && s.player.IsPlaying()
}

// Close releases the session
func (s *otoSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	err := s.stopLocked()
	s.closed = true
	s.platform.closeSession()
	return err
}

func (s *otoSession) stopLocked() error {
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	err := s.player.Close()
	s.player = nil
	return err
}
