// ABOUTME: Headless actuator for platforms without haptic hardware
// ABOUTME: Accepts every pattern and reports it active for the pattern's duration
package actuator

import (
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
)

// Null hands out sessions that render nothing
type Null struct {
	// MaxSessions limits concurrently open sessions (0 = unlimited)
	MaxSessions int

	mu       sync.Mutex
	sessions int
}

// NewNull creates a Null platform
func NewNull() *Null {
	return &Null{}
}

// Open implements haptic.Platform
func (n *Null) Open() (haptic.Actuator, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.MaxSessions > 0 && n.sessions >= n.MaxSessions {
		return nil, ErrNoSessions
	}
	n.sessions++
	return &nullSession{platform: n, now: time.Now}, nil
}

// Sessions returns the number of open sessions
func (n *Null) Sessions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sessions
}

type nullSession struct {
	mu       sync.Mutex
	platform *Null
	now      func() time.Time
	started  time.Time
	duration time.Duration
	active   bool
	closed   bool
}

func (s *nullSession) Start(p *haptic.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.started = s.now()
	s.duration = p.Duration()
	s.active = true
	return nil
}

func (s *nullSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.active = false
	return nil
}

func (s *nullSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.now().Sub(s.started) < s.duration
}

func (s *nullSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.active = false

	s.platform.mu.Lock()
	s.platform.sessions--
	s.platform.mu.Unlock()
	return nil
}
