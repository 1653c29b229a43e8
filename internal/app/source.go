// ABOUTME: Named clip source driving one playback controller
// ABOUTME: Play loads the named clip from the library and starts it
package app

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-haptics/internal/clips"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
)

// LoadFunc installs named clip data into a controller
type LoadFunc func(name string, data []byte) error

// Source plays clips from a library by name
type Source struct {
	library *clips.Library
	ctrl    *haptic.Controller
	load    LoadFunc
}

// NewSource creates a source; a nil load uses the controller directly
func NewSource(library *clips.Library, ctrl *haptic.Controller, load LoadFunc) *Source {
	if load == nil {
		load = func(_ string, data []byte) error {
			return ctrl.Load(data)
		}
	}
	return &Source{library: library, ctrl: ctrl, load: load}
}

// Play loads the named clip and starts it
func (s *Source) Play(name string) error {
	data, ok := s.library.Get(name)
	if !ok {
		return fmt.Errorf("unknown clip: %s", name)
	}

	if err := s.load(name, data); err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	if err := s.ctrl.Play(); err != nil {
		return fmt.Errorf("failed to play %s: %w", name, err)
	}
	return nil
}

// Stop halts playback
func (s *Source) Stop() error {
	return s.ctrl.Stop()
}
