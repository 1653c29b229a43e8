// ABOUTME: Clip decoder interface and JSON envelope decoder
// ABOUTME: Validates .haptic JSON documents into amplitude/frequency envelopes
package haptic

import (
	"encoding/json"
	"fmt"
	"math"
)

// Decoder turns raw clip data into a validated pattern
type Decoder interface {
	Decode(data []byte) (*Pattern, error)
}

// SupportedMajorVersion is the clip format major version JSONDecoder accepts
const SupportedMajorVersion = 1

// JSONDecoder decodes the envelope section of .haptic JSON clips.
// Fields it does not know about (metadata, emphasis, editor data) are ignored.
type JSONDecoder struct{}

type hapticDocument struct {
	Version *struct {
		Major int `json:"major"`
		Minor int `json:"minor"`
		Patch int `json:"patch"`
	} `json:"version"`
	Signals struct {
		Continuous struct {
			Envelopes struct {
				Amplitude []struct {
					Time      float64  `json:"time"`
					Amplitude *float64 `json:"amplitude"`
				} `json:"amplitude"`
				Frequency []struct {
					Time      float64  `json:"time"`
					Frequency *float64 `json:"frequency"`
				} `json:"frequency"`
			} `json:"envelopes"`
		} `json:"continuous"`
	} `json:"signals"`
}

// Decode implements Decoder
func (JSONDecoder) Decode(data []byte) (*Pattern, error) {
	var doc hapticDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid clip JSON: %w", err)
	}

	if doc.Version == nil {
		return nil, fmt.Errorf("missing version")
	}
	if doc.Version.Major != SupportedMajorVersion {
		return nil, fmt.Errorf("unsupported clip version %d.%d.%d",
			doc.Version.Major, doc.Version.Minor, doc.Version.Patch)
	}

	env := doc.Signals.Continuous.Envelopes
	if len(env.Amplitude) == 0 {
		return nil, fmt.Errorf("amplitude envelope is empty")
	}

	p := &Pattern{
		Amplitude: make([]Breakpoint, 0, len(env.Amplitude)),
		Frequency: make([]Breakpoint, 0, len(env.Frequency)),
	}
	for _, bp := range env.Amplitude {
		if bp.Amplitude == nil {
			return nil, fmt.Errorf("amplitude breakpoint at %.3fs has no value", bp.Time)
		}
		p.Amplitude = append(p.Amplitude, Breakpoint{Time: bp.Time, Value: *bp.Amplitude})
	}
	for _, bp := range env.Frequency {
		if bp.Frequency == nil {
			return nil, fmt.Errorf("frequency breakpoint at %.3fs has no value", bp.Time)
		}
		p.Frequency = append(p.Frequency, Breakpoint{Time: bp.Time, Value: *bp.Frequency})
	}

	if err := validateEnvelope("amplitude", p.Amplitude); err != nil {
		return nil, err
	}
	if err := validateEnvelope("frequency", p.Frequency); err != nil {
		return nil, err
	}

	return p, nil
}

// validateEnvelope checks times are finite, non-negative, non-decreasing and
// within MaxClipDuration, and values are in [0,1]
func validateEnvelope(name string, env []Breakpoint) error {
	limit := MaxClipDuration.Seconds()
	prev := 0.0
	for i, bp := range env {
		if math.IsNaN(bp.Time) || math.IsInf(bp.Time, 0) {
			return fmt.Errorf("%s breakpoint %d: time is not a finite number", name, i)
		}
		if bp.Time > limit {
			return fmt.Errorf("%s breakpoint %d: time %.3f exceeds maximum clip length %v", name, i, bp.Time, MaxClipDuration)
		}
		if bp.Time < 0 {
			return fmt.Errorf("%s breakpoint %d: negative time %.3f", name, i, bp.Time)
		}
		if i > 0 && bp.Time < prev {
			return fmt.Errorf("%s breakpoint %d: time %.3f before %.3f", name, i, bp.Time, prev)
		}
		if !(bp.Value >= 0 && bp.Value <= 1) {
			return fmt.Errorf("%s breakpoint %d: value %.3f out of range [0,1]", name, i, bp.Value)
		}
		prev = bp.Time
	}
	return nil
}
