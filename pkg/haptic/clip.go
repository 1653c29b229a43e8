// ABOUTME: Haptic clip and pattern types
// ABOUTME: A Clip is an immutable decoded pattern plus the raw data it came from
package haptic

import (
	"math"
	"time"
)

// MaxClipDuration bounds the length of a decodable clip
const MaxClipDuration = 5 * time.Minute

// Breakpoint is one point of an envelope
type Breakpoint struct {
	Time  float64 // Seconds from clip start
	Value float64 // Normalised to [0,1]
}

// Pattern is decoded haptic data ready for an actuator
type Pattern struct {
	Amplitude []Breakpoint
	Frequency []Breakpoint // Optional; empty means a fixed carrier
}

// Duration returns the time of the last breakpoint in either envelope,
// saturating at the largest representable duration
func (p *Pattern) Duration() time.Duration {
	var end float64
	for _, env := range [][]Breakpoint{p.Amplitude, p.Frequency} {
		if n := len(env); n > 0 && env[n-1].Time > end {
			end = env[n-1].Time
		}
	}
	if end >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(end * float64(time.Second))
}

// AmplitudeAt returns the linearly interpolated amplitude at t seconds
func (p *Pattern) AmplitudeAt(t float64) float64 {
	return interpolate(p.Amplitude, t, 0)
}

// FrequencyAt returns the linearly interpolated frequency at t seconds,
// or def when the pattern carries no frequency envelope
func (p *Pattern) FrequencyAt(t float64, def float64) float64 {
	return interpolate(p.Frequency, t, def)
}

func interpolate(env []Breakpoint, t float64, def float64) float64 {
	if len(env) == 0 {
		return def
	}
	if t <= env[0].Time {
		return env[0].Value
	}
	for i := 1; i < len(env); i++ {
		a, b := env[i-1], env[i]
		if t > b.Time {
			continue
		}
		span := b.Time - a.Time
		if span <= 0 {
			return b.Value
		}
		return a.Value + (b.Value-a.Value)*(t-a.Time)/span
	}
	return env[len(env)-1].Value
}

// Clip is a loaded haptic clip. It is never mutated after construction.
type Clip struct {
	data    []byte
	pattern *Pattern
}

// NewClip decodes data with dec and returns the resulting clip
func NewClip(data []byte, dec Decoder) (*Clip, error) {
	if len(data) == 0 {
		return nil, newError("load", MalformedClip, "empty clip data")
	}
	if dec == nil {
		dec = JSONDecoder{}
	}
	pattern, err := dec.Decode(data)
	if err != nil {
		return nil, &Error{Op: "load", Kind: MalformedClip, Err: err}
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	return &Clip{data: raw, pattern: pattern}, nil
}

// Data returns a copy of the raw clip data
func (c *Clip) Data() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Pattern returns the decoded pattern
func (c *Clip) Pattern() *Pattern {
	return c.pattern
}

// Duration returns the clip length
func (c *Clip) Duration() time.Duration {
	return c.pattern.Duration()
}
