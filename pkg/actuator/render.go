// ABOUTME: Haptic pattern synthesis for audio-coupled actuators
// ABOUTME: Renders amplitude/frequency envelopes to mono 16-bit PCM
package actuator

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
)

const (
	// DefaultSampleRate is the PCM rate used when none is configured
	DefaultSampleRate = 48000

	// Carrier range that normalised frequency values map onto
	MinFrequencyHz = 60.0
	MaxFrequencyHz = 300.0

	// DefaultFrequency is the normalised carrier for patterns without a frequency envelope
	DefaultFrequency = 0.5
)

// FrequencyHz maps a normalised [0,1] frequency onto the actuator carrier range
func FrequencyHz(norm float64) float64 {
	return MinFrequencyHz + norm*(MaxFrequencyHz-MinFrequencyHz)
}

// Render synthesises p as mono int16 samples at sampleRate, scaled by gain (0-100).
// Patterns with no length or longer than haptic.MaxClipDuration render nothing.
func Render(p *haptic.Pattern, sampleRate int, gain int) []int16 {
	d := p.Duration()
	if d <= 0 || d > haptic.MaxClipDuration || sampleRate <= 0 {
		return nil
	}
	numSamples := int(d.Seconds() * float64(sampleRate))
	multiplier := getGainMultiplier(gain)

	samples := make([]int16, numSamples)
	phase := 0.0
	for i := range samples {
		t := float64(i) / float64(sampleRate)

		// Accumulate phase so frequency ramps stay continuous
		phase += 2 * math.Pi * FrequencyHz(p.FrequencyAt(t, DefaultFrequency)) / float64(sampleRate)
		if phase >= 2*math.Pi {
			phase -= 2 * math.Pi
		}

		samples[i] = int16(math.Sin(phase) * p.AmplitudeAt(t) * multiplier * math.MaxInt16)
	}

	return samples
}

// encodePCM converts samples to little-endian bytes
func encodePCM(samples []int16) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output
}

// getGainMultiplier calculates the gain multiplier, clamping gain to 0-100
func getGainMultiplier(gain int) float64 {
	if gain < 0 {
		gain = 0
	}
	if gain > 100 {
		gain = 100
	}
	return float64(gain) / 100.0
}
