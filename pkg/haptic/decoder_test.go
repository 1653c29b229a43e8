// ABOUTME: Tests for the JSON clip decoder and pattern interpolation
// ABOUTME: Verifies envelope validation rules and Clip immutability
package haptic

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestJSONDecoderValid(t *testing.T) {
	p, err := JSONDecoder{}.Decode([]byte(validClip))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(p.Amplitude) != 2 {
		t.Errorf("expected 2 amplitude breakpoints, got %d", len(p.Amplitude))
	}
	if len(p.Frequency) != 1 {
		t.Errorf("expected 1 frequency breakpoint, got %d", len(p.Frequency))
	}
	if p.Duration() != 500*time.Millisecond {
		t.Errorf("expected 500ms duration, got %v", p.Duration())
	}
}

func TestJSONDecoderRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing version", `{"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5}]}}}}`},
		{"wrong major", `{"version":{"major":2},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5}]}}}}`},
		{"amplitude out of range", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":1.5}]}}}}`},
		{"negative time", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":-1,"amplitude":0.5}]}}}}`},
		{"time goes backwards", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":1,"amplitude":0.5},{"time":0.5,"amplitude":0.5}]}}}}`},
		{"missing amplitude value", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0}]}}}}`},
		{"clip too long", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5},{"time":100000,"amplitude":0.5}]}}}}`},
		{"duration overflow", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5},{"time":1e300,"amplitude":0.5}]}}}}`},
		{"frequency time too long", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5}],"frequency":[{"time":301,"frequency":0.5}]}}}}`},
		{"frequency out of range", `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5}],"frequency":[{"time":0,"frequency":-0.1}]}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (JSONDecoder{}).Decode([]byte(tt.data)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestOversizedClipIsMalformed(t *testing.T) {
	for _, end := range []string{"100000", "1e300"} {
		data := `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":1},{"time":` + end + `,"amplitude":1}]}}}}`

		_, err := NewClip([]byte(data), nil)
		if KindOf(err) != MalformedClip {
			t.Errorf("end %s: expected malformed clip, got %v", end, err)
		}
	}
}

func TestClipAtMaxDuration(t *testing.T) {
	data := `{"version":{"major":1},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":1},{"time":300,"amplitude":1}]}}}}`

	clip, err := NewClip([]byte(data), nil)
	if err != nil {
		t.Fatalf("expected clip at the length limit to load, got %v", err)
	}
	if clip.Duration() != MaxClipDuration {
		t.Errorf("expected %v, got %v", MaxClipDuration, clip.Duration())
	}
}

func TestDurationSaturates(t *testing.T) {
	p := &Pattern{Amplitude: []Breakpoint{{Time: 0, Value: 1}, {Time: 1e300, Value: 1}}}
	if p.Duration() != time.Duration(math.MaxInt64) {
		t.Errorf("expected saturated duration, got %v", p.Duration())
	}
}

func TestPatternInterpolation(t *testing.T) {
	p := &Pattern{
		Amplitude: []Breakpoint{{Time: 0, Value: 0}, {Time: 1, Value: 1}},
	}

	tests := []struct {
		t        float64
		expected float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}

	for _, tt := range tests {
		got := p.AmplitudeAt(tt.t)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("AmplitudeAt(%v): expected %v, got %v", tt.t, tt.expected, got)
		}
	}

	if f := p.FrequencyAt(0.5, 0.7); f != 0.7 {
		t.Errorf("expected default frequency 0.7, got %v", f)
	}
}

func TestClipCopiesData(t *testing.T) {
	data := []byte(validClip)
	clip, err := NewClip(data, JSONDecoder{})
	if err != nil {
		t.Fatalf("NewClip failed: %v", err)
	}

	data[0] = 'X'
	if clip.Data()[0] == 'X' {
		t.Error("clip should not alias caller data")
	}

	out := clip.Data()
	out[0] = 'Y'
	if clip.Data()[0] == 'Y' {
		t.Error("Data should return a copy")
	}
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Op: "play", Kind: NoClipLoaded}

	if !errors.Is(err, ErrNoClipLoaded) {
		t.Error("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrInvalidHandle) {
		t.Error("different kinds should not match")
	}
	if err.Error() != "play: no clip loaded" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should have unknown kind")
	}
}
