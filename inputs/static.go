// Package inputs provides parameter sources for the glitch passes.
package inputs

import (
	"sync"

	"github.com/richinsley/goglitch/glitch"
)

// Control names one adjustable parameter.
type Control int

const (
	ScanLineJitter Control = iota
	VerticalJump
	HorizontalShake
	ColorDrift
	Intensity
	numControls
)

var controlNames = [...]string{"scanLineJitter", "verticalJump", "horizontalShake", "colorDrift", "intensity"}

func (c Control) String() string {
	if c < 0 || c >= numControls {
		return "unknown"
	}
	return controlNames[c]
}

// StaticSource holds parameter values set by the host, for example from
// keyboard callbacks on the window thread. It is safe for concurrent use.
type StaticSource struct {
	mu     sync.Mutex
	values [numControls]float32
}

func NewStaticSource(analog glitch.AnalogParameters, digital glitch.DigitalParameters) *StaticSource {
	s := &StaticSource{}
	s.values[ScanLineJitter] = analog.ScanLineJitter
	s.values[VerticalJump] = analog.VerticalJump
	s.values[HorizontalShake] = analog.HorizontalShake
	s.values[ColorDrift] = analog.ColorDrift
	s.values[Intensity] = digital.Intensity
	return s
}

// Set stores v, clamped to [0,1].
func (s *StaticSource) Set(c Control, v float32) {
	if c < 0 || c >= numControls {
		return
	}
	s.mu.Lock()
	s.values[c] = clamp01(v)
	s.mu.Unlock()
}

// Nudge adds delta to a control and returns the new value.
func (s *StaticSource) Nudge(c Control, delta float32) float32 {
	if c < 0 || c >= numControls {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[c] = clamp01(s.values[c] + delta)
	return s.values[c]
}

func (s *StaticSource) Get(c Control) float32 {
	if c < 0 || c >= numControls {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[c]
}

func (s *StaticSource) AnalogParameters() (glitch.AnalogParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return glitch.AnalogParameters{
		ScanLineJitter:  s.values[ScanLineJitter],
		VerticalJump:    s.values[VerticalJump],
		HorizontalShake: s.values[HorizontalShake],
		ColorDrift:      s.values[ColorDrift],
	}, nil
}

func (s *StaticSource) DigitalParameters() (glitch.DigitalParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return glitch.DigitalParameters{Intensity: s.values[Intensity]}, nil
}

func clamp01(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
