package inputs

import (
	"math"

	"github.com/richinsley/goglitch/glitch"
)

// Clock reports the host's elapsed time in seconds.
type Clock func() float64

// LFOSource sweeps every control between zero and its peak with a raised
// sine, each control at its own rate. Useful for recording demo clips.
type LFOSource struct {
	clock  Clock
	peaks  [numControls]float32
	rates  [numControls]float64 // Hz
	phases [numControls]float64
}

// NewLFOSource starts every control at the given peak with default rates.
func NewLFOSource(clock Clock, analog glitch.AnalogParameters, digital glitch.DigitalParameters) *LFOSource {
	l := &LFOSource{
		clock:  clock,
		rates:  [numControls]float64{0.13, 0.07, 0.29, 0.11, 0.17},
		phases: [numControls]float64{0, 0.25, 0.5, 0.75, 0.1},
	}
	l.peaks[ScanLineJitter] = analog.ScanLineJitter
	l.peaks[VerticalJump] = analog.VerticalJump
	l.peaks[HorizontalShake] = analog.HorizontalShake
	l.peaks[ColorDrift] = analog.ColorDrift
	l.peaks[Intensity] = digital.Intensity
	return l
}

// SetRate changes the sweep frequency of one control.
func (l *LFOSource) SetRate(c Control, hz float64) {
	if c >= 0 && c < numControls {
		l.rates[c] = hz
	}
}

func (l *LFOSource) value(c Control, t float64) float32 {
	s := 0.5 - 0.5*math.Cos(2*math.Pi*(l.rates[c]*t+l.phases[c]))
	return clamp01(l.peaks[c] * float32(s))
}

func (l *LFOSource) AnalogParameters() (glitch.AnalogParameters, error) {
	t := l.clock()
	return glitch.AnalogParameters{
		ScanLineJitter:  l.value(ScanLineJitter, t),
		VerticalJump:    l.value(VerticalJump, t),
		HorizontalShake: l.value(HorizontalShake, t),
		ColorDrift:      l.value(ColorDrift, t),
	}, nil
}

func (l *LFOSource) DigitalParameters() (glitch.DigitalParameters, error) {
	return glitch.DigitalParameters{Intensity: l.value(Intensity, l.clock())}, nil
}
