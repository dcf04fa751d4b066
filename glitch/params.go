package glitch

import (
	"fmt"
	"math"
)

// AnalogParameters are the normalized controls of the analog effect.
type AnalogParameters struct {
	ScanLineJitter  float32
	VerticalJump    float32
	HorizontalShake float32
	ColorDrift      float32
}

// Active reports whether any control is above zero.
func (p AnalogParameters) Active() bool {
	return p.ScanLineJitter > 0 ||
		p.VerticalJump > 0 ||
		p.HorizontalShake > 0 ||
		p.ColorDrift > 0
}

// Clamp returns p with every control clamped to [0,1].
func (p AnalogParameters) Clamp() AnalogParameters {
	return AnalogParameters{
		ScanLineJitter:  clamp01(p.ScanLineJitter),
		VerticalJump:    clamp01(p.VerticalJump),
		HorizontalShake: clamp01(p.HorizontalShake),
		ColorDrift:      clamp01(p.ColorDrift),
	}
}

// Validate reports the first control outside [0,1].
func (p AnalogParameters) Validate() error {
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"scanLineJitter", p.ScanLineJitter},
		{"verticalJump", p.VerticalJump},
		{"horizontalShake", p.HorizontalShake},
		{"colorDrift", p.ColorDrift},
	} {
		if !inUnit(f.v) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, f.name, f.v)
		}
	}
	return nil
}

// DigitalParameters are the normalized controls of the digital effect.
type DigitalParameters struct {
	Intensity float32
}

func (p DigitalParameters) Active() bool { return p.Intensity > 0 }

func (p DigitalParameters) Clamp() DigitalParameters {
	return DigitalParameters{Intensity: clamp01(p.Intensity)}
}

func (p DigitalParameters) Validate() error {
	if !inUnit(p.Intensity) {
		return fmt.Errorf("%w: intensity = %v", ErrInvalidParameter, p.Intensity)
	}
	return nil
}

// AnalogSource supplies the analog parameters for the current frame.
type AnalogSource interface {
	AnalogParameters() (AnalogParameters, error)
}

// DigitalSource supplies the digital parameters for the current frame.
type DigitalSource interface {
	DigitalParameters() (DigitalParameters, error)
}

// clamp01 clamps x to [0,1]. NaN maps to 0.
func clamp01(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func inUnit(x float32) bool {
	return x >= 0 && x <= 1
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func cube(x float32) float32 {
	return float32(math.Pow(float64(x), 3))
}
