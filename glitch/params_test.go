package glitch

import (
	"errors"
	"math"
	"testing"
)

func TestAnalogParametersActive(t *testing.T) {
	tests := []struct {
		name   string
		params AnalogParameters
		want   bool
	}{
		{"zero", AnalogParameters{}, false},
		{"negative", AnalogParameters{-1, -0.5, -0.1, -2}, false},
		{"scanline", AnalogParameters{ScanLineJitter: 0.1}, true},
		{"jump", AnalogParameters{VerticalJump: 0.1}, true},
		{"shake", AnalogParameters{HorizontalShake: 0.1}, true},
		{"drift", AnalogParameters{ColorDrift: 0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDigitalParametersActive(t *testing.T) {
	for _, v := range []float32{0, -0.5} {
		if (DigitalParameters{Intensity: v}).Active() {
			t.Errorf("intensity %v should be inactive", v)
		}
	}
	if !(DigitalParameters{Intensity: 0.01}).Active() {
		t.Error("intensity 0.01 should be active")
	}
}

func TestClamp01(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
		{nan, 0},
		{float32(math.Inf(1)), 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParametersClampAndValidate(t *testing.T) {
	a := AnalogParameters{ScanLineJitter: 1.5, VerticalJump: -0.5, HorizontalShake: 0.3, ColorDrift: 2}
	if err := a.Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Validate() = %v, want ErrInvalidParameter", err)
	}
	c := a.Clamp()
	want := AnalogParameters{ScanLineJitter: 1, VerticalJump: 0, HorizontalShake: 0.3, ColorDrift: 1}
	if c != want {
		t.Errorf("Clamp() = %+v, want %+v", c, want)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() after clamp = %v", err)
	}

	d := DigitalParameters{Intensity: 4}
	if err := d.Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Validate() = %v, want ErrInvalidParameter", err)
	}
	if got := d.Clamp().Intensity; got != 1 {
		t.Errorf("Clamp().Intensity = %v, want 1", got)
	}
}
