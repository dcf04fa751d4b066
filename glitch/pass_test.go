package glitch

import (
	"errors"
	"testing"
)

func TestPassGating(t *testing.T) {
	tests := []struct {
		name        string
		postProcess bool
		inspection  bool
		include     bool
		wantBlend   bool
	}{
		{"final output", true, false, false, true},
		{"post processing disabled", false, false, false, false},
		{"inspection view", true, true, false, false},
		{"inspection view included", true, true, true, true},
		{"disabled beats inclusion", false, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{}
			opts := DefaultOptions()
			opts.IncludeInspectionViews = tt.include
			values := &analogValues{params: AnalogParameters{ColorDrift: 1}}
			pass := NewAnalogPass(dev, values, opts)

			frame := newFakeFrame(8, 8)
			frame.postProcess = tt.postProcess
			frame.inspection = tt.inspection
			if err := pass.Execute(frame); err != nil {
				t.Fatal(err)
			}
			if got := len(dev.blends) == 1; got != tt.wantBlend {
				t.Errorf("blended = %v, want %v", got, tt.wantBlend)
			}
			if !tt.wantBlend && (len(dev.allocated) != 0 || values.reads != 0) {
				t.Errorf("gated pass acquired %d buffers and read parameters %d times", len(dev.allocated), values.reads)
			}
		})
	}
}

func TestPassParameterReadFailure(t *testing.T) {
	dev := &fakeDevice{}
	values := &analogValues{params: AnalogParameters{ScanLineJitter: 1}, err: errors.New("source gone")}
	pass := NewAnalogPass(dev, values, DefaultOptions())
	if err := pass.Execute(newFakeFrame(8, 8)); err != nil {
		t.Fatalf("read failure surfaced as %v", err)
	}
	if len(dev.blends) != 0 || len(dev.allocated) != 0 {
		t.Error("pass ran with a failing parameter source")
	}

	values.err = nil
	pass.Execute(newFakeFrame(8, 8))
	if len(dev.blends) != 1 {
		t.Error("pass did not resume once the source recovered")
	}
}

func TestPassClampsParameters(t *testing.T) {
	dev := &fakeDevice{}
	pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 7}}, constStream(0.1), DefaultOptions())
	pass.Execute(newFakeFrame(8, 8))
	if got := dev.blends[0].Floats[UniformIntensity]; got != 1 {
		t.Errorf("intensity = %v, want clamped to 1", got)
	}
}

func TestPassMisconfigured(t *testing.T) {
	dev := &fakeDevice{}
	tests := []struct {
		name string
		pass interface {
			Err() error
			Execute(FrameContext) error
		}
	}{
		{"analog without source", NewAnalogPass(dev, nil, DefaultOptions())},
		{"analog without device", NewAnalogPass(nil, &analogValues{params: AnalogParameters{ColorDrift: 1}}, DefaultOptions())},
		{"digital without source", NewDigitalPass(dev, nil, nil, DefaultOptions())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.pass.Err(), ErrMisconfigured) {
				t.Fatalf("Err() = %v, want ErrMisconfigured", tt.pass.Err())
			}
			if err := tt.pass.Execute(newFakeFrame(8, 8)); err != nil {
				t.Errorf("Execute() = %v, want nil", err)
			}
		})
	}
	if len(dev.blends) != 0 || len(dev.allocated) != 0 {
		t.Error("misconfigured pass touched the device")
	}
}

func TestPassInvalidTarget(t *testing.T) {
	dev := &fakeDevice{}
	pass := NewAnalogPass(dev, &analogValues{params: AnalogParameters{ColorDrift: 1}}, DefaultOptions())
	frame := newFakeFrame(0, 0)
	if err := pass.Execute(frame); err == nil {
		t.Error("Execute accepted a zero sized target")
	}
	if len(dev.allocated) != 0 {
		t.Error("buffers allocated for a zero sized target")
	}
}

func TestPassTrimsAfterResize(t *testing.T) {
	dev := &fakeDevice{}
	opts := DefaultOptions()
	opts.MaxIdleFrames = 2
	pass := NewAnalogPass(dev, &analogValues{params: AnalogParameters{ColorDrift: 1}}, opts)

	pass.Execute(newFakeFrame(8, 8))
	for i := 0; i < 5; i++ {
		pass.Execute(newFakeFrame(16, 16))
	}
	if got := pass.Pool().Allocated(); got != 1 {
		t.Errorf("pool owns %d textures after resize, want 1", got)
	}
	if len(dev.deleted) != 1 {
		t.Errorf("deleted %d textures, want 1", len(dev.deleted))
	}
}
