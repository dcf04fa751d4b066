package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/goglitch/inputs"
	"github.com/richinsley/goglitch/options"
)

func ptr[T any](v T) *T { return &v }

func testOptions() *options.GlitchOptions {
	return &options.GlitchOptions{
		ScanLineJitter:   ptr(0.2),
		VerticalJump:     ptr(1.5),
		HorizontalShake:  ptr(-0.1),
		ColorDrift:       ptr(0.4),
		Intensity:        ptr(0.3),
		LFO:              ptr(false),
		AudioReactive:    ptr(false),
		AudioInputDevice: ptr(false),
		AudioInputFile:   ptr(""),
		AudioGain:        ptr(1.0),
		FFMPEGPath:       ptr(""),
	}
}

func TestInitialParametersClamp(t *testing.T) {
	analog, digital := initialParameters(testOptions())
	if analog.VerticalJump != 1 || analog.HorizontalShake != 0 {
		t.Errorf("analog = %+v, want out-of-range values clamped", analog)
	}
	if analog.ScanLineJitter != 0.2 || digital.Intensity != 0.3 {
		t.Errorf("in-range values changed: %+v %+v", analog, digital)
	}
}

func TestNewSources(t *testing.T) {
	opts := testOptions()
	s, err := newSources(opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.analog != s.static || s.digital != s.static {
		t.Error("default sources are not the static source")
	}

	opts.LFO = ptr(true)
	s, err = newSources(opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.digital.(*inputs.LFOSource); !ok {
		t.Fatalf("digital source = %T, want *inputs.LFOSource", s.digital)
	}
	if d, _ := s.digital.DigitalParameters(); d.Intensity < 0 || d.Intensity > 0.3 {
		t.Errorf("intensity %v outside [0, 0.3]", d.Intensity)
	}

	opts.LFO = ptr(false)
	opts.AudioReactive = ptr(true)
	s, err = newSources(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.analog.(*inputs.AudioSource); !ok {
		t.Fatalf("analog source = %T, want *inputs.AudioSource", s.analog)
	}
}

func TestTestPattern(t *testing.T) {
	img := testPattern(70, 30)
	if img.Bounds() != image.Rect(0, 0, 70, 30) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(5, 0); got != barColors[0] {
		t.Errorf("first bar = %v, want %v", got, barColors[0])
	}
	if got := img.NRGBAAt(69, 0); got != barColors[len(barColors)-1] {
		t.Errorf("last bar = %v, want %v", got, barColors[len(barColors)-1])
	}
	if got := img.NRGBAAt(69, 29); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("ramp end = %v, want white", got)
	}
}

func TestLoadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tests := []struct {
		name          string
		width, height int
	}{
		{"same size", 8, 4},
		{"scaled", 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := loadInput(path, tt.width, tt.height)
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
				t.Errorf("size = %v", b.Size())
			}
		})
	}

	if _, err := loadInput(filepath.Join(t.TempDir(), "missing.png"), 8, 8); err == nil {
		t.Error("missing file decoded")
	}
	if _, err := loadInput("", 0, 8); err == nil {
		t.Error("zero width accepted")
	}
}
