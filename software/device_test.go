package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/richinsley/goglitch/glitch"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func fill(t *Texture, c color.NRGBA) {
	copy(t.img.Pix, solid(t.desc.Width, t.desc.Height, c).Pix)
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestCopySameSize(t *testing.T) {
	d := NewDevice()
	src := NewTextureFromImage(solid(4, 4, red))
	dst, err := d.NewTexture(src.Descriptor())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	if got := dst.(*Texture).Image().NRGBAAt(3, 3); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestCopyScales(t *testing.T) {
	d := NewDevice()
	src := NewTextureFromImage(solid(8, 8, blue))
	dst, _ := d.NewTexture(glitch.Descriptor{Width: 3, Height: 2})
	if err := d.Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	if got := dst.(*Texture).Image().NRGBAAt(1, 1); got != blue {
		t.Errorf("pixel = %v, want %v", got, blue)
	}
}

func TestMemoryLimit(t *testing.T) {
	d := NewDevice(WithMemoryLimit(2 * 16 * 16 * 4))
	desc := glitch.Descriptor{Width: 16, Height: 16}
	a, err := d.NewTexture(desc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.NewTexture(desc); err != nil {
		t.Fatal(err)
	}
	if _, err := d.NewTexture(desc); err == nil {
		t.Fatal("allocation beyond the limit succeeded")
	}
	d.DeleteTexture(a)
	d.DeleteTexture(a)
	if d.Live() != 1 || d.BytesInUse() != 16*16*4 {
		t.Errorf("Live=%d BytesInUse=%d", d.Live(), d.BytesInUse())
	}
	if _, err := d.NewTexture(desc); err != nil {
		t.Errorf("allocation after delete: %v", err)
	}
	if err := d.Copy(a, a); err == nil {
		t.Error("copy into a deleted texture succeeded")
	}
}

func TestWritePixelsSizeMismatch(t *testing.T) {
	d := NewDevice()
	tex, _ := d.NewTexture(glitch.Descriptor{Width: 4, Height: 4})
	if err := d.WritePixels(tex, solid(2, 2, red)); err == nil {
		t.Error("WritePixels accepted a mismatched image")
	}
	if err := d.WritePixels(tex, solid(4, 4, red)); err != nil {
		t.Error(err)
	}
}

func TestBlendDefaultsToCopy(t *testing.T) {
	d := NewDevice()
	target := NewTextureFromImage(solid(4, 4, red))
	src := NewTextureFromImage(solid(4, 4, blue))
	if err := d.Blend(glitch.NewInvocation("test", src, target)); err != nil {
		t.Fatal(err)
	}
	if got := target.Image().NRGBAAt(0, 0); got != blue {
		t.Errorf("pixel = %v, want %v", got, blue)
	}
	if d.Blends() != 1 || d.LastInvocation().Effect != "test" {
		t.Errorf("blend not recorded")
	}
}

// TestDigitalTrashStaysStale runs the digital pass end to end and checks that
// the trash frame shown to the blend still holds the image captured on the
// first frame until its next refresh.
func TestDigitalTrashStaysStale(t *testing.T) {
	var trashColors []color.NRGBA
	d := NewDevice(WithBlend(func(inv *glitch.Invocation, dst *image.NRGBA) error {
		trash := inv.Textures[glitch.UniformTrashTex].(*Texture)
		trashColors = append(trashColors, trash.Image().NRGBAAt(0, 0))
		return nil
	}))
	source := &constDigital{intensity: 1}
	pass := glitch.NewDigitalPass(d, source, glitch.NewSeededStream(5), glitch.DefaultOptions())
	defer pass.Close()

	target := NewTextureFromImage(solid(8, 8, red))
	for i := 0; i < 20; i++ {
		if i == 1 {
			fill(target, blue)
		}
		if err := pass.Execute(NewFrame(target, 1.0/60, float64(i)/60)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if len(trashColors) != 20 {
		t.Fatalf("blends = %d, want 20", len(trashColors))
	}
	if trashColors[0] != red {
		t.Errorf("frame 0 trash = %v, want red", trashColors[0])
	}
	// Trash 2 is not refreshed again before frame 73, so whenever it is
	// selected it must still be red. Trash 1 turns blue from frame 13.
	for i := 1; i < 13; i++ {
		if trashColors[i] != red {
			t.Errorf("frame %d trash = %v, want stale red", i, trashColors[i])
		}
	}
	for i := 13; i < 20; i++ {
		if c := trashColors[i]; c != red && c != blue {
			t.Errorf("frame %d trash = %v, want red or blue", i, c)
		}
	}
}

func TestPassOutOfMemory(t *testing.T) {
	d := NewDevice(WithMemoryLimit(8 * 8 * 4 * 2))
	pass := glitch.NewDigitalPass(d, &constDigital{intensity: 1}, glitch.NewSeededStream(1), glitch.DefaultOptions())
	target := NewTextureFromImage(solid(8, 8, red))
	err := pass.Execute(NewFrame(target, 1.0/60, 0))
	if !errors.Is(err, glitch.ErrResourceExhausted) {
		t.Fatalf("err = %v, want ErrResourceExhausted", err)
	}
	if pass.Pool().Live() != 0 {
		t.Errorf("%d buffers held after failure", pass.Pool().Live())
	}
	pass.Close()
	if d.Live() != 0 {
		t.Errorf("%d textures live after Close", d.Live())
	}
}

func TestFrameNilTarget(t *testing.T) {
	f := &Frame{PostProcess: true}
	if f.Source() != nil {
		t.Error("Source() of an empty frame is not nil")
	}
	if f.Descriptor().Width != 0 {
		t.Error("Descriptor() of an empty frame is not zero")
	}
}

type constDigital struct{ intensity float32 }

func (c *constDigital) DigitalParameters() (glitch.DigitalParameters, error) {
	return glitch.DigitalParameters{Intensity: c.intensity}, nil
}
