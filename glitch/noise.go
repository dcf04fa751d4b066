package glitch

import (
	"fmt"
	"image"
)

const (
	NoiseWidth  = 64
	NoiseHeight = 32

	// noiseBandThreshold is the sample above which a new band color starts.
	noiseBandThreshold = 0.89
)

// NoiseGenerator keeps the banded noise image sampled by the digital effect.
type NoiseGenerator struct {
	random  RandomStream
	image   *image.NRGBA
	texture Texture
	dirty   bool
}

// NewNoiseGenerator creates the noise image and fills it once.
func NewNoiseGenerator(random RandomStream) *NoiseGenerator {
	g := &NoiseGenerator{
		random: random,
		image:  image.NewNRGBA(image.Rect(0, 0, NoiseWidth, NoiseHeight)),
	}
	g.Regenerate()
	return g
}

// ShouldRegenerate draws one sample and reports whether it beats the
// intensity-dependent threshold, lerp(0.9, 0.5, intensity).
func (g *NoiseGenerator) ShouldRegenerate(intensity float32) bool {
	return g.random.Float32() > lerp(0.9, 0.5, intensity)
}

// Regenerate refills the whole image. Pixels are visited row by row; each
// pixel draws one sample and switches to a fresh random color when the
// sample exceeds 0.89, which leaves runs of equal color along the rows.
func (g *NoiseGenerator) Regenerate() {
	c := randomColor(g.random)
	for y := 0; y < NoiseHeight; y++ {
		for x := 0; x < NoiseWidth; x++ {
			if g.random.Float32() > noiseBandThreshold {
				c = randomColor(g.random)
			}
			g.image.SetNRGBA(x, y, c)
		}
	}
	g.dirty = true
}

// Image returns the CPU-side noise image.
func (g *NoiseGenerator) Image() *image.NRGBA { return g.image }

// Texture uploads the image if it changed since the last upload and returns
// the device texture, allocating it on first use.
func (g *NoiseGenerator) Texture(dev Device) (Texture, error) {
	if g.texture == nil {
		tex, err := dev.NewTexture(Descriptor{Width: NoiseWidth, Height: NoiseHeight, Format: FormatRGBA8})
		if err != nil {
			return nil, fmt.Errorf("%w: noise texture: %v", ErrResourceExhausted, err)
		}
		g.texture = tex
		g.dirty = true
	}
	if g.dirty {
		if err := dev.WritePixels(g.texture, g.image); err != nil {
			return nil, fmt.Errorf("failed to upload noise texture: %w", err)
		}
		g.dirty = false
	}
	return g.texture, nil
}

// Destroy releases the device texture.
func (g *NoiseGenerator) Destroy(dev Device) {
	if g.texture != nil {
		dev.DeleteTexture(g.texture)
		g.texture = nil
	}
}
