package glitch

import (
	"image/color"
	"math/rand/v2"
	"time"
)

// RandomStream yields uniform samples in [0,1).
type RandomStream interface {
	Float32() float32
}

// NewRandomStream returns a PCG stream seeded from the wall clock.
func NewRandomStream() RandomStream {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeededStream returns a reproducible PCG stream.
func NewSeededStream(seed uint64) RandomStream {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomColor draws four samples in R, G, B, A order.
func randomColor(rs RandomStream) color.NRGBA {
	r := rs.Float32()
	g := rs.Float32()
	b := rs.Float32()
	a := rs.Float32()
	return color.NRGBA{R: unorm8(r), G: unorm8(g), B: unorm8(b), A: unorm8(a)}
}

func unorm8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
