package software

import "github.com/richinsley/goglitch/glitch"

// Frame is a glitch.FrameContext over a CPU target.
type Frame struct {
	Target      *Texture
	Delta       float64
	Elapsed     float64
	PostProcess bool
	Inspection  bool
}

// NewFrame returns a frame for final output.
func NewFrame(target *Texture, delta, elapsed float64) *Frame {
	return &Frame{Target: target, Delta: delta, Elapsed: elapsed, PostProcess: true}
}

func (f *Frame) Source() glitch.Texture {
	if f.Target == nil {
		return nil
	}
	return f.Target
}

func (f *Frame) Descriptor() glitch.Descriptor {
	if f.Target == nil {
		return glitch.Descriptor{}
	}
	return f.Target.desc
}

func (f *Frame) DeltaTime() float64       { return f.Delta }
func (f *Frame) Time() float64            { return f.Elapsed }
func (f *Frame) PostProcessEnabled() bool { return f.PostProcess }
func (f *Frame) InspectionView() bool     { return f.Inspection }
