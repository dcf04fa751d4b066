package renderer

import "github.com/richinsley/goglitch/glitch"

// frameContext is what the passes see of one rendered frame.
type frameContext struct {
	target     *Texture
	delta      float64
	elapsed    float64
	postFX     bool
	inspection bool
}

func (f *frameContext) Source() glitch.Texture {
	if f.target == nil {
		return nil
	}
	return f.target
}

func (f *frameContext) Descriptor() glitch.Descriptor {
	if f.target == nil {
		return glitch.Descriptor{}
	}
	return f.target.desc
}

func (f *frameContext) DeltaTime() float64       { return f.delta }
func (f *frameContext) Time() float64            { return f.elapsed }
func (f *frameContext) PostProcessEnabled() bool { return f.postFX }
func (f *frameContext) InspectionView() bool     { return f.inspection }
