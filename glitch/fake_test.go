package glitch

import (
	"errors"
	"image"
)

type fakeTexture struct {
	id   int
	desc Descriptor
}

func (t *fakeTexture) Size() (int, int) { return t.desc.Width, t.desc.Height }

type copyOp struct {
	dst, src Texture
}

// fakeDevice records every call made against it.
type fakeDevice struct {
	nextID    int
	allocated []*fakeTexture
	deleted   []Texture
	copies    []copyOp
	writes    int
	blends    []*Invocation

	allocLimit int // 0 means unlimited
	blendErr   error
}

var errOutOfMemory = errors.New("out of video memory")

func (d *fakeDevice) NewTexture(desc Descriptor) (Texture, error) {
	if d.allocLimit > 0 && len(d.allocated)-len(d.deleted) >= d.allocLimit {
		return nil, errOutOfMemory
	}
	d.nextID++
	t := &fakeTexture{id: d.nextID, desc: desc}
	d.allocated = append(d.allocated, t)
	return t, nil
}

func (d *fakeDevice) DeleteTexture(tex Texture) { d.deleted = append(d.deleted, tex) }

func (d *fakeDevice) Copy(dst, src Texture) error {
	d.copies = append(d.copies, copyOp{dst: dst, src: src})
	return nil
}

func (d *fakeDevice) WritePixels(Texture, *image.NRGBA) error {
	d.writes++
	return nil
}

func (d *fakeDevice) Blend(inv *Invocation) error {
	if d.blendErr != nil {
		return d.blendErr
	}
	d.blends = append(d.blends, inv)
	return nil
}

func (d *fakeDevice) copiesInto(dst Texture) int {
	n := 0
	for _, c := range d.copies {
		if c.dst == dst {
			n++
		}
	}
	return n
}

type fakeFrame struct {
	source      Texture
	desc        Descriptor
	dt, time    float64
	postProcess bool
	inspection  bool
}

func newFakeFrame(width, height int) *fakeFrame {
	desc := Descriptor{Width: width, Height: height, Format: FormatRGBA8, DepthBits: 24}
	return &fakeFrame{
		source:      &fakeTexture{id: -1, desc: desc},
		desc:        desc,
		dt:          1.0 / 60,
		postProcess: true,
	}
}

func (f *fakeFrame) Source() Texture          { return f.source }
func (f *fakeFrame) Descriptor() Descriptor   { return f.desc }
func (f *fakeFrame) DeltaTime() float64       { return f.dt }
func (f *fakeFrame) Time() float64            { return f.time }
func (f *fakeFrame) PostProcessEnabled() bool { return f.postProcess }
func (f *fakeFrame) InspectionView() bool     { return f.inspection }

// scriptedStream replays a fixed sequence of samples, cycling when exhausted.
type scriptedStream struct {
	values []float32
	pos    int
	draws  int
}

func (s *scriptedStream) Float32() float32 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	s.draws++
	return v
}

type constStream float32

func (c constStream) Float32() float32 { return float32(c) }

type analogValues struct {
	params AnalogParameters
	err    error
	reads  int
}

func (a *analogValues) AnalogParameters() (AnalogParameters, error) {
	a.reads++
	return a.params, a.err
}

type digitalValues struct {
	params DigitalParameters
	err    error
}

func (d *digitalValues) DigitalParameters() (DigitalParameters, error) {
	return d.params, d.err
}
