package glitch

import (
	"fmt"
	"log"
)

// Params is a parameter set a pass can gate on.
type Params[P any] interface {
	// Active is the activity predicate.
	Active() bool
	// Clamp returns the set with every control forced into [0,1].
	Clamp() P
}

// Effect is the per-frame algorithm a Pass drives.
type Effect[P any] interface {
	Name() string
	// Render acquires its buffers through f and issues one blend.
	Render(f *Frame, params P) error
	// Close releases resources the effect allocated on dev.
	Close(dev Device)
}

// Preparer is implemented by effects that need to run before any buffer is
// acquired for the frame.
type Preparer[P any] interface {
	Prepare(params P)
}

// Options configures a pass.
type Options struct {
	// IncludeInspectionViews lets the pass run on editor and debug views.
	IncludeInspectionViews bool
	// MaxIdleFrames is how many processed frames an unused pool texture
	// survives before it is deleted. Negative disables trimming.
	MaxIdleFrames int
}

// DefaultOptions skips inspection views and trims after 60 frames.
func DefaultOptions() Options {
	return Options{MaxIdleFrames: 60}
}

// Stats counts what a pass did with the frames it was given.
type Stats struct {
	Processed uint64
	Skipped   uint64
	Failed    uint64
}

// Frame gives an effect access to the current frame while it renders.
type Frame struct {
	ctx    FrameContext
	device Device
	pool   *BufferPool
	desc   Descriptor
}

// Acquire returns the frame buffer for name, sized like the source target.
func (f *Frame) Acquire(name string) (Texture, error) {
	return f.pool.Acquire(name, f.desc)
}

func (f *Frame) Context() FrameContext { return f.ctx }
func (f *Frame) Device() Device        { return f.device }
func (f *Frame) Source() Texture       { return f.ctx.Source() }

// Pass runs one effect once per frame. It is not safe for concurrent use;
// call Execute from the thread that submits rendering work.
type Pass[P Params[P]] struct {
	effect Effect[P]
	source func() (P, error)
	device Device
	pool   *BufferPool
	opts   Options
	err    error

	stats      Stats
	failStreak uint64
	readFailed bool
}

func newPass[P Params[P]](device Device, effect Effect[P], source func() (P, error), opts Options) *Pass[P] {
	p := &Pass[P]{
		effect: effect,
		source: source,
		device: device,
		opts:   opts,
	}
	switch {
	case device == nil:
		p.err = fmt.Errorf("%w: %s: no device", ErrMisconfigured, effect.Name())
	case source == nil:
		p.err = fmt.Errorf("%w: %s: no parameter source", ErrMisconfigured, effect.Name())
	default:
		p.pool = NewBufferPool(device)
	}
	if p.err != nil {
		log.Printf("%s pass disabled: %v", effect.Name(), p.err)
	}
	return p
}

// Err reports why the pass can never run, or nil.
func (p *Pass[P]) Err() error { return p.err }

// Effect returns the effect driven by the pass.
func (p *Pass[P]) Effect() Effect[P] { return p.effect }

// Pool returns the pass's buffer pool, nil for a misconfigured pass.
func (p *Pass[P]) Pool() *BufferPool { return p.pool }

func (p *Pass[P]) Stats() Stats { return p.stats }

// gated reports whether the host conditions allow the pass to run.
func (p *Pass[P]) gated(fc FrameContext) bool {
	if !fc.PostProcessEnabled() {
		return false
	}
	if fc.InspectionView() && !p.opts.IncludeInspectionViews {
		return false
	}
	return true
}

// Execute applies the effect to the frame. A frame the pass should not touch
// is skipped without side effects. A frame that fails part way is skipped as
// a whole: its buffers are released and the effect's timing state is left
// as it was. The returned error is informational; the host keeps rendering.
func (p *Pass[P]) Execute(fc FrameContext) error {
	if p.err != nil || fc == nil || !p.gated(fc) {
		p.stats.Skipped++
		return nil
	}

	params, err := p.source()
	if err != nil {
		if !p.readFailed {
			log.Printf("%s pass: parameter read failed, treating as inactive: %v", p.effect.Name(), err)
			p.readFailed = true
		}
		p.stats.Skipped++
		return nil
	}
	p.readFailed = false

	params = params.Clamp()
	if !params.Active() {
		p.stats.Skipped++
		return nil
	}

	if prep, ok := p.effect.(Preparer[P]); ok {
		prep.Prepare(params)
	}

	if err := p.render(fc, params); err != nil {
		p.stats.Failed++
		p.failStreak++
		if p.failStreak == 1 {
			log.Printf("%s pass: frame skipped: %v", p.effect.Name(), err)
		}
		return err
	}

	if p.failStreak > 0 {
		log.Printf("%s pass: recovered after %d failed frames", p.effect.Name(), p.failStreak)
		p.failStreak = 0
	}
	p.stats.Processed++
	return nil
}

func (p *Pass[P]) render(fc FrameContext, params P) error {
	desc := fc.Descriptor()
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("%s: invalid target size %dx%d", p.effect.Name(), desc.Width, desc.Height)
	}
	if fc.Source() == nil {
		return fmt.Errorf("%s: frame has no source target", p.effect.Name())
	}

	defer p.pool.ReleaseAll()
	f := &Frame{ctx: fc, device: p.device, pool: p.pool, desc: desc}
	if err := p.effect.Render(f, params); err != nil {
		return fmt.Errorf("%s: %w", p.effect.Name(), err)
	}

	p.pool.EndFrame()
	p.pool.Trim(p.opts.MaxIdleFrames)
	return nil
}

// Close releases every device resource held by the pass.
func (p *Pass[P]) Close() {
	if p.device == nil {
		return
	}
	p.effect.Close(p.device)
	if p.pool != nil {
		p.pool.Destroy()
	}
}
