package glitch

import "fmt"

// DigitalEffectName identifies digital blend invocations.
const DigitalEffectName = "digital"

// Digital is the block noise and stale frame effect.
type Digital struct {
	random       RandomStream
	noise        *NoiseGenerator
	scheduler    *CaptureScheduler
	frameCounter uint64
}

// NewDigital creates the effect around one random stream shared by the noise
// generator and the capture scheduler. A nil stream is seeded from the clock.
func NewDigital(random RandomStream) *Digital {
	if random == nil {
		random = NewRandomStream()
	}
	return &Digital{
		random:    random,
		noise:     NewNoiseGenerator(random),
		scheduler: NewCaptureScheduler(random),
	}
}

func (d *Digital) Name() string { return DigitalEffectName }

// FrameCounter is the number of frames the effect has processed.
func (d *Digital) FrameCounter() uint64 { return d.frameCounter }

// Noise returns the effect's noise generator.
func (d *Digital) Noise() *NoiseGenerator { return d.noise }

// Prepare refreshes the noise image on a random cadence that quickens with
// intensity.
func (d *Digital) Prepare(p DigitalParameters) {
	if d.noise.ShouldRegenerate(p.Intensity) {
		d.noise.Regenerate()
	}
}

func (d *Digital) Render(f *Frame, p DigitalParameters) error {
	dev := f.Device()
	src := f.Source()

	main, err := f.Acquire(MainFrame)
	if err != nil {
		return err
	}
	trash1, err := f.Acquire(TrashFrame1)
	if err != nil {
		return err
	}
	trash2, err := f.Acquire(TrashFrame2)
	if err != nil {
		return err
	}

	if err := dev.Copy(main, src); err != nil {
		return fmt.Errorf("failed to capture main frame: %w", err)
	}
	plan := d.scheduler.Plan(d.frameCounter)
	if plan.RefreshTrash1 {
		if err := dev.Copy(trash1, src); err != nil {
			return fmt.Errorf("failed to capture %s: %w", TrashFrame1, err)
		}
	}
	if plan.RefreshTrash2 {
		if err := dev.Copy(trash2, src); err != nil {
			return fmt.Errorf("failed to capture %s: %w", TrashFrame2, err)
		}
	}
	trash := trash2
	if plan.Active == Trash1 {
		trash = trash1
	}

	noise, err := d.noise.Texture(dev)
	if err != nil {
		return err
	}

	inv := NewInvocation(DigitalEffectName, main, src)
	inv.Textures[UniformMainTex] = main
	inv.Textures[UniformNoiseTex] = noise
	inv.Textures[UniformTrashTex] = trash
	inv.Floats[UniformIntensity] = p.Intensity
	if err := dev.Blend(inv); err != nil {
		return fmt.Errorf("blend failed: %w", err)
	}

	d.frameCounter++
	return nil
}

func (d *Digital) Close(dev Device) {
	d.noise.Destroy(dev)
}

// NewDigitalPass builds the digital pipeline. A nil random stream is seeded
// from the clock; a nil device or source yields a pass that never runs.
func NewDigitalPass(device Device, source DigitalSource, random RandomStream, opts Options) *Pass[DigitalParameters] {
	var read func() (DigitalParameters, error)
	if source != nil {
		read = source.DigitalParameters
	}
	return newPass[DigitalParameters](device, NewDigital(random), read, opts)
}
