package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/options"
	"github.com/richinsley/goglitch/software"
)

// traceBlend logs every invocation and then copies the invocation's source
// into the target, so a trace shows the computed constants without any
// shading.
func traceBlend(frame *int) software.BlendFunc {
	return func(inv *glitch.Invocation, dst *image.NRGBA) error {
		var b strings.Builder
		fmt.Fprintf(&b, "frame %d %s:", *frame, inv.Effect)
		for _, name := range []string{glitch.UniformScanLineJitter, glitch.UniformVerticalJump, glitch.UniformColorDrift} {
			if v, ok := inv.Vec2s[name]; ok {
				fmt.Fprintf(&b, " %s=(%.4f, %.4f)", name, v[0], v[1])
			}
		}
		for _, name := range []string{glitch.UniformHorizontalShake, glitch.UniformIntensity} {
			if v, ok := inv.Floats[name]; ok {
				fmt.Fprintf(&b, " %s=%.4f", name, v)
			}
		}
		if trash, ok := inv.Textures[glitch.UniformTrashTex]; ok {
			fmt.Fprintf(&b, " trash=%p", trash)
		}
		log.Println(b.String())

		src, ok := inv.Source.(*software.Texture)
		if !ok {
			return fmt.Errorf("trace blend: foreign source texture %T", inv.Source)
		}
		copy(dst.Pix, src.Image().Pix)
		return nil
	}
}

// runTrace runs both passes on the CPU device and logs what each blend
// would receive. A .png output file receives the last frame.
func runTrace(opts *options.GlitchOptions, img image.Image, srcs *sources) error {
	frame := 0
	dev := software.NewDevice(software.WithBlend(traceBlend(&frame)))
	input := software.NewTextureFromImage(img)
	target, err := dev.NewTexture(input.Descriptor())
	if err != nil {
		return err
	}
	defer dev.DeleteTexture(target)

	var random glitch.RandomStream
	if *opts.Seed != 0 {
		random = glitch.NewSeededStream(*opts.Seed)
	}
	analog := glitch.NewAnalogPass(dev, srcs.analog, passOptions(opts))
	defer analog.Close()
	digital := glitch.NewDigitalPass(dev, srcs.digital, random, passOptions(opts))
	defer digital.Close()

	total := int(*opts.Duration * float64(*opts.FPS))
	dt := 1.0 / float64(*opts.FPS)
	var elapsed float64
	srcs.clock = func() float64 { return elapsed }

	for frame = 0; frame < total; frame++ {
		elapsed = float64(frame) * dt
		if err := dev.Copy(target, input); err != nil {
			return err
		}
		fc := software.NewFrame(target.(*software.Texture), dt, elapsed)
		_ = analog.Execute(fc)
		_ = digital.Execute(fc)
	}

	a, d := analog.Stats(), digital.Stats()
	log.Printf("Traced %d frames: analog %+v, digital %+v, %d textures live", total, a, d, dev.Live())

	if strings.HasSuffix(strings.ToLower(*opts.OutputFile), ".png") {
		f, err := os.Create(*opts.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *opts.OutputFile, err)
		}
		defer f.Close()
		if err := png.Encode(f, target.(*software.Texture).Image()); err != nil {
			return fmt.Errorf("failed to write %s: %w", *opts.OutputFile, err)
		}
		log.Printf("Wrote last frame to %s", *opts.OutputFile)
	}
	return nil
}
