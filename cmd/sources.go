package main

import (
	"log"

	"github.com/richinsley/goglitch/audio"
	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/inputs"
	"github.com/richinsley/goglitch/options"
)

const audioSampleRate = 44100

// sources are the parameter sources the passes read, built from the flags.
type sources struct {
	static  *inputs.StaticSource
	analog  glitch.AnalogSource
	digital glitch.DigitalSource
	clock   inputs.Clock
	closers []func() error
}

func (s *sources) now() float64 {
	if s.clock == nil {
		return 0
	}
	return s.clock()
}

func initialParameters(opts *options.GlitchOptions) (glitch.AnalogParameters, glitch.DigitalParameters) {
	analog := glitch.AnalogParameters{
		ScanLineJitter:  float32(*opts.ScanLineJitter),
		VerticalJump:    float32(*opts.VerticalJump),
		HorizontalShake: float32(*opts.HorizontalShake),
		ColorDrift:      float32(*opts.ColorDrift),
	}
	digital := glitch.DigitalParameters{Intensity: float32(*opts.Intensity)}
	if err := analog.Validate(); err != nil {
		log.Printf("Warning: %v; clamping", err)
		analog = analog.Clamp()
	}
	if err := digital.Validate(); err != nil {
		log.Printf("Warning: %v; clamping", err)
		digital = digital.Clamp()
	}
	return analog, digital
}

func newAudioDevice(opts *options.GlitchOptions) (audio.AudioDevice, error) {
	switch {
	case *opts.AudioInputFile != "":
		return audio.NewFileInput(*opts.AudioInputFile, *opts.FFMPEGPath, audioSampleRate, true), nil
	case *opts.AudioInputDevice:
		return audio.NewMicrophone(audioSampleRate)
	default:
		log.Println("Warning: -audio without -mic or -audio-file; using silence")
		return audio.NewNullDevice(audioSampleRate), nil
	}
}

func newSources(opts *options.GlitchOptions) (*sources, error) {
	analog, digital := initialParameters(opts)
	s := &sources{static: inputs.NewStaticSource(analog, digital)}
	s.analog, s.digital = s.static, s.static

	switch {
	case *opts.AudioReactive:
		if *opts.LFO {
			log.Println("Warning: -lfo is ignored with -audio")
		}
		dev, err := newAudioDevice(opts)
		if err != nil {
			return nil, err
		}
		src, err := inputs.NewAudioSource(s.static, dev, float32(*opts.AudioGain))
		if err != nil {
			return nil, err
		}
		s.analog, s.digital = src, src
		s.closers = append(s.closers, src.Close)
	case *opts.LFO:
		lfo := inputs.NewLFOSource(s.now, analog, digital)
		s.analog, s.digital = lfo, lfo
	}
	return s, nil
}

func (s *sources) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Printf("Error closing parameter source: %v", err)
		}
	}
}
