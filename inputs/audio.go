package inputs

import (
	"fmt"
	"log"
	"math"
	"sync"

	fft "github.com/mjibson/go-dsp/fft"

	"github.com/richinsley/goglitch/glitch"
)

const (
	fftInputSize      = 2048
	historyBufferSize = fftInputSize * 4

	minDecibels = -100.0
	maxDecibels = -30.0
)

// Bands holds normalized spectrum levels in [0,1].
type Bands struct {
	Bass   float32 // 20-250 Hz
	Mid    float32 // 250-2000 Hz
	Treble float32 // 2-8 kHz
	Level  float32 // 20 Hz-8 kHz
}

var bandEdges = [...][2]float64{
	{20, 250},
	{250, 2000},
	{2000, 8000},
	{20, 8000},
}

// SampleStream produces mono float32 sample chunks. audio.AudioDevice
// satisfies it; keeping the dependency this narrow leaves the package free of
// the capture backends' cgo requirements.
type SampleStream interface {
	Start() (<-chan []float32, error)
	Stop() error
	SampleRate() int
}

// BaseSource supplies the ceilings an AudioSource scales.
type BaseSource interface {
	glitch.AnalogSource
	glitch.DigitalSource
}

// AudioSource scales the values of a base source by the loudness of an audio
// stream: bass drives the vertical jump and horizontal shake, mids the scan
// line jitter, treble the color drift, and overall level the digital
// intensity. The base values act as ceilings.
type AudioSource struct {
	base   BaseSource
	device SampleStream
	gain   float32

	mu            sync.Mutex
	historyBuffer []float32
	bufferPos     int
	written       uint64

	analyzedAt uint64
	bands      Bands
	smoothing  float64
	smoothed   [len(bandEdges)]float64
	window     []float64
}

// NewAudioSource starts the device and begins collecting samples.
func NewAudioSource(base BaseSource, device SampleStream, gain float32) (*AudioSource, error) {
	s := &AudioSource{
		base:          base,
		device:        device,
		gain:          gain,
		historyBuffer: make([]float32, historyBufferSize),
		smoothing:     0.8,
		window:        blackmanWindow(fftInputSize),
	}
	for i := range s.smoothed {
		s.smoothed[i] = minDecibels
	}
	ch, err := device.Start()
	if err != nil {
		return nil, fmt.Errorf("could not start audio device: %w", err)
	}
	go s.listen(ch)
	log.Printf("Audio source listening at %d Hz", device.SampleRate())
	return s, nil
}

func (s *AudioSource) listen(ch <-chan []float32) {
	for samples := range ch {
		s.push(samples)
	}
	log.Printf("Audio source: input closed")
}

func (s *AudioSource) push(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range samples {
		s.historyBuffer[s.bufferPos] = v
		s.bufferPos = (s.bufferPos + 1) % historyBufferSize
	}
	s.written += uint64(len(samples))
}

// Bands analyzes the most recent samples, at most once per new audio chunk.
func (s *AudioSource) Bands() Bands {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.written == s.analyzedAt {
		return s.bands
	}
	s.analyzedAt = s.written

	samples := make([]float64, fftInputSize)
	for i := range samples {
		idx := (s.bufferPos - fftInputSize + i + historyBufferSize) % historyBufferSize
		samples[i] = float64(s.historyBuffer[idx]) * s.window[i]
	}
	db := bandDecibels(samples, s.device.SampleRate())
	levels := [len(bandEdges)]float32{}
	for i := range db {
		s.smoothed[i] = s.smoothing*s.smoothed[i] + (1-s.smoothing)*db[i]
		levels[i] = scaleDecibels(s.smoothed[i])
	}
	s.bands = Bands{Bass: levels[0], Mid: levels[1], Treble: levels[2], Level: levels[3]}
	return s.bands
}

func (s *AudioSource) AnalogParameters() (glitch.AnalogParameters, error) {
	base, err := s.base.AnalogParameters()
	if err != nil {
		return glitch.AnalogParameters{}, fmt.Errorf("audio source base: %w", err)
	}
	b := s.Bands()
	return glitch.AnalogParameters{
		ScanLineJitter:  clamp01(base.ScanLineJitter * s.gain * b.Mid),
		VerticalJump:    clamp01(base.VerticalJump * s.gain * b.Bass),
		HorizontalShake: clamp01(base.HorizontalShake * s.gain * b.Bass),
		ColorDrift:      clamp01(base.ColorDrift * s.gain * b.Treble),
	}, nil
}

func (s *AudioSource) DigitalParameters() (glitch.DigitalParameters, error) {
	base, err := s.base.DigitalParameters()
	if err != nil {
		return glitch.DigitalParameters{}, fmt.Errorf("audio source base: %w", err)
	}
	return glitch.DigitalParameters{Intensity: clamp01(base.Intensity * s.gain * s.Bands().Level)}, nil
}

// Close stops the audio device.
func (s *AudioSource) Close() error {
	return s.device.Stop()
}

// bandDecibels returns the mean magnitude of each band in dBFS.
func bandDecibels(windowed []float64, sampleRate int) [len(bandEdges)]float64 {
	spectrum := fft.FFTReal(windowed)
	n := len(windowed)
	binWidth := float64(sampleRate) / float64(n)

	var out [len(bandEdges)]float64
	for i, edge := range bandEdges {
		lo := int(math.Ceil(edge[0] / binWidth))
		hi := int(math.Floor(edge[1] / binWidth))
		if lo < 1 {
			lo = 1
		}
		if hi > n/2-1 {
			hi = n/2 - 1
		}
		if hi < lo {
			out[i] = minDecibels
			continue
		}
		sum := 0.0
		for k := lo; k <= hi; k++ {
			re, im := real(spectrum[k]), imag(spectrum[k])
			sum += math.Sqrt(re*re+im*im) * (2.0 / float64(n))
		}
		out[i] = 20 * math.Log10(sum/float64(hi-lo+1)+1e-9)
	}
	return out
}

func scaleDecibels(db float64) float32 {
	switch {
	case db < minDecibels:
		return 0
	case db > maxDecibels:
		return 1
	default:
		return float32((db - minDecibels) / (maxDecibels - minDecibels))
	}
}

func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	invSize := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * invSize
		window[i] = 0.42 - 0.5*math.Cos(2*math.Pi*t) + 0.08*math.Cos(4*math.Pi*t)
	}
	return window
}
