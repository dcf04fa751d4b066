package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Microphone captures the default input device through portaudio.
type Microphone struct {
	sampleRate int
	stream     *portaudio.Stream
	audioChan  chan []float32
	mu         sync.Mutex
	streaming  bool
	dropped    int
}

func NewMicrophone(sampleRate int) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Microphone{sampleRate: sampleRate}, nil
}

// callback copies the buffer portaudio hands us, which it reuses, and never
// blocks the audio thread.
func (m *Microphone) callback(in []float32) {
	chunk := make([]float32, len(in))
	copy(chunk, in)
	select {
	case m.audioChan <- chunk:
	default:
		m.dropped++
		if m.dropped%100 == 1 {
			log.Printf("Microphone: consumer is behind, dropped %d chunks", m.dropped)
		}
	}
}

func (m *Microphone) Start() (<-chan []float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streaming {
		return nil, fmt.Errorf("microphone already started")
	}

	m.audioChan = make(chan []float32, 16)
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		close(m.audioChan)
		return nil, err
	}
	if host.DefaultInputDevice == nil {
		close(m.audioChan)
		return nil, fmt.Errorf("no default input device")
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(m.sampleRate)

	stream, err := portaudio.OpenStream(params, m.callback)
	if err != nil {
		close(m.audioChan)
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		close(m.audioChan)
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	m.stream = stream
	m.streaming = true
	log.Printf("Microphone: capturing %s at %d Hz", host.DefaultInputDevice.Name, m.sampleRate)
	return m.audioChan, nil
}

func (m *Microphone) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.streaming {
		return nil
	}
	m.streaming = false
	err := m.stream.Close()
	close(m.audioChan)
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (m *Microphone) SampleRate() int { return m.sampleRate }
