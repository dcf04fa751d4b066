package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const fileChunkSamples = 1024

// FileInput decodes an audio file to mono float32 with ffmpeg. With realtime
// set, ffmpeg paces its output to the file's playback rate.
type FileInput struct {
	path       string
	ffmpegPath string
	sampleRate int
	realtime   bool

	reader *io.PipeReader
	writer *io.PipeWriter
	done   chan error
}

func NewFileInput(path, ffmpegPath string, sampleRate int, realtime bool) *FileInput {
	return &FileInput{
		path:       path,
		ffmpegPath: ffmpegPath,
		sampleRate: sampleRate,
		realtime:   realtime,
	}
}

func (f *FileInput) Start() (<-chan []float32, error) {
	if f.reader != nil {
		return nil, fmt.Errorf("file input already started")
	}
	inputArgs := ffmpeg.KwArgs{}
	if f.realtime {
		inputArgs["re"] = ""
	}
	outputArgs := ffmpeg.KwArgs{
		"f":  "f32le",
		"ac": 1,
		"ar": f.sampleRate,
	}

	f.reader, f.writer = io.Pipe()
	cmd := ffmpeg.Input(f.path, inputArgs).
		Output("pipe:", outputArgs).
		WithOutput(f.writer).
		Silent(true)
	if f.ffmpegPath != "" {
		cmd = cmd.SetFfmpegPath(f.ffmpegPath)
	}

	f.done = make(chan error, 1)
	go func() {
		err := cmd.Run()
		f.writer.CloseWithError(err)
		f.done <- err
	}()

	out := make(chan []float32, 16)
	go pump(f.reader, out)
	log.Printf("Audio file input: decoding %s", f.path)
	return out, nil
}

// pump converts a little-endian float stream into chunks until src ends or
// is closed. It owns src's read side; Stop only closes it.
func pump(src io.Reader, out chan<- []float32) {
	defer close(out)
	r := bufio.NewReader(src)
	buf := make([]byte, fileChunkSamples*4)
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			out <- decodeFloat32LE(buf[:n-n%4])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Printf("Audio file input: %v", err)
			}
			return
		}
	}
}

func decodeFloat32LE(b []byte) []float32 {
	samples := make([]float32, len(b)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return samples
}

func (f *FileInput) Stop() error {
	if f.reader == nil {
		return nil
	}
	f.reader.Close()
	f.reader = nil
	return nil
}

func (f *FileInput) SampleRate() int { return f.sampleRate }
