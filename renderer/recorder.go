package renderer

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// videoFrame is one frame of tightly packed RGBA8 rows, bottom row first.
type videoFrame struct {
	Pixels []byte
	PTS    int64
}

// RecorderConfig describes the video a Recorder writes.
type RecorderConfig struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	Codec      string // h264 or hevc
	FFMPEGPath string
}

const recorderQueue = 3

// Recorder pipes raw frames into an ffmpeg process. WriteFrame is the
// producer; an encoder goroutine consumes.
type Recorder struct {
	cfg    RecorderConfig
	frames chan *videoFrame
	done   chan error
}

// recorderArgs builds the ffmpeg arguments for cfg on goos.
func recorderArgs(cfg RecorderConfig, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       cfg.FPS,
	}

	// GL reads rows bottom-up.
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}

	switch goos {
	case "darwin":
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}

	if cfg.Codec == "hevc" && strings.HasSuffix(cfg.OutputFile, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// NewRecorder starts ffmpeg and the encoder goroutine.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.OutputFile == "" {
		return nil, fmt.Errorf("recording requires an output file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid recording geometry %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	r := &Recorder{
		cfg:    cfg,
		frames: make(chan *videoFrame, recorderQueue),
		done:   make(chan error, 1),
	}
	go r.runEncoder()
	return r, nil
}

// runEncoder is the consumer. It feeds frames to ffmpeg's stdin until the
// frame channel closes.
func (r *Recorder) runEncoder() {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := recorderArgs(r.cfg, runtime.GOOS)
	log.Printf("Recorder: encoding %dx%d@%d with %v to %s", r.cfg.Width, r.cfg.Height, r.cfg.FPS, outputArgs["c:v"], r.cfg.OutputFile)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(r.cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if r.cfg.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(r.cfg.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	frameSize := r.cfg.Width * r.cfg.Height * 4
	for frame := range r.frames {
		if len(frame.Pixels) != frameSize {
			log.Printf("Recorder: frame %d has %d bytes, want %d; skipping", frame.PTS, len(frame.Pixels), frameSize)
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", frame.PTS, err)
			// Drain so the producer never blocks.
			for range r.frames {
			}
			break
		}
	}
	pipeWriter.Close()
	r.done <- <-errc
}

// WriteFrame queues one frame. It blocks when the encoder falls behind.
func (r *Recorder) WriteFrame(pixels []byte, pts int64) {
	r.frames <- &videoFrame{Pixels: pixels, PTS: pts}
}

// Close flushes the queue and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	close(r.frames)
	if err := <-r.done; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	log.Printf("Recorder: wrote %s", r.cfg.OutputFile)
	return nil
}
