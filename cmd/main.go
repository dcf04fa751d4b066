package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goglitch/glfwcontext"
	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/graphics"
	"github.com/richinsley/goglitch/headless"
	"github.com/richinsley/goglitch/inputs"
	"github.com/richinsley/goglitch/options"
	"github.com/richinsley/goglitch/renderer"
)

func init() {
	runtime.LockOSThread()
}

func parseFlags() *options.GlitchOptions {
	opts := &options.GlitchOptions{
		Help:       flag.Bool("help", false, "Show help message"),
		Mode:       flag.String("mode", "live", "Run mode: live, record or trace"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record or trace in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for record and trace modes"),
		Width:      flag.Int("width", 1280, "Width of the output"),
		Height:     flag.Int("height", 720, "Height of the output"),
		BitDepth:   flag.Int("bitdepth", 8, "Color bit depth of the frame target (8 or 16)"),
		OutputFile: flag.String("output", "output.mp4", "Output file for record mode, or a .png for trace mode"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      flag.String("codec", "h264", "Video codec for record mode: h264 or hevc"),
		Headless:   flag.Bool("headless", false, "Record with an EGL context instead of a hidden window (linux)"),

		InputImage:    flag.String("image", "", "png, jpeg or webp image to glitch (default: test pattern)"),
		AnalogShader:  flag.String("analog-shader", "", "File with the analog blend: vec4 glitch(vec2 uv)"),
		DigitalShader: flag.String("digital-shader", "", "File with the digital blend: vec4 glitch(vec2 uv)"),

		ScanLineJitter:  flag.Float64("scanline-jitter", 0.2, "Analog scan line jitter [0,1]"),
		VerticalJump:    flag.Float64("vertical-jump", 0.05, "Analog vertical jump [0,1]"),
		HorizontalShake: flag.Float64("horizontal-shake", 0.05, "Analog horizontal shake [0,1]"),
		ColorDrift:      flag.Float64("color-drift", 0.2, "Analog color drift [0,1]"),
		Intensity:       flag.Float64("intensity", 0.3, "Digital glitch intensity [0,1]"),

		IncludeInspection: flag.Bool("include-inspection", false, "Also run the passes on inspection views"),
		MaxIdleFrames:     flag.Int("max-idle-frames", glitch.DefaultOptions().MaxIdleFrames, "Frames an unused pooled buffer survives"),
		Seed:              flag.Uint64("seed", 0, "Random seed for the digital effect (0: clock)"),
		LFO:               flag.Bool("lfo", false, "Sweep the parameters over time up to their flag values"),

		AudioReactive:    flag.Bool("audio", false, "Drive the parameters from audio loudness"),
		AudioInputDevice: flag.Bool("mic", false, "Use the default microphone as audio input"),
		AudioInputFile:   flag.String("audio-file", "", "Decode this file with ffmpeg as audio input"),
		AudioGain:        flag.Float64("audio-gain", 2.0, "Gain applied to the audio levels"),
	}
	flag.Parse()
	return opts
}

func passOptions(opts *options.GlitchOptions) glitch.Options {
	return glitch.Options{
		IncludeInspectionViews: *opts.IncludeInspection,
		MaxIdleFrames:          *opts.MaxIdleFrames,
	}
}

func targetFormat(opts *options.GlitchOptions) glitch.Format {
	if *opts.BitDepth > 8 {
		return glitch.FormatRGBA16F
	}
	return glitch.FormatRGBA8
}

func readShader(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	return string(b), nil
}

// keyBindings maps a pair of keys to raising and lowering one control.
var keyBindings = []struct {
	up, down glfw.Key
	control  inputs.Control
}{
	{glfw.KeyQ, glfw.KeyA, inputs.ScanLineJitter},
	{glfw.KeyW, glfw.KeyS, inputs.VerticalJump},
	{glfw.KeyE, glfw.KeyD, inputs.HorizontalShake},
	{glfw.KeyR, glfw.KeyF, inputs.ColorDrift},
	{glfw.KeyT, glfw.KeyG, inputs.Intensity},
}

const nudgeStep = 0.05

func registerKeys(ctx *glfwcontext.Context, r *renderer.Renderer, static *inputs.StaticSource) {
	for _, b := range keyBindings {
		c := b.control
		ctx.RegisterKeyCallback(b.up, func() {
			log.Printf("%s = %.2f", c, static.Nudge(c, nudgeStep))
		})
		ctx.RegisterKeyCallback(b.down, func() {
			log.Printf("%s = %.2f", c, static.Nudge(c, -nudgeStep))
		})
	}
	ctx.RegisterKeyCallback(glfw.KeySpace, func() { r.TogglePostProcess() })
	log.Println("Keys: Q/A jitter, W/S jump, E/D shake, R/F drift, T/G intensity, Space toggles effects, Esc quits")
}

func run(opts *options.GlitchOptions) error {
	srcs, err := newSources(opts)
	if err != nil {
		return err
	}
	defer srcs.Close()

	img, err := loadInput(*opts.InputImage, *opts.Width, *opts.Height)
	if err != nil {
		return err
	}

	if *opts.Mode == "trace" {
		return runTrace(opts, img, srcs)
	}

	analogShader, err := readShader(*opts.AnalogShader)
	if err != nil {
		return err
	}
	digitalShader, err := readShader(*opts.DigitalShader)
	if err != nil {
		return err
	}
	cfg := renderer.Config{
		Width:         *opts.Width,
		Height:        *opts.Height,
		Format:        targetFormat(opts),
		AnalogShader:  analogShader,
		DigitalShader: digitalShader,
		Pass:          passOptions(opts),
		Seed:          *opts.Seed,
		RecordMode:    *opts.Mode == "record",
	}

	var ctx graphics.Context
	var window *glfwcontext.Context
	if cfg.RecordMode && *opts.Headless {
		ctx, err = headless.NewHeadless(cfg.Width, cfg.Height)
		if err != nil {
			return fmt.Errorf("failed to create headless context: %w", err)
		}
	} else {
		if err := glfwcontext.InitGraphics(); err != nil {
			return fmt.Errorf("failed to initialize glfw: %w", err)
		}
		defer glfwcontext.TerminateGraphics()
		window, err = glfwcontext.New(opts, !cfg.RecordMode)
		if err != nil {
			return fmt.Errorf("failed to create window: %w", err)
		}
		ctx = window
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(ctx, cfg, img, srcs.analog, srcs.digital)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()
	srcs.clock = r.Elapsed

	if cfg.RecordMode {
		rec, err := renderer.NewRecorder(renderer.RecorderConfig{
			Width:      cfg.Width,
			Height:     cfg.Height,
			FPS:        *opts.FPS,
			OutputFile: *opts.OutputFile,
			Codec:      *opts.Codec,
			FFMPEGPath: *opts.FFMPEGPath,
		})
		if err != nil {
			return err
		}
		return r.RunRecord(rec, *opts.Duration, *opts.FPS)
	}

	registerKeys(window, r, srcs.static)
	log.Println("Starting interactive render loop...")
	return r.Run()
}

func main() {
	opts := parseFlags()
	if *opts.Help {
		fmt.Println("goglitch: analog and digital glitch effects viewer/recorder")
		flag.PrintDefaults()
		return
	}
	switch *opts.Mode {
	case "live", "record", "trace":
	default:
		log.Fatalf("Unknown mode %q", *opts.Mode)
	}

	if err := run(opts); err != nil {
		log.Fatalf("goglitch: %v", err)
	}
}
