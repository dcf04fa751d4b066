// Package renderer runs the glitch passes on OpenGL: a glitch.Device backed by
// textures and framebuffers, and the host loop that feeds it frames.
package renderer

import (
	"fmt"
	"image"
	"log"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/graphics"
	"github.com/richinsley/goglitch/shader"
)

var glInitOnce sync.Once

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Config selects the render size and the blend shaders.
type Config struct {
	Width         int
	Height        int
	Format        glitch.Format
	AnalogShader  string
	DigitalShader string
	Pass          glitch.Options
	Seed          uint64 // 0 seeds from the clock
	RecordMode    bool   // fixed size instead of following the window
}

// Renderer owns the GL resources of the viewer and both glitch passes.
type Renderer struct {
	context     graphics.Context
	cfg         Config
	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	device      *Device
	input       *Texture
	target      *Texture

	analog  *glitch.Pass[glitch.AnalogParameters]
	digital *glitch.Pass[glitch.DigitalParameters]

	mu          sync.Mutex
	postProcess bool
	frameCount  uint64
	elapsed     float64
}

// NewRenderer makes ctx current, compiles the blend shaders and builds the
// passes. input is the picture the effects are applied to.
func NewRenderer(ctx graphics.Context, cfg Config, input image.Image, analog glitch.AnalogSource, digital glitch.DigitalSource) (*Renderer, error) {
	r := &Renderer{
		context:     ctx,
		cfg:         cfg,
		postProcess: true,
	}

	r.context.MakeCurrent()
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	isGLES := ctx.IsGLES()
	var err error
	r.blitProgram, err = newProgram(shader.GenerateVertexShader(isGLES), shader.GetBlitFragmentShader(false, isGLES))
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}

	r.device = NewDevice(r.quadVAO, isGLES)
	if err := r.device.LoadBlend(glitch.AnalogEffectName, cfg.AnalogShader); err != nil {
		r.Shutdown()
		return nil, err
	}
	if err := r.device.LoadBlend(glitch.DigitalEffectName, cfg.DigitalShader); err != nil {
		r.Shutdown()
		return nil, err
	}

	r.input, err = NewImageTexture(input)
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to upload input image: %w", err)
	}

	var random glitch.RandomStream
	if cfg.Seed != 0 {
		random = glitch.NewSeededStream(cfg.Seed)
	}
	r.analog = glitch.NewAnalogPass(r.device, analog, cfg.Pass)
	r.digital = glitch.NewDigitalPass(r.device, digital, random, cfg.Pass)
	return r, nil
}

// TogglePostProcess switches both passes on or off. Safe to call from key
// callbacks.
func (r *Renderer) TogglePostProcess() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postProcess = !r.postProcess
	log.Printf("Post-processing enabled: %v", r.postProcess)
	return r.postProcess
}

func (r *Renderer) postProcessEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.postProcess
}

// renderSize is the fixed output size when recording and the window's
// framebuffer size otherwise.
func (r *Renderer) renderSize() (int, int) {
	if r.cfg.RecordMode {
		return r.cfg.Width, r.cfg.Height
	}
	return r.context.GetFramebufferSize()
}

// ensureTarget reallocates the frame target when the render size changes.
func (r *Renderer) ensureTarget(width, height int) error {
	if r.target != nil {
		w, h := r.target.Size()
		if w == width && h == height {
			return nil
		}
		r.target.destroy()
		r.target = nil
		log.Printf("Resizing frame target to %dx%d", width, height)
	}
	t, err := newTexture(glitch.Descriptor{Width: width, Height: height, Format: r.cfg.Format})
	if err != nil {
		return fmt.Errorf("failed to create frame target: %w", err)
	}
	r.target = t
	return nil
}

// RenderFrame draws the input into the frame target and runs both passes
// over it.
func (r *Renderer) RenderFrame(delta, elapsed float64) error {
	width, height := r.renderSize()
	if width <= 0 || height <= 0 {
		// Minimized window.
		return nil
	}
	if err := r.ensureTarget(width, height); err != nil {
		return err
	}
	if err := r.device.Copy(r.target, r.input); err != nil {
		return fmt.Errorf("failed to draw input: %w", err)
	}

	r.elapsed = elapsed
	fc := &frameContext{
		target:  r.target,
		delta:   delta,
		elapsed: elapsed,
		postFX:  r.postProcessEnabled(),
	}
	// Pass errors are logged by the passes and never stop the loop.
	_ = r.analog.Execute(fc)
	_ = r.digital.Execute(fc)
	r.frameCount++
	return nil
}

// Elapsed is the time of the frame being rendered, in seconds. Parameter
// sources that animate use it as their clock.
func (r *Renderer) Elapsed() float64 { return r.elapsed }

func (r *Renderer) blitToScreen() {
	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.target == nil {
		return
	}
	gl.UseProgram(r.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.target.id)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Run is the interactive loop. It returns when the window is closed.
func (r *Renderer) Run() error {
	startTime := r.context.Time()
	lastTime := startTime
	lastReport := startTime

	for !r.context.ShouldClose() {
		now := r.context.Time()
		if err := r.RenderFrame(now-lastTime, now-startTime); err != nil {
			return err
		}
		lastTime = now
		r.blitToScreen()
		r.context.EndFrame()

		if now-lastReport >= 5 {
			r.logStats()
			lastReport = now
		}
	}
	r.logStats()
	return nil
}

// RunRecord renders duration seconds at a fixed frame rate into rec.
func (r *Renderer) RunRecord(rec *Recorder, duration float64, fps int) error {
	log.Println("Starting in record mode...")
	totalFrames := int(duration * float64(fps))
	timeStep := 1.0 / float64(fps)

	var renderErr error
	for i := 0; i < totalFrames; i++ {
		if err := r.RenderFrame(timeStep, float64(i)*timeStep); err != nil {
			renderErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		rec.WriteFrame(r.readPixels(), int64(i))
	}

	err := rec.Close()
	r.logStats()
	if renderErr != nil {
		return renderErr
	}
	return err
}

// readPixels reads the frame target as RGBA8.
func (r *Renderer) readPixels() []byte {
	w, h := r.target.Size()
	pixels := make([]byte, w*h*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.target.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels
}

func (r *Renderer) logStats() {
	a, d := r.analog.Stats(), r.digital.Stats()
	log.Printf("Frames %d | analog %d run, %d skipped, %d failed | digital %d run, %d skipped, %d failed | %d textures",
		r.frameCount, a.Processed, a.Skipped, a.Failed, d.Processed, d.Skipped, d.Failed, r.device.Live())
}

// Shutdown frees every GL resource the renderer created. The context itself
// belongs to the caller.
func (r *Renderer) Shutdown() {
	if r.analog != nil {
		r.analog.Close()
	}
	if r.digital != nil {
		r.digital.Close()
	}
	if r.target != nil {
		r.target.destroy()
	}
	if r.input != nil {
		r.input.destroy()
	}
	if r.device != nil {
		r.device.Close()
	}
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
	}
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}
