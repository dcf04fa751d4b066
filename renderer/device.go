package renderer

import (
	"fmt"
	"image"
	"log"
	"sort"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/shader"
)

// Device implements glitch.Device on the current OpenGL context. All calls
// must be made on the thread that owns the context.
type Device struct {
	isGLES   bool
	quadVAO  uint32
	programs map[string]*blendProgram
	live     map[*Texture]struct{}
}

// NewDevice returns a device that draws blends with quadVAO.
func NewDevice(quadVAO uint32, isGLES bool) *Device {
	return &Device{
		isGLES:   isGLES,
		quadVAO:  quadVAO,
		programs: make(map[string]*blendProgram),
		live:     make(map[*Texture]struct{}),
	}
}

// LoadBlend compiles the blend shader used for invocations of effect,
// replacing any previous one. Empty source selects the passthrough blend.
func (d *Device) LoadBlend(effect, source string) error {
	p, err := newBlendProgram(source, d.isGLES)
	if err != nil {
		return fmt.Errorf("%s: %w", effect, err)
	}
	if old, ok := d.programs[effect]; ok {
		old.destroy()
	}
	d.programs[effect] = p
	log.Printf("Loaded %s blend program (%d bound uniforms)", effect, len(p.locations))
	return nil
}

func (d *Device) NewTexture(desc glitch.Descriptor) (glitch.Texture, error) {
	t, err := newTexture(desc)
	if err != nil {
		return nil, err
	}
	d.live[t] = struct{}{}
	return t, nil
}

func (d *Device) DeleteTexture(tex glitch.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return
	}
	delete(d.live, t)
	t.destroy()
}

// Copy blits src into dst, linearly filtered when the sizes differ.
func (d *Device) Copy(dst, src glitch.Texture) error {
	dt, err := asTexture(dst)
	if err != nil {
		return err
	}
	st, err := asTexture(src)
	if err != nil {
		return err
	}
	sw, sh := st.Size()
	dw, dh := dt.Size()
	filter := uint32(gl.NEAREST)
	if sw != dw || sh != dh {
		filter = gl.LINEAR
	}

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, st.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dt.fbo)
	gl.BlitFramebuffer(0, 0, int32(sw), int32(sh), 0, 0, int32(dw), int32(dh), gl.COLOR_BUFFER_BIT, filter)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	return glError("copy")
}

// WritePixels uploads img and switches the texture to point sampling with
// clamped addressing, which is what the noise texture needs.
func (d *Device) WritePixels(tex glitch.Texture, img *image.NRGBA) error {
	t, err := asTexture(tex)
	if err != nil {
		return err
	}
	w, h := t.Size()
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("image size %dx%d does not match texture size %dx%d", b.Dx(), b.Dy(), w, h)
	}
	if img.Stride != 4*w {
		return fmt.Errorf("image stride %d is not tightly packed", img.Stride)
	}

	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glError("upload")
}

// Blend draws a fullscreen quad into the invocation's target with the
// effect's blend program.
func (d *Device) Blend(inv *glitch.Invocation) error {
	p, ok := d.programs[inv.Effect]
	if !ok {
		return fmt.Errorf("no blend program loaded for %q", inv.Effect)
	}
	target, err := asTexture(inv.Target)
	if err != nil {
		return err
	}
	w, h := target.Size()

	gl.BindFramebuffer(gl.FRAMEBUFFER, target.fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.UseProgram(p.program)
	if loc := p.location(shader.UniformResolution); loc >= 0 {
		gl.Uniform2f(loc, float32(w), float32(h))
	}

	names := make([]string, 0, len(inv.Textures))
	for name := range inv.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	var unit uint32
	for _, name := range names {
		loc := p.location(name)
		if loc < 0 {
			continue
		}
		t, err := asTexture(inv.Textures[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.Uniform1i(loc, int32(unit))
		unit++
	}
	for name, v := range inv.Floats {
		if loc := p.location(name); loc >= 0 {
			gl.Uniform1f(loc, v)
		}
	}
	for name, v := range inv.Vec2s {
		if loc := p.location(name); loc >= 0 {
			gl.Uniform2f(loc, v[0], v[1])
		}
	}

	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	for i := uint32(0); i < unit; i++ {
		gl.ActiveTexture(gl.TEXTURE0 + i)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return glError(inv.Effect + " blend")
}

// Live returns the number of textures allocated through the device.
func (d *Device) Live() int { return len(d.live) }

// Close deletes the blend programs and any textures still allocated.
func (d *Device) Close() {
	for name, p := range d.programs {
		p.destroy()
		delete(d.programs, name)
	}
	if n := len(d.live); n > 0 {
		log.Printf("Device closed with %d live textures", n)
	}
	for t := range d.live {
		t.destroy()
	}
	d.live = make(map[*Texture]struct{})
}

func asTexture(tex glitch.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.id == 0 {
		return nil, fmt.Errorf("texture %v does not belong to a GL device", tex)
	}
	return t, nil
}

func glError(op string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", op, e)
	}
	return nil
}
