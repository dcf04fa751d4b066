package renderer

import (
	"fmt"
	"image"
	"image/draw"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goglitch/glitch"
)

// Texture is a GL texture with the framebuffer that renders into it.
type Texture struct {
	id   uint32
	fbo  uint32
	desc glitch.Descriptor
}

func (t *Texture) Size() (int, int) { return t.desc.Width, t.desc.Height }

// ID returns the GL texture name.
func (t *Texture) ID() uint32 { return t.id }

func (t *Texture) Descriptor() glitch.Descriptor { return t.desc }

// glFormat maps a texture format to the GL internal format and the pixel type
// used for allocation.
func glFormat(f glitch.Format) (int32, uint32, error) {
	switch f {
	case glitch.FormatRGBA8:
		return gl.RGBA8, gl.UNSIGNED_BYTE, nil
	case glitch.FormatRGBA16F:
		return gl.RGBA16F, gl.FLOAT, nil
	case glitch.FormatRGBA32F:
		return gl.RGBA32F, gl.FLOAT, nil
	default:
		return 0, 0, fmt.Errorf("unsupported texture format %s", f)
	}
}

// newTexture creates a texture and an FBO with the texture as its only
// color attachment. Depth is never attached.
func newTexture(desc glitch.Descriptor) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	internalFormat, pixelType, err := glFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	t := &Texture{desc: desc}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, pixelType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if e := gl.GetError(); e == gl.OUT_OF_MEMORY {
		t.destroy()
		return nil, fmt.Errorf("out of video memory allocating %s", desc)
	}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.id, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("framebuffer for %s is not complete (status 0x%x)", desc, status)
	}
	return t, nil
}

func (t *Texture) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// vflip vertically flips img. GL's texture origin is the bottom-left corner.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// NewImageTexture uploads img as an RGBA8 texture the passes can use as
// their source.
func NewImageTexture(img image.Image) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	rgba = vflip(rgba)

	t, err := newTexture(glitch.Descriptor{Width: b.Dx(), Height: b.Dy(), Format: glitch.FormatRGBA8})
	if err != nil {
		return nil, err
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.Dx()), int32(b.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// Destroy frees a texture created with NewImageTexture.
func (t *Texture) Destroy() { t.destroy() }
