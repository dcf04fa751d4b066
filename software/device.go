// Package software implements glitch.Device on CPU images. It backs headless
// runs and tests where no GL context is available.
package software

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/richinsley/goglitch/glitch"
)

// Texture is an in-memory image.
type Texture struct {
	id   int
	img  *image.NRGBA
	desc glitch.Descriptor
}

func (t *Texture) Size() (int, int) { return t.desc.Width, t.desc.Height }

// Image returns the pixels backing the texture.
func (t *Texture) Image() *image.NRGBA { return t.img }

// Descriptor returns the descriptor the texture was created with.
func (t *Texture) Descriptor() glitch.Descriptor { return t.desc }

// NewTextureFromImage wraps a copy of img as a texture.
func NewTextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &Texture{
		img:  nrgba,
		desc: glitch.Descriptor{Width: b.Dx(), Height: b.Dy(), Format: glitch.FormatRGBA8},
	}
}

// BlendFunc realizes a blend on CPU images. dst is the target's pixels.
type BlendFunc func(inv *glitch.Invocation, dst *image.NRGBA) error

// Device is a CPU glitch.Device. It is not safe for concurrent use.
type Device struct {
	blend     BlendFunc
	limit     int64
	used      int64
	nextID    int
	live      map[*Texture]struct{}
	blends    int
	lastBlend *glitch.Invocation
}

// Option configures a Device.
type Option func(*Device)

// WithBlend sets the blend implementation. Without one, Blend copies the
// invocation's source into its target.
func WithBlend(fn BlendFunc) Option {
	return func(d *Device) { d.blend = fn }
}

// WithMemoryLimit caps the bytes of texture storage the device will hand out.
func WithMemoryLimit(bytes int64) Option {
	return func(d *Device) { d.limit = bytes }
}

func NewDevice(opts ...Option) *Device {
	d := &Device{live: make(map[*Texture]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func textureBytes(desc glitch.Descriptor) int64 {
	return int64(desc.Width) * int64(desc.Height) * 4
}

func (d *Device) NewTexture(desc glitch.Descriptor) (glitch.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	size := textureBytes(desc)
	if d.limit > 0 && d.used+size > d.limit {
		return nil, fmt.Errorf("texture %v needs %d bytes, %d of %d in use", desc, size, d.used, d.limit)
	}
	d.nextID++
	t := &Texture{
		id:   d.nextID,
		img:  image.NewNRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
		desc: desc,
	}
	d.used += size
	d.live[t] = struct{}{}
	return t, nil
}

func (d *Device) DeleteTexture(tex glitch.Texture) {
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	if _, live := d.live[t]; !live {
		return
	}
	delete(d.live, t)
	d.used -= textureBytes(t.desc)
}

func (d *Device) Copy(dst, src glitch.Texture) error {
	dt, err := d.texture(dst)
	if err != nil {
		return err
	}
	st, err := asTexture(src)
	if err != nil {
		return err
	}
	if dt.img.Bounds() == st.img.Bounds() {
		copy(dt.img.Pix, st.img.Pix)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dt.img, dt.img.Bounds(), st.img, st.img.Bounds(), xdraw.Src, nil)
	return nil
}

func (d *Device) WritePixels(tex glitch.Texture, img *image.NRGBA) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if img.Bounds().Size() != t.img.Bounds().Size() {
		return fmt.Errorf("image is %v, texture is %v", img.Bounds().Size(), t.img.Bounds().Size())
	}
	draw.Draw(t.img, t.img.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}

func (d *Device) Blend(inv *glitch.Invocation) error {
	target, err := asTexture(inv.Target)
	if err != nil {
		return err
	}
	d.blends++
	d.lastBlend = inv
	if d.blend != nil {
		return d.blend(inv, target.img)
	}
	return d.Copy(target, inv.Source)
}

// Blends is the number of blends issued so far.
func (d *Device) Blends() int { return d.blends }

// LastInvocation returns the most recent blend, or nil.
func (d *Device) LastInvocation() *glitch.Invocation { return d.lastBlend }

// Live is the number of textures allocated and not yet deleted.
func (d *Device) Live() int { return len(d.live) }

// BytesInUse is the storage held by live textures.
func (d *Device) BytesInUse() int64 { return d.used }

// texture resolves a texture this device allocated.
func (d *Device) texture(tex glitch.Texture) (*Texture, error) {
	t, err := asTexture(tex)
	if err != nil {
		return nil, err
	}
	if t.id != 0 {
		if _, ok := d.live[t]; !ok {
			return nil, fmt.Errorf("texture %d was deleted", t.id)
		}
	}
	return t, nil
}

// asTexture accepts textures from any software device, including wrapped
// host images that were never allocated by one.
func asTexture(tex glitch.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("texture %T does not belong to the software device", tex)
	}
	return t, nil
}
