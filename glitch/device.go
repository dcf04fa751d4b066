package glitch

import (
	"fmt"
	"image"
)

// Format is the color format of a device texture.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatRGBA32F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA16F:
		return "rgba16f"
	case FormatRGBA32F:
		return "rgba32f"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Descriptor describes the storage of a texture.
type Descriptor struct {
	Width     int
	Height    int
	Format    Format
	DepthBits int
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%dx%d %s depth=%d", d.Width, d.Height, d.Format, d.DepthBits)
}

// Texture is an opaque handle to an image owned by a Device.
type Texture interface {
	Size() (width, height int)
}

// Device is the backend a pass issues its work to.
type Device interface {
	// NewTexture allocates a texture. A failure is reported as resource exhaustion.
	NewTexture(desc Descriptor) (Texture, error)
	DeleteTexture(tex Texture)
	// Copy replaces the contents of dst with src, scaling if the sizes differ.
	Copy(dst, src Texture) error
	// WritePixels uploads img into tex. The image must match the texture size.
	WritePixels(tex Texture, img *image.NRGBA) error
	// Blend runs the effect's combine step.
	Blend(inv *Invocation) error
}

// FrameContext is what the host exposes about the frame being rendered.
type FrameContext interface {
	// Source is the color target the effect reads from and writes back to.
	Source() Texture
	Descriptor() Descriptor
	// DeltaTime is the time since the previous frame, in seconds.
	DeltaTime() float64
	// Time is the total elapsed time, in seconds.
	Time() float64
	PostProcessEnabled() bool
	// InspectionView reports a frame rendered for an editor or debug view
	// rather than final output.
	InspectionView() bool
}

// Uniform names bound by the effects.
const (
	UniformMainTex         = "u_mainTex"
	UniformNoiseTex        = "u_noiseTex"
	UniformTrashTex        = "u_trashTex"
	UniformIntensity       = "u_intensity"
	UniformScanLineJitter  = "u_scanLineJitter"
	UniformVerticalJump    = "u_verticalJump"
	UniformHorizontalShake = "u_horizontalShake"
	UniformColorDrift      = "u_colorDrift"
)

// Invocation is one blend of Source into Target with a set of named bindings.
type Invocation struct {
	Effect   string
	Source   Texture
	Target   Texture
	Textures map[string]Texture
	Floats   map[string]float32
	Vec2s    map[string][2]float32
}

// NewInvocation returns an invocation with empty binding maps.
func NewInvocation(effect string, source, target Texture) *Invocation {
	return &Invocation{
		Effect:   effect,
		Source:   source,
		Target:   target,
		Textures: make(map[string]Texture),
		Floats:   make(map[string]float32),
		Vec2s:    make(map[string][2]float32),
	}
}
