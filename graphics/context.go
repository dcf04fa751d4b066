// Package graphics describes the OpenGL contexts the renderer can draw into.
package graphics

// Context defines the interface for an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	// IsGLES reports whether shaders must be translated to ESSL.
	IsGLES() bool
}
