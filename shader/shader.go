// Package shader holds the GLSL sources of the renderer and wraps user blend
// shaders in a preamble that declares the effect bindings.
package shader

import "strings"

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceFlipGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceFlipGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

func GetBlitFragmentShader(flip, isGLES bool) string {
	if isGLES {
		if flip {
			return blitFragmentShaderSourceFlipGLES
		}
		return blitFragmentShaderSourceGLES
	}
	if flip {
		return blitFragmentShaderSourceFlipGL
	}
	return blitFragmentShaderSourceGL
}

// ───────────────────────── Blend preamble / user code glue ─────────────────────────

// UniformResolution is the target size in pixels, set on every blend.
const UniformResolution = "u_resolution"

// blendPreamble is WebGL2 source; the translator emits the dialect of the
// current context. Unused bindings are optimized out and skipped at bind time.
const blendPreamble = `#version 300 es
precision highp float;
precision highp int;

uniform vec2      u_resolution;
uniform sampler2D u_mainTex;
uniform sampler2D u_noiseTex;
uniform sampler2D u_trashTex;
uniform float     u_intensity;
uniform vec2      u_scanLineJitter;   // displacement, threshold
uniform vec2      u_verticalJump;     // amount, time
uniform float     u_horizontalShake;
uniform vec2      u_colorDrift;       // amount, time

out vec4 fragColor;
`

const blendMain = `
void main(void)
{
    fragColor = glitch(gl_FragCoord.xy / u_resolution);
}
`

// DefaultBlend copies the main texture through unchanged.
const DefaultBlend = `
vec4 glitch(vec2 uv)
{
    return texture(u_mainTex, uv);
}
`

// GetBlendShader wraps user code defining vec4 glitch(vec2 uv). Empty user
// code selects DefaultBlend.
func GetBlendShader(user string) string {
	if strings.TrimSpace(user) == "" {
		user = DefaultBlend
	}
	return blendPreamble + user + blendMain
}
