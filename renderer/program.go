package renderer

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/goglitch/glitch"
	"github.com/richinsley/goglitch/shader"
	xlate "github.com/richinsley/goglitch/translator"
)

// blendUniforms are the bindings an effect invocation may set.
var blendUniforms = []string{
	shader.UniformResolution,
	glitch.UniformMainTex,
	glitch.UniformNoiseTex,
	glitch.UniformTrashTex,
	glitch.UniformIntensity,
	glitch.UniformScanLineJitter,
	glitch.UniformVerticalJump,
	glitch.UniformHorizontalShake,
	glitch.UniformColorDrift,
}

// blendProgram is a compiled blend shader and the locations of its uniforms,
// keyed by their source names.
type blendProgram struct {
	program   uint32
	locations map[string]int32
}

func (p *blendProgram) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

func (p *blendProgram) destroy() {
	gl.DeleteProgram(p.program)
}

// newBlendProgram translates user blend code to the context's dialect and
// links it with the fullscreen vertex shader.
func newBlendProgram(user string, isGLES bool) (*blendProgram, error) {
	translator, err := xlate.GetTranslator()
	if err != nil {
		return nil, err
	}
	outputFormat := gst.OutputFormatGLSL410
	if isGLES {
		outputFormat = gst.OutputFormatESSL
	}
	fsShader, err := translator.TranslateShader(shader.GetBlendShader(user), "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	program, err := newProgram(shader.GenerateVertexShader(isGLES), fsShader.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create blend program: %w", err)
	}

	p := &blendProgram{program: program, locations: make(map[string]int32)}
	uniformMap := fsShader.Variables
	for _, name := range blendUniforms {
		v, ok := uniformMap[name]
		if !ok {
			continue
		}
		if loc := gl.GetUniformLocation(program, gl.Str(v.MappedName+"\x00")); loc >= 0 {
			p.locations[name] = loc
		}
	}
	return p, nil
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
