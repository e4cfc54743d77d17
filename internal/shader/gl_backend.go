package shader

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLBackend drives a live OpenGL 4.1 context. A context must be current on
// the calling thread before any method is used.
type GLBackend struct{}

func NewGLBackend() *GLBackend { return &GLBackend{} }

func glStage(stage Stage) uint32 {
	switch stage {
	case VertexStage:
		return gl.VERTEX_SHADER
	case FragmentStage:
		return gl.FRAGMENT_SHADER
	case GeometryStage:
		return gl.GEOMETRY_SHADER
	}
	return gl.VERTEX_SHADER
}

func (gb *GLBackend) CreateShader(stage Stage) uint32 {
	return gl.CreateShader(glStage(stage))
}

func (gb *GLBackend) ShaderSource(shader uint32, src string) {
	cSources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
}

func (gb *GLBackend) CompileShader(shader uint32) bool {
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (gb *GLBackend) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (gb *GLBackend) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (gb *GLBackend) CreateProgram() uint32 { return gl.CreateProgram() }

func (gb *GLBackend) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (gb *GLBackend) LinkProgram(program uint32) bool {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (gb *GLBackend) ValidateProgram(program uint32) bool {
	gl.ValidateProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.VALIDATE_STATUS, &status)
	return status != gl.FALSE
}

func (gb *GLBackend) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (gb *GLBackend) DeleteProgram(program uint32) {
	if program != 0 {
		gl.DeleteProgram(program)
	}
}

func (gb *GLBackend) UseProgram(program uint32) { gl.UseProgram(program) }

func (gb *GLBackend) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (gb *GLBackend) ActiveUniforms(program uint32) []string {
	var count, maxLength int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLength)
	if count <= 0 || maxLength <= 0 {
		return nil
	}

	names := make([]string, 0, count)
	buf := make([]byte, maxLength+1)

	for i := int32(0); i < count; i++ {
		var nameLength, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLength, &nameLength, &size, &xtype, &buf[0])
		if nameLength <= 0 {
			continue
		}
		names = append(names, string(buf[:nameLength]))
	}

	return names
}

func (gb *GLBackend) UniformInts(location int32, v []int32) {
	switch len(v) {
	case 1:
		gl.Uniform1iv(location, 1, &v[0])
	case 2:
		gl.Uniform2iv(location, 1, &v[0])
	case 3:
		gl.Uniform3iv(location, 1, &v[0])
	case 4:
		gl.Uniform4iv(location, 1, &v[0])
	}
}

func (gb *GLBackend) UniformFloats(location int32, v []float32) {
	switch len(v) {
	case 1:
		gl.Uniform1fv(location, 1, &v[0])
	case 2:
		gl.Uniform2fv(location, 1, &v[0])
	case 3:
		gl.Uniform3fv(location, 1, &v[0])
	case 4:
		gl.Uniform4fv(location, 1, &v[0])
	}
}

func (gb *GLBackend) UniformMatrix(location int32, dim int, transpose bool, v []float32) {
	switch dim {
	case 2:
		gl.UniformMatrix2fv(location, 1, transpose, &v[0])
	case 3:
		gl.UniformMatrix3fv(location, 1, transpose, &v[0])
	case 4:
		gl.UniformMatrix4fv(location, 1, transpose, &v[0])
	}
}

func (gb *GLBackend) BindTexture(unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.ActiveTexture(gl.TEXTURE0)
}
