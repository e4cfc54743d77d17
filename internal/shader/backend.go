package shader

// Stage identifies one shader compilation stage.
type Stage uint32

const (
	VertexStage Stage = iota
	FragmentStage
	GeometryStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	case GeometryStage:
		return "geometry"
	}
	return "unknown"
}

// Backend abstracts the GPU driver calls the shader system issues. All
// methods are synchronous and must be called from the rendering thread only.
// GLBackend talks to OpenGL; NullBackend runs headless.
type Backend interface {
	CreateShader(stage Stage) uint32
	ShaderSource(shader uint32, src string)
	// CompileShader returns whether compilation succeeded.
	CompileShader(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	// LinkProgram returns whether linking succeeded.
	LinkProgram(program uint32) bool
	// ValidateProgram returns the driver's semantic completeness verdict.
	ValidateProgram(program uint32) bool
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(program uint32, name string) int32
	ActiveUniforms(program uint32) []string

	// Grouped uniform writes; len(v) selects the glUniform{1..4}{i,f}v call.
	UniformInts(location int32, v []int32)
	UniformFloats(location int32, v []float32)
	// UniformMatrix writes a dim x dim float matrix (dim 2, 3 or 4).
	UniformMatrix(location int32, dim int, transpose bool, v []float32)

	BindTexture(unit int, tex uint32)
}

// NullBackend accepts every call and succeeds, handing out synthetic handles.
// It keeps the shader system usable headless (tests, dedicated servers).
type NullBackend struct {
	nextShader  uint32
	nextProgram uint32
}

func (nb *NullBackend) CreateShader(Stage) uint32 {
	nb.nextShader++
	return nb.nextShader
}

func (nb *NullBackend) ShaderSource(uint32, string)      {}
func (nb *NullBackend) CompileShader(uint32) bool        { return true }
func (nb *NullBackend) ShaderInfoLog(uint32) string      { return "" }
func (nb *NullBackend) DeleteShader(uint32)              {}

func (nb *NullBackend) CreateProgram() uint32 {
	nb.nextProgram++
	return nb.nextProgram
}

func (nb *NullBackend) AttachShader(uint32, uint32)      {}
func (nb *NullBackend) LinkProgram(uint32) bool          { return true }
func (nb *NullBackend) ValidateProgram(uint32) bool      { return true }
func (nb *NullBackend) ProgramInfoLog(uint32) string     { return "" }
func (nb *NullBackend) DeleteProgram(uint32)             {}
func (nb *NullBackend) UseProgram(uint32)                {}

func (nb *NullBackend) UniformLocation(uint32, string) int32 { return 0 }
func (nb *NullBackend) ActiveUniforms(uint32) []string       { return nil }

func (nb *NullBackend) UniformInts(int32, []int32)                 {}
func (nb *NullBackend) UniformFloats(int32, []float32)             {}
func (nb *NullBackend) UniformMatrix(int32, int, bool, []float32)  {}

func (nb *NullBackend) BindTexture(int, uint32) {}
