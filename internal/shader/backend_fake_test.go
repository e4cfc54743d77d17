package shader

// fakeBackend records every driver call so tests can count compiles, links,
// uniform writes and handle disposal without a live GL context.

type uniformWrite struct {
	loc       int32
	ints      []int32
	floats    []float32
	dim       int
	transpose bool
}

type fakeBackend struct {
	nextShader  uint32
	nextProgram uint32

	failCompile bool
	failLink    bool

	sources         map[uint32]string
	deletedShaders  []uint32
	attached        map[uint32][]uint32
	deletedPrograms []uint32
	used            []uint32

	// uniformNames is the active-uniform set reported for every linked
	// program; locations are derived from the program handle so they move
	// across relinks like real drivers are allowed to.
	uniformNames []string

	compileCalls int
	linkCalls    int
	writes       []uniformWrite
}

func newFakeBackend(uniformNames ...string) *fakeBackend {
	return &fakeBackend{
		sources:      make(map[uint32]string),
		attached:     make(map[uint32][]uint32),
		uniformNames: uniformNames,
	}
}

func (fb *fakeBackend) CreateShader(Stage) uint32 {
	fb.nextShader++
	return fb.nextShader
}

func (fb *fakeBackend) ShaderSource(shader uint32, src string) {
	fb.sources[shader] = src
}

func (fb *fakeBackend) CompileShader(uint32) bool {
	fb.compileCalls++
	return !fb.failCompile
}

func (fb *fakeBackend) ShaderInfoLog(uint32) string {
	if fb.failCompile {
		return "0:1: error: fake compile failure\n"
	}
	return ""
}

func (fb *fakeBackend) DeleteShader(shader uint32) {
	fb.deletedShaders = append(fb.deletedShaders, shader)
}

func (fb *fakeBackend) CreateProgram() uint32 {
	fb.nextProgram++
	return fb.nextProgram
}

func (fb *fakeBackend) AttachShader(program, shader uint32) {
	fb.attached[program] = append(fb.attached[program], shader)
}

func (fb *fakeBackend) LinkProgram(uint32) bool {
	fb.linkCalls++
	return !fb.failLink
}

func (fb *fakeBackend) ValidateProgram(uint32) bool { return true }

func (fb *fakeBackend) ProgramInfoLog(uint32) string {
	if fb.failLink {
		return "error: fake link failure\n"
	}
	return ""
}

func (fb *fakeBackend) DeleteProgram(program uint32) {
	if program != 0 {
		fb.deletedPrograms = append(fb.deletedPrograms, program)
	}
}

func (fb *fakeBackend) UseProgram(program uint32) {
	fb.used = append(fb.used, program)
}

func (fb *fakeBackend) UniformLocation(program uint32, name string) int32 {
	for i, n := range fb.uniformNames {
		if n == name {
			return int32(program)*100 + int32(i)
		}
	}
	return -1
}

func (fb *fakeBackend) ActiveUniforms(uint32) []string { return fb.uniformNames }

func (fb *fakeBackend) UniformInts(loc int32, v []int32) {
	fb.writes = append(fb.writes, uniformWrite{loc: loc, ints: append([]int32(nil), v...)})
}

func (fb *fakeBackend) UniformFloats(loc int32, v []float32) {
	fb.writes = append(fb.writes, uniformWrite{loc: loc, floats: append([]float32(nil), v...)})
}

func (fb *fakeBackend) UniformMatrix(loc int32, dim int, transpose bool, v []float32) {
	fb.writes = append(fb.writes, uniformWrite{
		loc: loc, dim: dim, transpose: transpose,
		floats: append([]float32(nil), v...),
	})
}

func (fb *fakeBackend) BindTexture(int, uint32) {}

func (fb *fakeBackend) writeCount() int { return len(fb.writes) }

func (fb *fakeBackend) deletedProgram(id uint32) bool {
	for _, d := range fb.deletedPrograms {
		if d == id {
			return true
		}
	}
	return false
}
