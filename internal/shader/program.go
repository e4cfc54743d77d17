package shader

import (
	"strings"

	"Arbor3D/internal/logger"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type textureBinding struct {
	unit int
	tex  uint32
}

// Program owns an ordered set of shader Objects and the native program
// linked from them. It drives compilation, linking, validation and reloads,
// and fronts every uniform write with a set-if-changed cache so redundant
// driver calls are skipped frame over frame.
//
// Lifecycle: unlinked (handle 0) -> linked and valid -> invalid on a failed
// reload -> released. Uniform writes are legal only while valid and bound.
// All methods must run on the rendering thread.
type Program struct {
	name    string
	backend Backend
	cache   *ProgramCache

	glid    uint32
	hash    uint32
	srcSize int
	valid   bool
	bound   bool
	stale   bool

	objects  []*Object
	uniforms map[uint32]*UniformState
	// uniformIdx maps the indexed fast-path protocol onto name hashes, in
	// BindUniform registration order.
	uniformIdx []uint32
	textures   []textureBinding
	log        strings.Builder

	// Flags is the preprocessor definition set; mutate freely between
	// frames, the next MaybeReload picks the changes up.
	Flags Flags

	// SourceDir is where file-based shader objects load from.
	SourceDir string
}

// NewProgram creates an unlinked program. The cache is required; pass one
// shared instance for the whole renderer.
func NewProgram(name string, backend Backend, cache *ProgramCache) *Program {
	return &Program{
		name:      name,
		backend:   backend,
		cache:     cache,
		uniforms:  make(map[uint32]*UniformState),
		SourceDir: DefaultSourceDir,
	}
}

func (p *Program) Name() string   { return p.name }
func (p *Program) Handle() uint32 { return p.glid }
func (p *Program) Hash() uint32   { return p.hash }
func (p *Program) IsValid() bool  { return p.valid }
func (p *Program) IsBound() bool  { return p.bound }
func (p *Program) Log() string    { return p.log.String() }

// AttachObject hands ownership of a shader object to the program; it is
// destroyed on Release.
func (p *Program) AttachObject(so *Object) {
	p.objects = append(p.objects, so)
}

func (p *Program) Objects() []*Object { return p.objects }

// MarkStale forces a full reload on the next MaybeReload; the file watcher
// calls this when a source file changed on disk.
func (p *Program) MarkStale() { p.stale = true }

// Link brings the program into a usable state, reloading if needed.
func (p *Program) Link() { p.MaybeReload(false) }

// Enable binds the program for uniform writes and draws. An invalid program
// stays unbound and the failure is reported, so callers can skip the draw.
func (p *Program) Enable() {
	p.MaybeReload(true)

	if !p.valid {
		logger.Log.Warn("enable on invalid program", zap.String("program", p.name))
		return
	}

	p.backend.UseProgram(p.glid)
	p.bound = true
}

func (p *Program) Disable() {
	p.backend.UseProgram(0)
	p.bound = false
}

// MaybeReload skips the expensive reload path entirely unless this is the
// first use, a definition flag changed, or a watched source file did.
func (p *Program) MaybeReload(validate bool) {
	if !p.stale && p.Flags.HashSet() && !p.Flags.Updated() {
		return
	}
	p.Reload(!p.Flags.HashSet() || p.stale, validate)
	p.stale = false
}

// Reload recomputes hashes, then either adopts a cached native program for
// the new content or compiles and links a fresh one. On success previously
// set uniform state is migrated: every location is re-resolved and cached
// values are replayed, so hot-reloading never loses engine-set inputs. On
// failure the program is invalid, diagnostics are in Log, and callers may
// retry with a later Reload.
func (p *Program) Reload(force, validate bool) {
	oldID := p.glid
	oldHash := p.hash
	wasValid := p.valid
	useCache := p.cache.Enabled()

	if !p.reloadState(force || !wasValid || oldID == 0) {
		// nothing left to compile (e.g. load failure); fatal for this
		// program only
		p.valid = false
		return
	}

	p.glid = 0
	if useCache {
		p.glid = p.cache.Find(p.hash, p.srcSize)
	}

	fromCache := p.glid != 0
	ok := fromCache
	if !ok {
		ok = p.createAndLink()
	}
	p.valid = ok

	if ok {
		if validate {
			// diagnostic only; a validation warning never blocks use
			p.Validate()
		}
		p.copyUniformStates()

		if useCache && !fromCache {
			p.cache.Push(p.hash, p.srcSize, p.glid)
		}
	} else if p.log.Len() > 0 {
		logger.Log.Warn("program reload failed",
			zap.String("program", p.name),
			zap.String("log", p.log.String()))
	}

	// dispose the pre-reload handle unless it is still in use or the cache
	// owns it (it may serve other programs with the old content)
	if oldID == 0 || oldID == p.glid || p.hash == oldHash {
		return
	}
	if p.cache.Holds(oldID) {
		return
	}
	p.backend.DeleteProgram(oldID)
}

// reloadState refreshes definitions, source texts and hashes. Returns false
// when no shader objects remain.
func (p *Program) reloadState(reloadObjs bool) bool {
	p.log.Reset()
	p.clearUniformLocations()

	defs := p.Flags.String()
	for _, so := range p.objects {
		so.dir = p.SourceDir
		so.SetDefinitions(defs)
	}

	if reloadObjs {
		for _, so := range p.objects {
			so.ReloadFromTextOrFile()
		}
	}

	p.recalculateHash()
	return len(p.objects) > 0
}

// recalculateHash folds the definition-flags hash with every object hash;
// must run before any cache lookup.
func (p *Program) recalculateHash() {
	p.hash = p.Flags.UpdateHash()
	p.srcSize = 0

	for _, so := range p.objects {
		p.hash ^= so.Hash()
		p.srcSize += so.size()
	}
}

func (p *Program) createAndLink() bool {
	p.glid = p.backend.CreateProgram()
	if p.glid == 0 {
		return false
	}

	objsValid := true
	var compiled []uint32

	for _, so := range p.objects {
		id, ok := so.CreateAndCompile(p.backend, &p.log)
		if !ok {
			// keep compiling the rest so the log covers every failure
			objsValid = false
			continue
		}
		p.backend.AttachShader(p.glid, id)
		compiled = append(compiled, id)
	}

	if objsValid {
		objsValid = p.backend.LinkProgram(p.glid)
		p.log.WriteString(p.backend.ProgramInfoLog(p.glid))
	}

	// attached shaders are flagged for deletion and go away with the program
	for _, id := range compiled {
		p.backend.DeleteShader(id)
	}

	if !objsValid {
		p.backend.DeleteProgram(p.glid)
		p.glid = 0
		return false
	}

	return true
}

// Validate asks the driver for its completeness verdict and reports any
// active uniform the engine never bound. Diagnostic only.
func (p *Program) Validate() bool {
	if p.glid == 0 {
		return false
	}

	validated := p.backend.ValidateProgram(p.glid)
	p.log.WriteString(p.backend.ProgramInfoLog(p.glid))

	for _, name := range p.backend.ActiveUniforms(p.glid) {
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		if _, ok := p.uniforms[stringHash(name)]; ok {
			continue
		}
		logger.Log.Warn("program has unset uniform",
			zap.String("program", p.name),
			zap.String("uniform", name))
	}

	return validated
}

// Release tears down the native program (unless the cache owns it) and all
// cached uniform, texture and log state. Owned shader objects go with it.
func (p *Program) Release() {
	if p.glid != 0 && !p.cache.Holds(p.glid) {
		p.backend.DeleteProgram(p.glid)
	}

	p.glid = 0
	p.hash = 0
	p.srcSize = 0
	p.valid = false
	p.bound = false
	p.stale = false

	p.objects = nil
	p.uniforms = make(map[uint32]*UniformState)
	p.uniformIdx = nil
	p.textures = nil
	p.log.Reset()
	p.Flags.Clear()
}

/*****************************************************************/

// clearUniformLocations invalidates every resolved location; native
// locations are not stable across relinks.
func (p *Program) clearUniformLocations() {
	for _, us := range p.uniforms {
		us.SetLocation(LocationNotFound)
	}
}

// copyUniformStates re-resolves locations for the freshly linked program and
// replays every previously set value, so a relink causes no observable
// discontinuity.
func (p *Program) copyUniformStates() {
	active := p.backend.ActiveUniforms(p.glid)

	replaying := false
	for _, name := range active {
		key := stringHash(name)
		us, ok := p.uniforms[key]
		if !ok {
			us = newUniformState(name)
			p.uniforms[key] = us
		}
		us.SetLocation(p.backend.UniformLocation(p.glid, name))

		if us.Initialized() {
			if !replaying {
				p.backend.UseProgram(p.glid)
				replaying = true
			}
			us.apply(p.backend)
		}
	}

	if replaying {
		p.backend.UseProgram(0)
	}
}

// uniformState finds or lazily creates the named uniform's cached state,
// resolving its location against the current native program.
func (p *Program) uniformState(name string) *UniformState {
	key := stringHash(name)
	us, ok := p.uniforms[key]
	if !ok {
		us = newUniformState(name)
		us.SetLocation(p.backend.UniformLocation(p.glid, name))
		p.uniforms[key] = us
	}
	return us
}

// UniformState exposes the cached state for a name, or nil. Diagnostics and
// tests; engine code uses the setters.
func (p *Program) UniformState(name string) *UniformState {
	return p.uniforms[stringHash(name)]
}

func (p *Program) checkBound() bool {
	if p.bound {
		return true
	}
	logger.Log.Error("uniform write on unbound program", zap.String("program", p.name))
	return false
}

/*****************************************************************/

// Named setters. Each compares against the cached state and only touches the
// driver when the value actually changed.

func (p *Program) SetInt(name string, v int32) { p.SetInts(name, v) }

func (p *Program) SetInts(name string, v ...int32) {
	if !p.checkBound() {
		return
	}
	if us := p.uniformState(name); us.SetInts(v...) {
		us.apply(p.backend)
	}
}

func (p *Program) SetFloat(name string, v float32) { p.SetFloats(name, v) }

func (p *Program) SetFloats(name string, v ...float32) {
	if !p.checkBound() {
		return
	}
	if us := p.uniformState(name); us.SetFloats(v...) {
		us.apply(p.backend)
	}
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) { p.SetFloats(name, v[0], v[1]) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.SetFloats(name, v[0], v[1], v[2]) }
func (p *Program) SetVec4(name string, v mgl32.Vec4) { p.SetFloats(name, v[0], v[1], v[2], v[3]) }

func (p *Program) setMatrix(name string, dim int, transpose bool, v []float32) {
	if !p.checkBound() {
		return
	}
	if us := p.uniformState(name); us.SetMatrix(dim, transpose, v) {
		us.apply(p.backend)
	}
}

func (p *Program) SetMat2(name string, transpose bool, m mgl32.Mat2) {
	p.setMatrix(name, 2, transpose, m[:])
}

func (p *Program) SetMat3(name string, transpose bool, m mgl32.Mat3) {
	p.setMatrix(name, 3, transpose, m[:])
}

func (p *Program) SetMat4(name string, transpose bool, m mgl32.Mat4) {
	p.setMatrix(name, 4, transpose, m[:])
}

/*****************************************************************/

// Indexed fast path: register names once after Link, then address them by
// the returned index in the per-frame loop.

// BindUniform registers a uniform for indexed access and returns its index.
// Registration order defines the index space; unused slots can be filled
// with a placeholder name.
func (p *Program) BindUniform(name string) int {
	p.uniformIdx = append(p.uniformIdx, stringHash(name))
	p.uniformState(name)
	return len(p.uniformIdx) - 1
}

func (p *Program) stateAt(idx int) *UniformState {
	if idx < 0 || idx >= len(p.uniformIdx) {
		return nil
	}
	return p.uniforms[p.uniformIdx[idx]]
}

func (p *Program) SetIntAt(idx int, v int32) {
	if !p.checkBound() {
		return
	}
	if us := p.stateAt(idx); us != nil && us.SetInts(v) {
		us.apply(p.backend)
	}
}

func (p *Program) SetFloatAt(idx int, v float32) { p.SetFloatsAt(idx, v) }

func (p *Program) SetFloatsAt(idx int, v ...float32) {
	if !p.checkBound() {
		return
	}
	if us := p.stateAt(idx); us != nil && us.SetFloats(v...) {
		us.apply(p.backend)
	}
}

func (p *Program) SetVec3At(idx int, v mgl32.Vec3) { p.SetFloatsAt(idx, v[0], v[1], v[2]) }

func (p *Program) SetVec4At(idx int, v mgl32.Vec4) {
	p.SetFloatsAt(idx, v[0], v[1], v[2], v[3])
}

func (p *Program) SetMat4At(idx int, transpose bool, m mgl32.Mat4) {
	if !p.checkBound() {
		return
	}
	if us := p.stateAt(idx); us != nil && us.SetMatrix(4, transpose, m[:]) {
		us.apply(p.backend)
	}
}

/*****************************************************************/

// AddTextureBinding registers a texture for a unit; BindTextures replays the
// table after Enable.
func (p *Program) AddTextureBinding(unit int, tex uint32) {
	for i := range p.textures {
		if p.textures[i].unit == unit {
			p.textures[i].tex = tex
			return
		}
	}
	p.textures = append(p.textures, textureBinding{unit: unit, tex: tex})
}

func (p *Program) BindTextures() {
	for _, tb := range p.textures {
		p.backend.BindTexture(tb.unit, tb.tex)
	}
}
