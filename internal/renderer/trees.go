package renderer

import (
	"math"

	"Arbor3D/internal/logger"
	"Arbor3D/internal/shader"

	perlin "github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// TreeSquareSize is the world-unit edge of one tree square.
const TreeSquareSize = 64

type treeProgram int

const (
	treeProgramBasic treeProgram = iota
	treeProgramShadow
	treeProgramLast
)

// Tree is one placed tree; types 0-7 are pines, 8-15 leaf trees.
type Tree struct {
	ID   int
	Type int
	Pos  mgl32.Vec3
}

// FallingTree animates a felled tree until it hits the ground.
type FallingTree struct {
	ID      int
	Type    int
	Pos     mgl32.Vec3
	Dir     mgl32.Vec3
	Speed   float32
	FallPos float32
}

type treeSquare struct {
	trees []Tree
}

// TreeDrawer renders billboard trees and falling-tree animations. It owns
// the basic and shadow tree programs and drives all uniform traffic through
// the set-if-changed shader layer, so per-frame constants cost one driver
// call per change, not per frame.
type TreeDrawer struct {
	cfg     Config
	backend shader.Backend
	cache   *shader.ProgramCache

	programs [treeProgramLast]*shader.Program
	watcher  *shader.Watcher

	squares        []treeSquare
	treesX, treesY int
	falling        []FallingTree

	noise    *perlin.Perlin
	windTime float64

	shadowMatrix mgl32.Mat4
	shadowParams mgl32.Vec4

	va VertexArray

	// Submit draws the assembled vertex array while the tree program is
	// still bound. Leave nil to only build the geometry (headless use).
	Submit func(va *VertexArray)

	// indexed uniform slots, fixed by registration order in loadTreeShaders
	uCameraDirX    int
	uCameraDirY    int
	uTreeOffset    int
	uGroundAmbient int
	uGroundDiffuse int
	uAlphaMod      int
	uInvMapSize    int
	uShadowMatrix  int
	uShadowParams  int
	uShadowDensity int
	uShadowTex     int
	uDiffuseTex    int
}

// NewTreeDrawer builds the tree programs for a map of mapX x mapY world
// units. Shader failures leave the affected program invalid and logged; the
// drawer then skips its passes instead of failing construction.
func NewTreeDrawer(backend shader.Backend, cfg Config, mapX, mapY int) *TreeDrawer {
	td := &TreeDrawer{
		cfg:     cfg,
		backend: backend,
		cache:   shader.NewProgramCache(cfg.UseShaderCache),
		treesX:  max(1, mapX/TreeSquareSize),
		treesY:  max(1, mapY/TreeSquareSize),
		noise:   perlin.NewPerlin(2, 2, 3, 1337),
	}
	td.squares = make([]treeSquare, td.treesX*td.treesY)
	td.shadowMatrix = mgl32.Ident4()

	td.loadTreeShaders(mapX, mapY)

	if cfg.WatchShaders {
		w, err := shader.NewWatcher(cfg.ShaderDir)
		if err != nil {
			logger.Log.Warn("shader watching disabled", zap.Error(err))
		} else {
			td.watcher = w
			for _, p := range td.programs {
				if p != nil {
					w.Watch(p)
				}
			}
		}
	}

	return td
}

func (td *TreeDrawer) loadTreeShaders(mapX, mapY int) {
	basic := shader.NewProgram("treeDefShaderGLSL", td.backend, td.cache)
	basic.SourceDir = td.cfg.ShaderDir
	basic.AttachObject(shader.NewObject(shader.VertexStage, "TreeVertProg.glsl", "#define TREE_BASIC\n"))
	basic.AttachObject(shader.NewObject(shader.FragmentStage, "TreeFragProg.glsl", "#define TREE_BASIC\n"))
	td.programs[treeProgramBasic] = basic

	shadow := shader.NewProgram("treeAdvShaderGLSL", td.backend, td.cache)
	shadow.SourceDir = td.cfg.ShaderDir
	shadow.AttachObject(shader.NewObject(shader.VertexStage, "TreeVertProg.glsl", "#define TREE_SHADOW\n"))
	shadow.AttachObject(shader.NewObject(shader.FragmentStage, "TreeFragProg.glsl", "#define TREE_SHADOW\n"))
	td.programs[treeProgramShadow] = shadow

	basic.Link()
	shadow.Link()

	// shared slots [0,5]
	sharedNames := []string{
		"cameraDirX",
		"cameraDirY",
		"treeOffset",
		"groundAmbientColor",
		"groundDiffuseColor",
		"alphaModifiers",
	}
	for _, name := range sharedNames {
		basic.BindUniform(name)
		shadow.BindUniform(name)
	}

	// slot 6: basic only
	td.uInvMapSize = basic.BindUniform("invMapSizePO2")
	shadow.BindUniform("$UNUSED$")

	// slots [7,11]: shadow only
	shadowNames := []string{
		"shadowMatrix",
		"shadowParams",
		"groundShadowDensity",
		"shadowTex",
		"diffuseTex",
	}
	for _, name := range shadowNames {
		basic.BindUniform("$UNUSED$")
		shadow.BindUniform(name)
	}

	td.uCameraDirX = 0
	td.uCameraDirY = 1
	td.uTreeOffset = 2
	td.uGroundAmbient = 3
	td.uGroundDiffuse = 4
	td.uAlphaMod = 5
	td.uShadowMatrix = 7
	td.uShadowParams = 8
	td.uShadowDensity = 9
	td.uShadowTex = 10
	td.uDiffuseTex = 11

	invX := 1.0 / float32(max(1, mapX))
	invY := 1.0 / float32(max(1, mapY))

	basic.Enable()
	if basic.IsValid() {
		basic.SetVec3At(td.uGroundAmbient, td.cfg.GroundAmbientColor)
		basic.SetVec3At(td.uGroundDiffuse, td.cfg.GroundDiffuseColor)
		basic.SetFloatsAt(td.uInvMapSize, invX, invY, invX, 1.0)
		basic.Disable()
	}
	basic.Validate()

	shadow.Enable()
	if shadow.IsValid() {
		shadow.SetVec3At(td.uGroundAmbient, td.cfg.GroundAmbientColor)
		shadow.SetVec3At(td.uGroundDiffuse, td.cfg.GroundDiffuseColor)
		shadow.SetFloatAt(td.uShadowDensity, 1.0-(td.cfg.GroundShadowDensity*0.5))
		shadow.SetIntAt(td.uShadowTex, 0)
		shadow.SetIntAt(td.uDiffuseTex, 1)
		shadow.Disable()
	}
	shadow.Validate()
}

// BasicProgram and ShadowProgram expose the underlying programs for engine
// composition (extra uniforms, validation, diagnostics).
func (td *TreeDrawer) BasicProgram() *shader.Program  { return td.programs[treeProgramBasic] }
func (td *TreeDrawer) ShadowProgram() *shader.Program { return td.programs[treeProgramShadow] }

// SetBarkTexture registers the tree atlas texture on both programs.
func (td *TreeDrawer) SetBarkTexture(tex uint32) {
	td.programs[treeProgramBasic].AddTextureBinding(0, tex)
	td.programs[treeProgramShadow].AddTextureBinding(1, tex)
}

// SetShadowState installs the depth texture and matrix produced by the
// shadow pass; the values reach the GPU on the next DrawPass.
func (td *TreeDrawer) SetShadowState(matrix mgl32.Mat4, params mgl32.Vec4, shadowTex uint32) {
	td.shadowMatrix = matrix
	td.shadowParams = params
	td.programs[treeProgramShadow].AddTextureBinding(0, shadowTex)
}

func (td *TreeDrawer) squareAt(pos mgl32.Vec3) *treeSquare {
	sx := int(pos.X()) / TreeSquareSize
	sy := int(pos.Z()) / TreeSquareSize
	sx = min(max(sx, 0), td.treesX-1)
	sy = min(max(sy, 0), td.treesY-1)
	return &td.squares[sy*td.treesX+sx]
}

func (td *TreeDrawer) AddTree(id, treeType int, pos mgl32.Vec3) {
	sq := td.squareAt(pos)
	sq.trees = append(sq.trees, Tree{ID: id, Type: treeType, Pos: pos})
}

func (td *TreeDrawer) DeleteTree(id int, pos mgl32.Vec3) {
	sq := td.squareAt(pos)
	for i := range sq.trees {
		if sq.trees[i].ID == id {
			sq.trees[i] = sq.trees[len(sq.trees)-1]
			sq.trees = sq.trees[:len(sq.trees)-1]
			return
		}
	}
}

// AddFallingTree starts the falling animation. Implausibly long fall vectors
// are dropped.
func (td *TreeDrawer) AddFallingTree(id, treeType int, pos, dir mgl32.Vec3) {
	length := dir.Len()
	if length > 500.0 || length == 0 {
		return
	}

	td.falling = append(td.falling, FallingTree{
		ID:      id,
		Type:    treeType,
		Pos:     pos,
		Dir:     dir.Mul(1.0 / length),
		Speed:   max(0.01, length*0.0004),
		FallPos: 0,
	})
}

// Update advances falling trees and the wind phase by one sim frame.
func (td *TreeDrawer) Update() {
	td.windTime += float64(td.cfg.WindSpeed) * 0.05

	for n := 0; n < len(td.falling); {
		ft := &td.falling[n]

		ft.FallPos += ft.Speed * 0.1
		ft.Speed += float32(math.Sin(float64(ft.FallPos))) * 0.04

		if ft.FallPos > 1.0 {
			// grounded; the sim replaces it with a stump feature
			td.falling[n] = td.falling[len(td.falling)-1]
			td.falling = td.falling[:len(td.falling)-1]
			continue
		}

		n++
	}
}

func (td *TreeDrawer) FallingTrees() []FallingTree { return td.falling }

// windOffset sways a tree around its anchor using the noise field.
func (td *TreeDrawer) windOffset(pos mgl32.Vec3) mgl32.Vec3 {
	if td.cfg.WindStrength == 0 {
		return mgl32.Vec3{}
	}
	x := td.noise.Noise2D(float64(pos.X())*0.01, td.windTime)
	z := td.noise.Noise2D(float64(pos.Z())*0.01, td.windTime+37.0)
	return mgl32.Vec3{float32(x), 0, float32(z)}.Mul(td.cfg.WindStrength)
}

// treeProb gives each tree a stable draw threshold for the soft distance
// cutoff, so thinning is deterministic frame over frame.
func treeProb(id int) float32 {
	h := uint32(id) * 2654435761
	h ^= h >> 16
	return float32(h&0xffff) / 65536.0
}

func sqDistance2D(a, b mgl32.Vec3) float32 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}

// fallMatrix builds the tilt transform of a falling tree from its fall
// progress, matching the arc of the original animation.
func fallMatrix(ft *FallingTree, pos mgl32.Vec3) mgl32.Mat4 {
	ang := float64(ft.FallPos) * math.Pi
	sin := float32(math.Sin(ang))
	cos := float32(math.Cos(ang))

	yvec := mgl32.Vec3{ft.Dir.X() * sin, cos, ft.Dir.Z() * sin}
	zvec := yvec.Cross(mgl32.Vec3{-1, 0, 0})
	if zvec.Len() == 0 {
		zvec = mgl32.Vec3{0, 0, 1}
	}
	zvec = zvec.Normalize()
	xvec := yvec.Cross(zvec)

	return mgl32.Mat4{
		xvec.X(), xvec.Y(), xvec.Z(), 0,
		yvec.X(), yvec.Y(), yvec.Z(), 0,
		zvec.X(), zvec.Y(), zvec.Z(), 0,
		pos.X(), pos.Y(), pos.Z(), 1,
	}
}

// DrawPass builds this frame's billboard geometry and pushes the per-frame
// uniforms. It returns the vertex array for submission, or nil when the
// active program is invalid and the pass must be skipped.
func (td *TreeDrawer) DrawPass(cam *Camera) *VertexArray {
	if td.watcher != nil {
		td.watcher.Poll()
	}

	shadowed := td.cfg.ShadowsEnabled && td.programs[treeProgramShadow].IsValid()
	prog := td.programs[treeProgramBasic]
	if shadowed {
		prog = td.programs[treeProgramShadow]
	}

	prog.Enable()
	if !prog.IsValid() {
		// diagnostics are in the program log; skip the pass, keep the frame
		return nil
	}
	prog.BindTextures()

	if shadowed {
		prog.SetMat4At(td.uShadowMatrix, false, td.shadowMatrix)
		prog.SetVec4At(td.uShadowParams, td.shadowParams)
	}

	prog.SetVec3At(td.uCameraDirX, cam.Right)
	prog.SetVec3At(td.uCameraDirY, cam.Up)
	prog.SetFloatsAt(td.uAlphaMod, 0.20*(1.0/MaxTreeHeight), 0.85)
	prog.SetMat4("viewProjMatrix", false, cam.GetViewProjection())
	prog.SetMat4("fallMatrix", false, mgl32.Ident4())

	td.va.Initialize()

	drawDistSq := td.cfg.TreeDrawDistance * td.cfg.TreeDrawDistance

	// one batch per square, with the square origin in treeOffset; vertices
	// hold only the in-square position plus the wind sway
	for sy := 0; sy < td.treesY; sy++ {
		for sx := 0; sx < td.treesX; sx++ {
			sq := &td.squares[sy*td.treesX+sx]
			if len(sq.trees) == 0 {
				continue
			}

			origin := mgl32.Vec3{float32(sx) * TreeSquareSize, 0, float32(sy) * TreeSquareSize}
			center := origin.Add(mgl32.Vec3{TreeSquareSize / 2, 0, TreeSquareSize / 2})

			// soft cutoff: density falls off with distance
			drawProb := float32(1.0)
			if d := sqDistance2D(center, cam.Position); d > 0 {
				drawProb = min(1.0, drawDistSq/d)
			}
			if drawProb <= 0.001 {
				continue
			}

			prog.SetVec3At(td.uTreeOffset, origin)

			start := len(td.va.data)
			td.va.EnlargeArrays(12 * len(sq.trees))

			for i := range sq.trees {
				tree := &sq.trees[i]
				if treeProb(tree.ID) > drawProb {
					continue
				}
				local := tree.Pos.Sub(origin).Add(td.windOffset(tree.Pos))
				emitTreeBillboard(&td.va, local, tree.Type)
			}

			if td.Submit != nil {
				td.Submit(&VertexArray{data: td.va.data[start:]})
			}
		}
	}

	// reset the world offset before the falling trees
	prog.SetVec3At(td.uTreeOffset, mgl32.Vec3{})

	// falling trees carry per-tree tilt matrices, so each one is its own
	// submit
	for i := range td.falling {
		ft := &td.falling[i]
		pos := ft.Pos.Sub(mgl32.Vec3{0, ft.FallPos * 20, 0})

		prog.SetMat4("fallMatrix", false, fallMatrix(ft, pos))

		start := len(td.va.data)
		emitTreeBillboard(&td.va, mgl32.Vec3{}, ft.Type)
		if td.Submit != nil {
			td.Submit(&VertexArray{data: td.va.data[start:]})
		}
	}

	prog.Disable()
	return &td.va
}

// Release tears down both programs and the shared cache.
func (td *TreeDrawer) Release() {
	if td.watcher != nil {
		td.watcher.Close()
		td.watcher = nil
	}
	for _, p := range td.programs {
		if p != nil {
			p.Release()
		}
	}
	td.cache.Release(td.backend)
}
