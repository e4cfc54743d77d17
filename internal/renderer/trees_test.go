package renderer

import (
	"testing"

	"Arbor3D/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestDrawer(t *testing.T, cfg Config) *TreeDrawer {
	t.Helper()
	td := NewTreeDrawer(&shader.NullBackend{}, cfg, 256, 256)
	if !td.BasicProgram().IsValid() || !td.ShadowProgram().IsValid() {
		t.Fatalf("tree programs did not link")
	}
	return td
}

func headlessConfig() Config {
	cfg := DefaultConfig()
	cfg.WatchShaders = false
	cfg.WindStrength = 0
	return cfg
}

func TestUniformSlotLayout(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())

	if td.uCameraDirX != 0 || td.uCameraDirY != 1 || td.uTreeOffset != 2 {
		t.Errorf("camera/offset slots = %d %d %d, want 0 1 2",
			td.uCameraDirX, td.uCameraDirY, td.uTreeOffset)
	}
	if td.uInvMapSize != 6 {
		t.Errorf("invMapSizePO2 slot = %d, want 6", td.uInvMapSize)
	}
	if td.uShadowMatrix != 7 || td.uDiffuseTex != 11 {
		t.Errorf("shadow slots = %d..%d, want 7..11", td.uShadowMatrix, td.uDiffuseTex)
	}
}

func TestAddFallingTreeRejectsImplausibleVectors(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())

	td.AddFallingTree(1, 0, mgl32.Vec3{}, mgl32.Vec3{600, 0, 0})
	td.AddFallingTree(2, 0, mgl32.Vec3{}, mgl32.Vec3{})
	if n := len(td.FallingTrees()); n != 0 {
		t.Fatalf("falling trees = %d, want 0", n)
	}

	td.AddFallingTree(3, 0, mgl32.Vec3{}, mgl32.Vec3{100, 0, 0})
	if n := len(td.FallingTrees()); n != 1 {
		t.Fatalf("falling trees = %d, want 1", n)
	}
}

func TestAddFallingTreeNormalizesAndScalesSpeed(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())

	td.AddFallingTree(1, 0, mgl32.Vec3{}, mgl32.Vec3{100, 0, 0})
	ft := td.FallingTrees()[0]
	if got := ft.Dir; got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("dir = %v, want unit x", got)
	}
	if ft.Speed != 100*0.0004 {
		t.Errorf("speed = %v, want %v", ft.Speed, 100*0.0004)
	}

	// short falls still move
	td.AddFallingTree(2, 0, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	if got := td.FallingTrees()[1].Speed; got != 0.01 {
		t.Errorf("minimum speed = %v, want 0.01", got)
	}
}

func TestUpdateAdvancesAndRemovesFallingTrees(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())
	td.AddFallingTree(1, 0, mgl32.Vec3{10, 0, 10}, mgl32.Vec3{100, 0, 0})

	before := td.FallingTrees()[0]
	td.Update()
	after := td.FallingTrees()[0]

	if after.FallPos != before.Speed*0.1 {
		t.Errorf("fallPos after one step = %v, want %v", after.FallPos, before.Speed*0.1)
	}
	if after.Speed <= before.Speed {
		t.Errorf("speed did not accelerate: %v -> %v", before.Speed, after.Speed)
	}

	for i := 0; i < 10000 && len(td.FallingTrees()) > 0; i++ {
		td.Update()
	}
	if n := len(td.FallingTrees()); n != 0 {
		t.Fatalf("tree never grounded, %d still falling", n)
	}
}

func TestAddAndDeleteTree(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())

	pos := mgl32.Vec3{10, 0, 10}
	td.AddTree(7, 3, pos)
	if n := len(td.squareAt(pos).trees); n != 1 {
		t.Fatalf("square tree count = %d, want 1", n)
	}

	td.DeleteTree(7, pos)
	if n := len(td.squareAt(pos).trees); n != 0 {
		t.Fatalf("square tree count after delete = %d, want 0", n)
	}
}

func TestDrawPassEmitsBillboardPerTree(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{32, 120, 32}

	td.AddTree(1, 0, mgl32.Vec3{10, 0, 10})
	td.AddTree(2, 9, mgl32.Vec3{20, 0, 20})
	td.AddTree(3, 4, mgl32.Vec3{30, 0, 30})

	va := td.DrawPass(cam)
	if va == nil {
		t.Fatalf("draw pass skipped with valid programs")
	}
	if got := va.Len(); got != 3*12 {
		t.Errorf("vertex count = %d, want %d", got, 3*12)
	}
}

func TestDrawPassSkipsDistantSquares(t *testing.T) {
	cfg := headlessConfig()
	cfg.TreeDrawDistance = 512
	td := newTestDrawer(t, cfg)

	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{100000, 120, 100000}

	td.AddTree(1, 0, mgl32.Vec3{10, 0, 10})

	va := td.DrawPass(cam)
	if va == nil {
		t.Fatalf("draw pass skipped with valid programs")
	}
	if got := va.Len(); got != 0 {
		t.Errorf("vertex count = %d, want 0 for an out-of-range square", got)
	}
}

func TestDrawPassIncludesFallingTrees(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())
	cam := NewDefaultCamera(800, 600)

	td.AddFallingTree(1, 0, mgl32.Vec3{10, 0, 10}, mgl32.Vec3{100, 0, 0})
	td.Update()

	va := td.DrawPass(cam)
	if va == nil {
		t.Fatalf("draw pass skipped with valid programs")
	}
	if got := va.Len(); got != 12 {
		t.Errorf("vertex count = %d, want 12 for one falling tree", got)
	}
}

func TestDrawPassPicksShadowProgram(t *testing.T) {
	cfg := headlessConfig()
	cfg.ShadowsEnabled = true
	td := newTestDrawer(t, cfg)
	cam := NewDefaultCamera(800, 600)

	td.SetShadowState(mgl32.Ident4(), mgl32.Vec4{0.5, 0.5, 0, 0}, 42)
	if td.DrawPass(cam) == nil {
		t.Fatalf("draw pass skipped with valid programs")
	}

	us := td.ShadowProgram().UniformState("shadowParams")
	if us == nil {
		t.Fatalf("shadowParams never written")
	}
	if got := us.FloatValues(); got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("shadowParams = %v, want [0.5 0.5 ...]", got[:4])
	}
}

func TestFallMatrixUprightAtStart(t *testing.T) {
	ft := &FallingTree{Dir: mgl32.Vec3{1, 0, 0}}
	m := fallMatrix(ft, mgl32.Vec3{5, 0, 5})

	up := mgl32.Vec3{m[4], m[5], m[6]}
	if up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) == false {
		t.Errorf("up axis at fallPos 0 = %v, want +y", up)
	}
	if m[12] != 5 || m[14] != 5 {
		t.Errorf("translation = (%v, %v), want (5, 5)", m[12], m[14])
	}
}

func TestTreeProbIsStable(t *testing.T) {
	for _, id := range []int{0, 1, 7, 123456} {
		p := treeProb(id)
		if p < 0 || p >= 1 {
			t.Errorf("treeProb(%d) = %v, out of [0,1)", id, p)
		}
		if p != treeProb(id) {
			t.Errorf("treeProb(%d) not deterministic", id)
		}
	}
}

func TestReleaseTearsDownPrograms(t *testing.T) {
	td := newTestDrawer(t, headlessConfig())
	td.Release()

	if td.BasicProgram().IsValid() || td.ShadowProgram().IsValid() {
		t.Errorf("programs still valid after release")
	}
	if n := td.cache.Len(); n != 0 {
		t.Errorf("cache still holds %d entries after release", n)
	}
}
