package renderer

import "github.com/go-gl/mathgl/mgl32"

// MaxTreeHeight is the world-space height of a full-grown tree billboard.
const MaxTreeHeight float32 = 60.0

const (
	partMaxTreeHeight = MaxTreeHeight * 0.4
	halfMaxTreeHeight = MaxTreeHeight * 0.5
)

// Leaf texture atlas rows; the 0.001 insets keep samplers off the row seams.
const (
	texLeafStartY1 float32 = 0.001
	texLeafEndY1   float32 = 0.124
	texLeafStartY2 float32 = 0.126
	texLeafEndY2   float32 = 0.249
	texLeafStartY3 float32 = 0.251
	texLeafEndY3   float32 = 0.374

	texLeafStartX1 float32 = 0.0
	texLeafEndX1   float32 = 0.125
	texLeafStartX2 float32 = 0.0
	texLeafEndX2   float32 = 0.125
	texLeafStartX3 float32 = 0.0
	texLeafEndX3   float32 = 0.125
)

// treeTexOffsets picks the atlas cell for a tree type: one column per type
// within its family, the lower atlas half for the leaf family.
func treeTexOffsets(treeType int) (dx, dy float32) {
	dx = float32(treeType%8) * 0.125
	if treeType >= 8 {
		dy = 0.5
	}
	return dx, dy
}

// emitTreeBillboard appends the three crossed quads (12 vertices) of one
// tree at pos. Vertex positions are relative; the world offset travels in
// the treeOffset uniform.
func emitTreeBillboard(va *VertexArray, pos mgl32.Vec3, treeType int) {
	dx, dy := treeTexOffsets(treeType)
	p := pos

	// first vertical quad, facing x
	va.AddVertexQT(p, texLeafStartX1+dx, texLeafStartY1+dy)
	p[1] += MaxTreeHeight
	va.AddVertexQT(p, texLeafStartX1+dx, texLeafEndY1+dy)
	p[0] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX1+dx, texLeafEndY1+dy)
	p[1] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX1+dx, texLeafStartY1+dy)
	p[0] += halfMaxTreeHeight

	// second vertical quad, facing z
	p[2] += halfMaxTreeHeight
	va.AddVertexQT(p, texLeafStartX2+dx, texLeafStartY2+dy)
	p[1] += MaxTreeHeight
	va.AddVertexQT(p, texLeafStartX2+dx, texLeafEndY2+dy)
	p[2] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX2+dx, texLeafEndY2+dy)
	p[1] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX2+dx, texLeafStartY2+dy)
	p[0] += halfMaxTreeHeight
	p[1] += partMaxTreeHeight

	// horizontal crown quad
	p[2] += halfMaxTreeHeight
	va.AddVertexQT(p, texLeafStartX3+dx, texLeafStartY3+dy)
	p[0] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafStartX3+dx, texLeafEndY3+dy)
	p[2] -= MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX3+dx, texLeafEndY3+dy)
	p[0] += MaxTreeHeight
	va.AddVertexQT(p, texLeafEndX3+dx, texLeafStartY3+dy)
}
