package renderer

import "github.com/go-gl/mathgl/mgl32"

// vertexStride is position plus one texture coordinate pair.
const vertexStride = 5

// VertexArray accumulates textured billboard vertices (x, y, z, t1, t2) for
// one draw pass. The caller owns submission; this type only builds the data.
type VertexArray struct {
	data []float32
}

// Initialize resets the array for a new frame, keeping the allocation.
func (va *VertexArray) Initialize() {
	va.data = va.data[:0]
}

// EnlargeArrays grows capacity for n more vertices up front.
func (va *VertexArray) EnlargeArrays(n int) {
	need := len(va.data) + n*vertexStride
	if cap(va.data) < need {
		grown := make([]float32, len(va.data), need)
		copy(grown, va.data)
		va.data = grown
	}
}

// AddVertexQT appends one textured vertex.
func (va *VertexArray) AddVertexQT(pos mgl32.Vec3, t1, t2 float32) {
	va.data = append(va.data, pos.X(), pos.Y(), pos.Z(), t1, t2)
}

// Len returns the vertex count.
func (va *VertexArray) Len() int { return len(va.data) / vertexStride }

// Data exposes the raw interleaved buffer for submission.
func (va *VertexArray) Data() []float32 { return va.data }
