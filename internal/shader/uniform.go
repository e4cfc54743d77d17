package shader

// LocationNotFound disables writes for a uniform the compiler optimized away
// or that has not been resolved since the last relink.
const LocationNotFound int32 = -1

type uniformKind uint8

const (
	uniformNone uniformKind = iota
	uniformInt
	uniformFloat
	uniformMatrix
)

// UniformState is the host-side record of what the GPU currently holds for
// one named uniform. Lookup is by name hash, never by native location, so the
// record survives relinks; the location is re-resolved after every one.
type UniformState struct {
	name      string
	location  int32
	kind      uniformKind
	count     int // component count, or matrix dimension
	transpose bool
	ivals     [4]int32
	fvals     [16]float32
}

func newUniformState(name string) *UniformState {
	return &UniformState{name: name, location: LocationNotFound}
}

func (us *UniformState) Name() string     { return us.name }
func (us *UniformState) Location() int32  { return us.location }
func (us *UniformState) Initialized() bool { return us.kind != uniformNone }

func (us *UniformState) SetLocation(loc int32) { us.location = loc }

// FloatValues exposes the cached float components for diagnostics and tests.
func (us *UniformState) FloatValues() []float32 {
	if us.kind == uniformMatrix {
		return us.fvals[:us.count*us.count]
	}
	return us.fvals[:us.count]
}

func (us *UniformState) IntValues() []int32 { return us.ivals[:us.count] }

// SetInts caches up to four int components and reports whether the GPU copy
// is now stale and must be rewritten.
func (us *UniformState) SetInts(v ...int32) bool {
	if us.kind == uniformInt && us.count == len(v) {
		same := true
		for i, x := range v {
			if us.ivals[i] != x {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	us.kind = uniformInt
	us.count = len(v)
	copy(us.ivals[:], v)
	return true
}

// SetFloats is the float counterpart of SetInts.
func (us *UniformState) SetFloats(v ...float32) bool {
	if us.kind == uniformFloat && us.count == len(v) {
		same := true
		for i, x := range v {
			if us.fvals[i] != x {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	us.kind = uniformFloat
	us.count = len(v)
	copy(us.fvals[:], v)
	return true
}

// SetMatrix caches a dim x dim matrix; the transpose flag is part of the
// comparison since it changes what the driver stores.
func (us *UniformState) SetMatrix(dim int, transpose bool, v []float32) bool {
	if us.kind == uniformMatrix && us.count == dim && us.transpose == transpose {
		same := true
		for i := 0; i < dim*dim; i++ {
			if us.fvals[i] != v[i] {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	us.kind = uniformMatrix
	us.count = dim
	us.transpose = transpose
	copy(us.fvals[:], v[:dim*dim])
	return true
}

// apply replays the cached value to the GPU. Writes for unresolved or
// optimized-away uniforms are silently dropped.
func (us *UniformState) apply(b Backend) {
	if us.location == LocationNotFound || !us.Initialized() {
		return
	}

	switch us.kind {
	case uniformInt:
		b.UniformInts(us.location, us.ivals[:us.count])
	case uniformFloat:
		b.UniformFloats(us.location, us.fvals[:us.count])
	case uniformMatrix:
		b.UniformMatrix(us.location, us.count, us.transpose, us.fvals[:us.count*us.count])
	}
}
