package shader

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := hsiehHash([]byte("uniform vec3 color;"), hashSeed)
	b := hsiehHash([]byte("uniform vec3 color;"), hashSeed)

	if a != b {
		t.Errorf("identical input must hash identically: %d vs %d", a, b)
	}
}

func TestHashSensitivity(t *testing.T) {
	base := "void main() { gl_Position = vec4(1.0); }"
	h := hsiehHash([]byte(base), hashSeed)

	// single-character edits at various positions and lengths
	variants := []string{
		"Void main() { gl_Position = vec4(1.0); }",
		"void main() { gl_Position = vec4(1.1); }",
		"void main() { gl_Position = vec4(1.0); } ",
		"void main() { gl_Position = vec4(1.0); ",
		"",
	}
	for _, v := range variants {
		if hsiehHash([]byte(v), hashSeed) == h {
			t.Errorf("variant %q collided with base", v)
		}
	}
}

func TestHashSeedMatters(t *testing.T) {
	data := []byte("#define TREE_BASIC")

	if hsiehHash(data, hashSeed) == hsiehHash(data, hashSeed+1) {
		t.Error("different seeds should produce different digests")
	}
}

func TestHashEmptyInputKeepsSeed(t *testing.T) {
	if got := hsiehHash(nil, hashSeed); got != hashSeed {
		t.Errorf("empty input should pass the seed through, got %d", got)
	}
}

func TestStringHashDistinguishesNames(t *testing.T) {
	names := []string{"cameraDirX", "cameraDirY", "treeOffset", "shadowMatrix", "color"}
	seen := make(map[uint32]string)

	for _, name := range names {
		h := stringHash(name)
		if prev, ok := seen[h]; ok {
			t.Fatalf("%q and %q collided", prev, name)
		}
		seen[h] = name
	}
}
