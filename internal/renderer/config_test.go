package renderer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.UseShaderCache {
		t.Errorf("shader cache disabled by default")
	}
	if cfg.ShaderDir != "shaders" {
		t.Errorf("shader dir = %q, want shaders", cfg.ShaderDir)
	}
	if cfg.TreeDrawDistance <= 0 {
		t.Errorf("tree draw distance = %v, want > 0", cfg.TreeDrawDistance)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.json")

	cfg := DefaultConfig()
	cfg.TreeDrawDistance = 1024
	cfg.WatchShaders = true

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file config = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.json")
	if err := os.WriteFile(path, []byte(`{"treeDrawDistance": 2048}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TreeDrawDistance != 2048 {
		t.Errorf("tree draw distance = %v, want 2048", cfg.TreeDrawDistance)
	}
	if cfg.ShaderDir != DefaultConfig().ShaderDir {
		t.Errorf("shader dir = %q, defaults not preserved", cfg.ShaderDir)
	}
}
