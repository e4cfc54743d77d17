package renderer

import (
	"encoding/json"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds the renderer options that survive restarts.
type Config struct {
	// UseShaderCache shares previously linked programs between reloads and
	// programs with identical content. Disabling forces a full recompile on
	// every reload.
	UseShaderCache bool `json:"useShaderCache"`

	// WatchShaders reloads programs when their source files change on disk.
	WatchShaders bool   `json:"watchShaders"`
	ShaderDir    string `json:"shaderDir"`

	ShadowsEnabled bool `json:"shadowsEnabled"`

	// TreeDrawDistance is the soft cutoff distance; square density fades
	// with distance instead of popping.
	TreeDrawDistance float32 `json:"treeDrawDistance"`

	WindStrength float32 `json:"windStrength"`
	WindSpeed    float32 `json:"windSpeed"`

	GroundAmbientColor  mgl32.Vec3 `json:"groundAmbientColor"`
	GroundDiffuseColor  mgl32.Vec3 `json:"groundDiffuseColor"`
	GroundShadowDensity float32    `json:"groundShadowDensity"`
}

// DefaultConfig returns sensible defaults for outdoor RTS scenes.
func DefaultConfig() Config {
	return Config{
		UseShaderCache: true,
		WatchShaders:   false,
		ShaderDir:      "shaders",

		ShadowsEnabled: true,

		TreeDrawDistance: 512,

		WindStrength: 1.5,
		WindSpeed:    0.25,

		GroundAmbientColor:  mgl32.Vec3{0.25, 0.25, 0.25},
		GroundDiffuseColor:  mgl32.Vec3{0.8, 0.8, 0.75},
		GroundShadowDensity: 0.8,
	}
}

// LoadConfig overlays a JSON file onto the defaults, so missing fields keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
