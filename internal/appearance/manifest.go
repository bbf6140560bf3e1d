package appearance

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"specter/engine/quarkgl"
)

// DefaultNames is the dungeon tile and prop set the viewer ships with.
var DefaultNames = []string{
	"StoneOutcroppingFloorRight",
	"StoneOutcroppingFloorLeft",
	"StoneOutcroppingFloorBottom",
	"StoneOutcroppingFloorCorner",
	"Lantern",
	"Skeleton",
	"StoneWall",
}

// Manifest is the startup description of what to load and how to frame it.
type Manifest struct {
	Appearances []string     `yaml:"appearances"`
	Camera      CameraConfig `yaml:"camera"`
}

// CameraConfig selects static or follow mode. Vectors are [x, y, z] in world space.
type CameraConfig struct {
	Follow   bool       `yaml:"follow"`
	Position [3]float32 `yaml:"position"`
	Offset   [3]float32 `yaml:"offset"`
	Target   [3]float32 `yaml:"target"`
	// Projection is "perspective" (the default) or "ortho".
	Projection string `yaml:"projection"`
	// OrthoSize is the half-height of the orthographic view volume.
	OrthoSize float32 `yaml:"ortho_size"`
}

// DefaultManifest returns the built-in manifest.
func DefaultManifest() Manifest {
	return Manifest{
		Appearances: append([]string(nil), DefaultNames...),
		Camera: CameraConfig{
			Position: [3]float32{15, 20, 15},
			Offset:   [3]float32{15, 20, 15},
		},
	}
}

// LoadManifest reads a YAML manifest. Missing sections keep their defaults.
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, eris.Wrapf(err, "read manifest %s", path)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, eris.Wrapf(err, "parse manifest %s", path)
	}
	if len(m.Appearances) == 0 {
		return m, eris.Errorf("manifest %s lists no appearances", path)
	}
	if _, ok := quarkgl.ParseCameraType(m.Camera.Projection); !ok {
		return m, eris.Errorf("manifest %s: unknown projection %q", path, m.Camera.Projection)
	}
	return m, nil
}

// Record builds the appearance record from the manifest.
func (m Manifest) Record() *Record { return NewRecord(m.Appearances) }
